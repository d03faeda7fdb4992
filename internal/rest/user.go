package rest

import (
	"context"
	"errors"
	"fmt"
	"myUserCatalog/domain"
	"myUserCatalog/pkg/response"
	"myUserCatalog/pkg/validation"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type UserService interface {
	EmailTaken(ctx context.Context, email string) (bool, error)
	Register(ctx context.Context, user *domain.User, addresses []domain.Address) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
	ResetPassword(ctx context.Context, email, password string) (*domain.User, error)
	GetUserByID(ctx context.Context, id uint) (*domain.User, error)
	UpdateUser(ctx context.Context, id uint, fields domain.UserFields, addresses []domain.Address) (*domain.User, error)
	DeleteUser(ctx context.Context, id uint) error
}

const (
	msgUserNotFound   = "User not found."
	msgUserDeleted    = "User deleted successfully"
	msgPasswordReset  = "Password reset successful"
	msgEmailTaken     = "The email has already been taken."
	msgUnauthorized   = "Unauthorized"
	msgCouldNotCreate = "Could not create token"
)

type UserHandler struct {
	userService UserService
	validator   *validation.Validator
	timeout     time.Duration
}

func NewUserHandler(userService UserService, validator *validation.Validator, timeout time.Duration) *UserHandler {
	return &UserHandler{
		userService: userService,
		validator:   validator,
		timeout:     timeout,
	}
}

type AddressRequest struct {
	Address      string `json:"address" validate:"required,max=255"`
	IsCheckpoint *bool  `json:"is_checkpoint"`
}

type UserRegisterRequest struct {
	Name                 string           `json:"name" validate:"required,max=255"`
	Email                string           `json:"email" validate:"required,email,max=255"`
	Password             string           `json:"password" validate:"required,min=8"`
	PasswordConfirmation string           `json:"password_confirmation"`
	Addresses            []AddressRequest `json:"addresses" validate:"omitempty,dive"`
}

type UserLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ResetPasswordRequest struct {
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// UserUpdateRequest only carries the fields present in the body.
type UserUpdateRequest struct {
	Name                 *string           `json:"name"`
	Email                *string           `json:"email"`
	Password             *string           `json:"password"`
	PasswordConfirmation *string           `json:"password_confirmation"`
	Addresses            *[]AddressRequest `json:"addresses"`
}

func toAddresses(reqs []AddressRequest) []domain.Address {
	addresses := make([]domain.Address, 0, len(reqs))
	for _, r := range reqs {
		a := domain.Address{Address: r.Address}
		if r.IsCheckpoint != nil {
			a.IsCheckpoint = *r.IsCheckpoint
		}
		addresses = append(addresses, a)
	}
	return addresses
}

func (h *UserHandler) Register(c echo.Context) error {
	var req UserRegisterRequest
	if err := c.Bind(&req); err != nil {
		return bindError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	errs := h.validator.Struct(&req)
	h.validator.Confirmed(errs, "password", req.Password, req.PasswordConfirmation)

	if !errs.Has("email") {
		taken, err := h.userService.EmailTaken(ctx, req.Email)
		if err != nil {
			return response.Error(c, msgInternalError, http.StatusInternalServerError)
		}
		if taken {
			errs.Add("email", msgEmailTaken)
		}
	}

	if !errs.Empty() {
		return response.ValidationError(c, errs)
	}

	var addresses []domain.Address
	if req.Addresses != nil {
		addresses = toAddresses(req.Addresses)
	}

	token, err := h.userService.Register(ctx, &domain.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	}, addresses)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmailTaken):
			return response.ValidationError(c, validation.Errors{"email": {msgEmailTaken}})
		case errors.Is(err, domain.ErrTokenIssue):
			return response.Error(c, msgCouldNotCreate, http.StatusInternalServerError)
		default:
			return response.Error(c, msgInternalError, http.StatusInternalServerError)
		}
	}

	return response.Token(c, token, http.StatusCreated)
}

func (h *UserHandler) Login(c echo.Context) error {
	var req UserLoginRequest
	if err := c.Bind(&req); err != nil {
		return bindError(c, err)
	}

	if errs := h.validator.Struct(&req); !errs.Empty() {
		return response.ValidationError(c, errs)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	token, err := h.userService.Login(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			return response.Error(c, msgUnauthorized, http.StatusUnauthorized)
		case errors.Is(err, domain.ErrTokenIssue):
			return response.Error(c, msgCouldNotCreate, http.StatusInternalServerError)
		default:
			return response.Error(c, msgInternalError, http.StatusInternalServerError)
		}
	}

	return response.Token(c, token, http.StatusCreated)
}

func (h *UserHandler) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return bindError(c, err)
	}

	errs := h.validator.Struct(&req)
	h.validator.Confirmed(errs, "password", req.Password, req.PasswordConfirmation)
	if !errs.Empty() {
		return response.ValidationError(c, errs)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	user, err := h.userService.ResetPassword(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return response.NotFound(c, msgUserNotFound)
		}
		return response.Error(c, msgInternalError, http.StatusInternalServerError)
	}

	return response.Success(c, user, msgPasswordReset, http.StatusCreated)
}

func (h *UserHandler) GetUserByID(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return response.NotFound(c, msgUserNotFound)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	user, err := h.userService.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return response.NotFound(c, msgUserNotFound)
		}
		return response.Error(c, msgInternalError, http.StatusInternalServerError)
	}

	return response.Success(c, user, msgDataRetrieved, http.StatusCreated)
}

func (h *UserHandler) validateUpdate(req *UserUpdateRequest) validation.Errors {
	errs := validation.Errors{}

	if req.Name != nil {
		h.validator.Var(errs, "name", *req.Name, "required", "max=255")
	}
	if req.Email != nil {
		h.validator.Var(errs, "email", *req.Email, "required", "email", "max=255")
	}
	if req.Password != nil {
		h.validator.Var(errs, "password", *req.Password, "required", "min=8")
		confirmation := ""
		if req.PasswordConfirmation != nil {
			confirmation = *req.PasswordConfirmation
		}
		h.validator.Confirmed(errs, "password", *req.Password, confirmation)
	}
	if req.Addresses != nil {
		for i, a := range *req.Addresses {
			h.validator.Var(errs, fmt.Sprintf("addresses.%d.address", i), a.Address, "required", "max=255")
		}
	}

	return errs
}

func (h *UserHandler) UpdateUser(c echo.Context) error {
	var req UserUpdateRequest
	if err := c.Bind(&req); err != nil {
		return bindError(c, err)
	}

	if errs := h.validateUpdate(&req); !errs.Empty() {
		return response.ValidationError(c, errs)
	}

	id, ok := parseID(c)
	if !ok {
		return response.NotFound(c, msgUserNotFound)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	var addresses []domain.Address
	if req.Addresses != nil {
		addresses = toAddresses(*req.Addresses)
	}

	user, err := h.userService.UpdateUser(ctx, id, domain.UserFields{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	}, addresses)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return response.NotFound(c, msgUserNotFound)
		}
		return response.Error(c, msgInternalError, http.StatusInternalServerError)
	}

	return response.Success(c, user, msgDataUpdated, http.StatusCreated)
}

func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return response.NotFound(c, msgUserNotFound)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.userService.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return response.NotFound(c, msgUserNotFound)
		}
		return response.Error(c, msgInternalError, http.StatusInternalServerError)
	}

	return response.Success(c, nil, msgUserDeleted, http.StatusOK)
}
