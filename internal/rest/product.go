package rest

import (
	"context"
	"encoding/json"
	"errors"
	"myUserCatalog/domain"
	"myUserCatalog/pkg/response"
	"myUserCatalog/pkg/validation"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type ProductService interface {
	GetProductByID(ctx context.Context, id uint) (*domain.Product, error)
	CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id uint, fields domain.ProductFields) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id uint) error
}

const (
	msgProductNotFound = "Product not found."
	msgProductCreated  = "Product created successfully"
	msgProductDeleted  = "Product deleted successfully"
)

type ProductHandler struct {
	productService ProductService
	validator      *validation.Validator
	timeout        time.Duration
}

func NewProductHandler(productService ProductService, validator *validation.Validator, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		validator:      validator,
		timeout:        timeout,
	}
}

// Prices is validated by hand, it has to be a JSON object of currency codes.
type CreateProductRequest struct {
	Name          string          `json:"name" validate:"required,max=255"`
	Description   string          `json:"description" validate:"required"`
	Prices        json.RawMessage `json:"prices"`
	StockQuantity *int            `json:"stock_quantity" validate:"required,gte=0"`
}

type UpdateProductRequest struct {
	Name          *string         `json:"name"`
	Description   *string         `json:"description"`
	Prices        json.RawMessage `json:"prices"`
	StockQuantity *int            `json:"stock_quantity"`
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return bindError(c, err)
	}

	errs := h.validator.Struct(&req)
	prices := h.validator.Prices(errs, "prices", req.Prices)
	if !errs.Empty() {
		return response.ValidationError(c, errs)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	product, err := h.productService.CreateProduct(ctx, &domain.Product{
		Name:          req.Name,
		Description:   req.Description,
		Prices:        domain.NewPrices(prices),
		StockQuantity: *req.StockQuantity,
	})
	if err != nil {
		return response.Error(c, msgInternalError, http.StatusInternalServerError)
	}

	return response.Success(c, product, msgProductCreated, http.StatusCreated)
}

func (h *ProductHandler) GetProductByID(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return response.NotFound(c, msgProductNotFound)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	product, err := h.productService.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return response.NotFound(c, msgProductNotFound)
		}
		return response.Error(c, msgInternalError, http.StatusInternalServerError)
	}

	return response.Success(c, product, msgDataRetrieved, http.StatusCreated)
}

func (h *ProductHandler) validateUpdate(req *UpdateProductRequest) (validation.Errors, domain.ProductFields) {
	errs := validation.Errors{}
	fields := domain.ProductFields{
		Name:          req.Name,
		Description:   req.Description,
		StockQuantity: req.StockQuantity,
	}

	if req.Name != nil {
		h.validator.Var(errs, "name", *req.Name, "required", "max=255")
	}
	if req.Description != nil {
		h.validator.Var(errs, "description", *req.Description, "required")
	}
	if req.Prices != nil {
		fields.Prices = h.validator.Prices(errs, "prices", req.Prices)
	}
	if req.StockQuantity != nil {
		h.validator.Var(errs, "stock_quantity", *req.StockQuantity, "gte=0")
	}

	return errs, fields
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	var req UpdateProductRequest
	if err := c.Bind(&req); err != nil {
		return bindError(c, err)
	}

	errs, fields := h.validateUpdate(&req)
	if !errs.Empty() {
		return response.ValidationError(c, errs)
	}

	id, ok := parseID(c)
	if !ok {
		return response.NotFound(c, msgProductNotFound)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	product, err := h.productService.UpdateProduct(ctx, id, fields)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return response.NotFound(c, msgProductNotFound)
		}
		return response.Error(c, msgInternalError, http.StatusInternalServerError)
	}

	return response.Success(c, product, msgDataUpdated, http.StatusCreated)
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return response.NotFound(c, msgProductNotFound)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.productService.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return response.NotFound(c, msgProductNotFound)
		}
		return response.Error(c, msgInternalError, http.StatusInternalServerError)
	}

	return response.Success(c, nil, msgProductDeleted, http.StatusOK)
}
