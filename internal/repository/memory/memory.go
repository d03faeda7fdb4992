// Package memory holds mutex-guarded in-process repositories with the same
// contracts as the postgres ones. They back tests and local runs without a
// database.
package memory

import (
	"context"
	"errors"
	"fmt"
	"myUserCatalog/domain"
	"sort"
	"sync"
	"time"
)

var ErrDuplicateEmail = errors.New("duplicate key value violates unique constraint \"users_email_key\"")

type UserRepository struct {
	mu        sync.Mutex
	nextID    uint
	nextAddr  uint
	users     map[uint]domain.User
	addresses map[uint]domain.Address
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:     make(map[uint]domain.User),
		addresses: make(map[uint]domain.Address),
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User, addresses []domain.Address) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.emailInUse(user.Email, 0) {
		return ErrDuplicateEmail
	}

	now := time.Now()
	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = domain.RoleUser
	}

	stored := *user
	stored.Addresses = nil
	r.users[user.ID] = stored

	user.Addresses = r.insertAddresses(user.ID, addresses)
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok || user.DeletedAt.Valid {
		return nil, nil
	}

	user.Addresses = r.addressesOf(id)
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.Email == email && !user.DeletedAt.Valid {
			u := user
			return &u, nil
		}
	}

	return nil, nil
}

// EmailExists counts soft-deleted rows too, like the unique index.
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("context error: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.emailInUse(email, 0), nil
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User, fields domain.UserFields, addresses []domain.Address) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[user.ID]
	if !ok || stored.DeletedAt.Valid {
		return errors.New("user not found or already deleted")
	}

	if fields.Email != nil && r.emailInUse(*fields.Email, user.ID) {
		return ErrDuplicateEmail
	}

	if columns := fields.Apply(user); len(columns) > 0 {
		user.UpdatedAt = time.Now()
		fields.Apply(&stored)
		stored.UpdatedAt = user.UpdatedAt
		r.users[user.ID] = stored
	}

	if addresses != nil {
		r.deleteAddresses(user.ID)
		user.Addresses = r.insertAddresses(user.ID, addresses)
	}

	return nil
}

func (r *UserRepository) Delete(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[user.ID]
	if !ok || stored.DeletedAt.Valid {
		return errors.New("user not found or already deleted")
	}

	stored.DeletedAt.Time = time.Now()
	stored.DeletedAt.Valid = true
	r.users[user.ID] = stored

	r.deleteAddresses(user.ID)
	user.Addresses = nil

	return nil
}

// Addresses returns every stored address of the user, deleted or not.
func (r *UserRepository) Addresses(userID uint) []domain.Address {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.addressesOf(userID)
}

// Stored returns the raw row including soft-deleted ones.
func (r *UserRepository) Stored(id uint) (domain.User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	return user, ok
}

func (r *UserRepository) emailInUse(email string, exceptID uint) bool {
	for id, u := range r.users {
		if id != exceptID && u.Email == email {
			return true
		}
	}
	return false
}

func (r *UserRepository) insertAddresses(userID uint, addresses []domain.Address) []domain.Address {
	created := make([]domain.Address, 0, len(addresses))
	now := time.Now()

	for _, a := range addresses {
		r.nextAddr++
		row := domain.Address{
			ID:           r.nextAddr,
			UserID:       userID,
			Address:      a.Address,
			IsCheckpoint: a.IsCheckpoint,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		r.addresses[row.ID] = row
		created = append(created, row)
	}

	return created
}

func (r *UserRepository) deleteAddresses(userID uint) {
	for id, a := range r.addresses {
		if a.UserID == userID {
			delete(r.addresses, id)
		}
	}
}

func (r *UserRepository) addressesOf(userID uint) []domain.Address {
	list := []domain.Address{}
	for _, a := range r.addresses {
		if a.UserID == userID {
			list = append(list, a)
		}
	}

	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

type ProductRepository struct {
	mu       sync.Mutex
	nextID   uint
	products map[uint]domain.Product
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{
		products: make(map[uint]domain.Product),
	}
}

func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	r.nextID++
	product.ID = r.nextID
	product.CreatedAt = now
	product.UpdatedAt = now
	r.products[product.ID] = cloneProduct(*product)

	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id uint) (*domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return nil, nil
	}

	p := cloneProduct(product)
	return &p, nil
}

func (r *ProductRepository) Update(ctx context.Context, product *domain.Product, fields domain.ProductFields) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[product.ID]; !ok {
		return errors.New("product not found or already deleted")
	}

	if columns := fields.Apply(product); len(columns) == 0 {
		return nil
	}

	product.UpdatedAt = time.Now()
	r.products[product.ID] = cloneProduct(*product)

	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, product *domain.Product) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[product.ID]; !ok {
		return errors.New("product not found or already deleted")
	}

	delete(r.products, product.ID)
	return nil
}

// Count reports how many products are stored.
func (r *ProductRepository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.products)
}

func cloneProduct(p domain.Product) domain.Product {
	prices := make(domain.Prices, len(p.Prices.Data()))
	for code, amount := range p.Prices.Data() {
		prices[code] = amount
	}
	p.Prices = domain.NewPrices(prices)

	return p
}
