package postgres

import (
	"context"
	"errors"
	"fmt"
	"myUserCatalog/domain"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{
		DB: db,
	}
}

// Create inserts the user and, when addresses is non-nil, its address set in the
// same transaction.
func (r *UserRepository) Create(ctx context.Context, user *domain.User, addresses []domain.Address) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		created, err := insertAddresses(tx, user.ID, addresses)
		if err != nil {
			return err
		}
		user.Addresses = created

		return nil
	})
}

// FindByID returns nil, nil when no live user has the id.
func (r *UserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var user domain.User

	err := r.DB.WithContext(ctx).Preload("Addresses").First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return &user, nil
}

// FindByEmail returns nil, nil when no live user has the email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var user domain.User

	err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	return &user, nil
}

// EmailExists reports whether any row, soft-deleted or not, holds email. The
// unique index on users.email covers deleted rows too.
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("context error: %w", err)
	}

	var count int64
	err := r.DB.WithContext(ctx).Unscoped().Model(&domain.User{}).Where("email = ?", email).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}

	return count > 0, nil
}

// Update merges fields into user and persists the changed columns. A non-nil
// addresses slice replaces the whole address set.
func (r *UserRepository) Update(ctx context.Context, user *domain.User, fields domain.UserFields, addresses []domain.Address) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	// user is only touched once the transaction commits
	updated := *user

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		columns := fields.Apply(&updated)
		if len(columns) > 0 {
			updated.UpdatedAt = time.Now()
			columns = append(columns, "updated_at")

			result := tx.Model(&updated).Select(columns).Updates(&updated)
			if result.Error != nil {
				return fmt.Errorf("failed to update user: %w", result.Error)
			}
		}

		if addresses == nil {
			return nil
		}

		replaced, err := replaceAddresses(tx, updated.ID, addresses)
		if err != nil {
			return err
		}
		updated.Addresses = replaced

		return nil
	})
	if err != nil {
		return err
	}

	*user = updated
	return nil
}

// Delete soft-deletes the user and hard-deletes its addresses.
func (r *UserRepository) Delete(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(user)
		if result.Error != nil {
			return fmt.Errorf("failed to delete user: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return errors.New("user not found or already deleted")
		}

		if err := deleteAddresses(tx, user.ID); err != nil {
			return err
		}
		user.Addresses = nil

		return nil
	})
}
