package postgres

import (
	"fmt"
	"myUserCatalog/domain"

	"gorm.io/gorm"
)

// Address sync for the user lifecycle. Every helper runs on the transaction of
// the owning user mutation.

func insertAddresses(tx *gorm.DB, userID uint, addresses []domain.Address) ([]domain.Address, error) {
	if len(addresses) == 0 {
		return []domain.Address{}, nil
	}

	rows := make([]domain.Address, len(addresses))
	for i, a := range addresses {
		rows[i] = domain.Address{
			UserID:       userID,
			Address:      a.Address,
			IsCheckpoint: a.IsCheckpoint,
		}
	}

	if err := tx.Create(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to create addresses: %w", err)
	}

	return rows, nil
}

func replaceAddresses(tx *gorm.DB, userID uint, addresses []domain.Address) ([]domain.Address, error) {
	if err := deleteAddresses(tx, userID); err != nil {
		return nil, err
	}

	return insertAddresses(tx, userID, addresses)
}

func deleteAddresses(tx *gorm.DB, userID uint) error {
	if err := tx.Where("user_id = ?", userID).Delete(&domain.Address{}).Error; err != nil {
		return fmt.Errorf("failed to delete addresses: %w", err)
	}

	return nil
}
