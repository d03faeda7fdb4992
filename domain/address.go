package domain

import "time"

// Address belongs to exactly one user. Checkpoint addresses mark a user's
// reference location.
type Address struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"column:user_id;not null;index" json:"user_id"`
	Address      string    `gorm:"column:address;not null" json:"address"`
	IsCheckpoint bool      `gorm:"column:is_checkpoint;not null" json:"is_checkpoint"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Address) TableName() string {
	return "addresses"
}
