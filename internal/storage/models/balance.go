// internal/storage/models/balance.go
package models

import "time"

// Balance holds the lamports of one account.
type Balance struct {
	Owner     string `gorm:"primaryKey;size:44"`
	Lamports  uint64 `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

// TokenBalance holds the sale tokens of one account.
type TokenBalance struct {
	Owner     string `gorm:"primaryKey;size:44"`
	Amount    uint64 `gorm:"not null;default:0"`
	UpdatedAt time.Time
}
