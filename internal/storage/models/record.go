// internal/storage/models/record.go
package models

import "time"

// Record is one encoded program account keyed by its derived address.
type Record struct {
	Address   string `gorm:"primaryKey;size:44"`
	Kind      string `gorm:"size:32;index;not null"`
	Owner     string `gorm:"size:44"`
	Data      []byte `gorm:"not null"`
	UpdatedAt time.Time
}

// AuditEntry is one committed program event.
type AuditEntry struct {
	BaseModel
	EventType  string    `gorm:"size:64;index;not null"`
	OccurredAt time.Time `gorm:"index;not null"`
	Payload    string    `gorm:"type:text;not null"`
}
