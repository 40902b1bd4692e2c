package models

import "time"

// CheckInLog is one appended row in the external check-in journal.
// The table is append-only; rows are never updated or deduplicated.
type CheckInLog struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      string    `gorm:"size:64;index;not null" json:"user_id"`
	DisplayName string    `gorm:"size:128" json:"display_name"`
	Date        string    `gorm:"size:10;not null" json:"date"` // "02/01/2006", user-local
	Time        string    `gorm:"size:5;not null" json:"time"`  // "15:04", user-local
	Status      string    `gorm:"size:16;not null" json:"status"`
	Timezone    string    `gorm:"size:64" json:"timezone"`
	CreatedAt   time.Time `json:"created_at"`
}
