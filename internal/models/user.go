package models

import "time"

// User represents a registered customer of the store.
type User struct {
	ID        string    `json:"user_id" gorm:"column:user_id;primaryKey;type:varchar(36)"`
	Username  string    `json:"username" gorm:"uniqueIndex;type:varchar(100);not null"`
	Password  string    `json:"-" gorm:"type:varchar(255);not null"` // hashed at rest
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(255)"`
	Address   *string   `json:"address,omitempty" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
}
