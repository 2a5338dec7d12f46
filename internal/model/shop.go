// File: internal/model/shop.go
package model

import "time"

type Shop struct {
	ID             int       `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Photo          *string   `db:"photo" json:"photo,omitempty"`
	AdditionalInfo *string   `db:"additional_info" json:"additional_info,omitempty"`
	IsActive       bool      `db:"is_active" json:"is_active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
