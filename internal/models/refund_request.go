package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RefundStatus string

const (
	RefundPending  RefundStatus = "pending"
	RefundApproved RefundStatus = "approved"
	RefundRejected RefundStatus = "rejected"
)

type RefundRequest struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID uuid.UUID `gorm:"type:uuid;index;not null" json:"client_id"`
	OrderRef string    `gorm:"type:varchar(60);index;not null" json:"order_ref"` // kode order / job offer
	Amount   int64     `gorm:"not null" json:"amount"`
	Reason   string    `gorm:"type:text" json:"reason"`

	Status    RefundStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	AdminNote string       `gorm:"type:text" json:"admin_note"`
	DecidedBy *uuid.UUID   `gorm:"type:uuid" json:"decided_by,omitempty"`
	DecidedAt *time.Time   `json:"decided_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Client *User `gorm:"foreignKey:ClientID" json:"client,omitempty"`
}

func (r *RefundRequest) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}
