package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/joki_marketplace/internal/models"
)

var ErrInvalidAmount = errors.New("amount must be greater than zero")

type WalletService struct {
	DB *gorm.DB
}

func NewWalletService(db *gorm.DB) *WalletService {
	return &WalletService{DB: db}
}

// CreditClient adds funds to a client's balance and writes the matching
// ledger row. It must run inside the caller's transaction.
func (s *WalletService) CreditClient(tx *gorm.DB, userID uuid.UUID, amount int64, referenceID uuid.UUID, description string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	result := tx.Model(&models.User{}).
		Where("id = ?", userID).
		Update("balance", gorm.Expr("balance + ?", amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("user not found for id %s", userID)
	}

	ledger := models.WalletTransaction{
		UserID:      userID,
		Amount:      amount,
		Type:        models.WalletTrxRefund,
		Description: description,
		ReferenceID: &referenceID,
	}
	return tx.Create(&ledger).Error
}

// History returns the latest ledger rows of a user, newest first.
func (s *WalletService) History(ctx context.Context, userID uuid.UUID, limit int) ([]models.WalletTransaction, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	rows := []models.WalletTransaction{}
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// Balance returns the client's wallet balance.
func (s *WalletService) Balance(ctx context.Context, userID uuid.UUID) (int64, error) {
	var u models.User
	if err := s.DB.WithContext(ctx).Select("balance").First(&u, "id = ?", userID).Error; err != nil {
		return 0, err
	}
	return u.Balance, nil
}
