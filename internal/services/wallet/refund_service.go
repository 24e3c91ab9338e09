package wallet

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/joki_marketplace/internal/event"
	"github.com/Windi-Fikriyansyah/joki_marketplace/internal/models"
)

var (
	ErrRefundNotFound = errors.New("refund request not found")
	ErrRefundDecided  = errors.New("refund request already decided")
	ErrOrderRequired  = errors.New("order reference is required")
)

type RefundInput struct {
	OrderRef string
	Amount   int64
	Reason   string
}

// RefundService handles client refund requests and their review by admins.
// Approval credits the client's wallet through WalletService.
type RefundService struct {
	DB     *gorm.DB
	Wallet *WalletService
	Events event.Publisher
}

func NewRefundService(db *gorm.DB, wallet *WalletService, events event.Publisher) *RefundService {
	return &RefundService{DB: db, Wallet: wallet, Events: events}
}

func (s *RefundService) Request(ctx context.Context, clientID uuid.UUID, in RefundInput) (*models.RefundRequest, error) {
	orderRef := strings.TrimSpace(in.OrderRef)
	if orderRef == "" {
		return nil, ErrOrderRequired
	}
	if in.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	r := models.RefundRequest{
		ClientID: clientID,
		OrderRef: orderRef,
		Amount:   in.Amount,
		Reason:   strings.TrimSpace(in.Reason),
		Status:   models.RefundPending,
	}
	if err := s.DB.WithContext(ctx).Create(&r).Error; err != nil {
		return nil, fmt.Errorf("create refund request: %w", err)
	}
	return &r, nil
}

// List returns refund requests, newest first. An empty status lists all.
func (s *RefundService) List(ctx context.Context, status models.RefundStatus) ([]models.RefundRequest, error) {
	q := s.DB.WithContext(ctx).Preload("Client").Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	rows := []models.RefundRequest{}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list refund requests: %w", err)
	}
	return rows, nil
}

// ListForClient returns the refund requests filed by one client.
func (s *RefundService) ListForClient(ctx context.Context, clientID uuid.UUID) ([]models.RefundRequest, error) {
	rows := []models.RefundRequest{}
	err := s.DB.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list refund requests: %w", err)
	}
	return rows, nil
}

func (s *RefundService) Approve(ctx context.Context, id, adminID uuid.UUID, note string) (*models.RefundRequest, error) {
	return s.decide(ctx, id, adminID, models.RefundApproved, note)
}

func (s *RefundService) Reject(ctx context.Context, id, adminID uuid.UUID, note string) (*models.RefundRequest, error) {
	return s.decide(ctx, id, adminID, models.RefundRejected, note)
}

// decide moves a pending request to its final status. The pending check is
// part of the UPDATE so two admins cannot both approve.
func (s *RefundService) decide(ctx context.Context, id, adminID uuid.UUID, status models.RefundStatus, note string) (*models.RefundRequest, error) {
	var out models.RefundRequest
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&out, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRefundNotFound
			}
			return err
		}

		now := time.Now()
		res := tx.Model(&models.RefundRequest{}).
			Where("id = ? AND status = ?", id, models.RefundPending).
			Updates(map[string]any{
				"status":     status,
				"admin_note": strings.TrimSpace(note),
				"decided_by": adminID,
				"decided_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrRefundDecided
		}

		if status == models.RefundApproved {
			desc := fmt.Sprintf("Refund %s", out.OrderRef)
			if err := s.Wallet.CreditClient(tx, out.ClientID, out.Amount, out.ID, desc); err != nil {
				return fmt.Errorf("credit client: %w", err)
			}
		}

		return tx.First(&out, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}

	if s.Events != nil {
		ev := event.New(event.RefundDecided, out.ClientID, map[string]any{
			"refund_id": out.ID,
			"status":    out.Status,
			"amount":    out.Amount,
		})
		if err := s.Events.Publish(ctx, ev); err != nil {
			log.Printf("[Refund] publish %s for %s: %v", ev.EventType, out.ID, err)
		}
	}
	log.Printf("[Refund] %s %s by %s", out.ID, out.Status, adminID)
	return &out, nil
}
