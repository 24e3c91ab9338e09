package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/joki_marketplace/internal/models"
	"github.com/Windi-Fikriyansyah/joki_marketplace/internal/services/wallet"
)

type RefundHandler struct {
	Refunds *wallet.RefundService
}

func NewRefundHandler(refunds *wallet.RefundService) *RefundHandler {
	return &RefundHandler{Refunds: refunds}
}

// Routes mounts the client endpoints on client and the review endpoints on
// admin. Both routers must already enforce their role.
func (h *RefundHandler) Routes(client fiber.Router, admin fiber.Router) {
	client.Post("/refunds", h.Create)
	client.Get("/refunds", h.ListMine)
	client.Get("/wallet", h.Wallet)

	admin.Get("/refunds", h.List)
	admin.Post("/refunds/:id/approve", h.Approve)
	admin.Post("/refunds/:id/reject", h.Reject)
}

type RefundReq struct {
	OrderRef string `json:"order_ref"`
	Amount   int64  `json:"amount"`
	Reason   string `json:"reason"`
}

type DecisionReq struct {
	Note string `json:"note"`
}

func (h *RefundHandler) Create(c *fiber.Ctx) error {
	userID, err := getAuth(c)
	if err != nil {
		return err
	}

	var req RefundReq
	if err := c.BodyParser(&req); err != nil {
		return fail200(c, "Invalid body")
	}

	r, err := h.Refunds.Request(c.UserContext(), userID, wallet.RefundInput{
		OrderRef: req.OrderRef,
		Amount:   req.Amount,
		Reason:   req.Reason,
	})
	switch {
	case errors.Is(err, wallet.ErrOrderRequired):
		errs := FieldErrors{}
		errs.Add("order_ref", "Kode order wajib diisi")
		return validationFail(c, errs)
	case errors.Is(err, wallet.ErrInvalidAmount):
		errs := FieldErrors{}
		errs.Add("amount", "Jumlah refund harus lebih dari 0")
		return validationFail(c, errs)
	case err != nil:
		return fail500(c, "Gagal membuat pengajuan refund")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Pengajuan refund dibuat",
		"data":    r,
	})
}

func (h *RefundHandler) ListMine(c *fiber.Ctx) error {
	userID, err := getAuth(c)
	if err != nil {
		return err
	}
	rows, err := h.Refunds.ListForClient(c.UserContext(), userID)
	if err != nil {
		return fail500(c, "Gagal mengambil data refund")
	}
	return ok(c, "", rows)
}

func (h *RefundHandler) Wallet(c *fiber.Ctx) error {
	userID, err := getAuth(c)
	if err != nil {
		return err
	}
	balance, err := h.Refunds.Wallet.Balance(c.UserContext(), userID)
	if err != nil {
		return fail500(c, "Gagal mengambil saldo")
	}
	history, err := h.Refunds.Wallet.History(c.UserContext(), userID, c.QueryInt("limit", 20))
	if err != nil {
		return fail500(c, "Gagal mengambil riwayat saldo")
	}
	return ok(c, "", fiber.Map{"balance": balance, "transactions": history})
}

func (h *RefundHandler) List(c *fiber.Ctx) error {
	status := models.RefundStatus(c.Query("status"))
	switch status {
	case "", models.RefundPending, models.RefundApproved, models.RefundRejected:
	default:
		return fail200(c, "status tidak valid")
	}
	rows, err := h.Refunds.List(c.UserContext(), status)
	if err != nil {
		return fail500(c, "Gagal mengambil data refund")
	}
	return ok(c, "", rows)
}

func (h *RefundHandler) Approve(c *fiber.Ctx) error {
	return h.decide(c, h.Refunds.Approve, "Refund disetujui")
}

func (h *RefundHandler) Reject(c *fiber.Ctx) error {
	return h.decide(c, h.Refunds.Reject, "Refund ditolak")
}

type decideFunc func(ctx context.Context, id, adminID uuid.UUID, note string) (*models.RefundRequest, error)

func (h *RefundHandler) decide(c *fiber.Ctx, fn decideFunc, message string) error {
	adminID, err := getAuth(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail200(c, "invalid refund id")
	}

	var req DecisionReq
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fail200(c, "Invalid body")
		}
	}

	r, err := fn(c.UserContext(), id, adminID, req.Note)
	switch {
	case errors.Is(err, wallet.ErrRefundNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Pengajuan refund tidak ditemukan",
		})
	case errors.Is(err, wallet.ErrRefundDecided):
		return fail200(c, "Pengajuan refund sudah diproses")
	case err != nil:
		return fail500(c, "Gagal memproses refund")
	}
	return ok(c, message, r)
}
