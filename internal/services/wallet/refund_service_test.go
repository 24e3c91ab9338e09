package wallet

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Windi-Fikriyansyah/joki_marketplace/internal/event"
	"github.com/Windi-Fikriyansyah/joki_marketplace/internal/models"
	"github.com/Windi-Fikriyansyah/joki_marketplace/internal/testkit"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []*event.Event
}

func (p *recordingPublisher) Publish(_ context.Context, ev *event.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func newRefundService(t *testing.T) (*RefundService, *recordingPublisher, models.User, models.User) {
	t.Helper()
	gdb := testkit.OpenDB(t)
	pub := &recordingPublisher{}
	client := testkit.CreateUser(t, gdb, "Client", models.RoleClient)
	admin := testkit.CreateUser(t, gdb, "Admin", models.RoleAdmin)
	return NewRefundService(gdb, NewWalletService(gdb), pub), pub, client, admin
}

func TestRefundRequestValidation(t *testing.T) {
	svc, _, client, _ := newRefundService(t)
	ctx := context.Background()

	_, err := svc.Request(ctx, client.ID, RefundInput{OrderRef: " ", Amount: 1000})
	assert.ErrorIs(t, err, ErrOrderRequired)

	_, err = svc.Request(ctx, client.ID, RefundInput{OrderRef: "JO-1", Amount: 0})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	r, err := svc.Request(ctx, client.ID, RefundInput{OrderRef: " JO-1 ", Amount: 5000, Reason: "tidak dikerjakan"})
	require.NoError(t, err)
	assert.Equal(t, "JO-1", r.OrderRef)
	assert.Equal(t, models.RefundPending, r.Status)

	mine, err := svc.ListForClient(ctx, client.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestApproveRefundCreditsWallet(t *testing.T) {
	svc, pub, client, admin := newRefundService(t)
	ctx := context.Background()

	r, err := svc.Request(ctx, client.ID, RefundInput{OrderRef: "JO-7", Amount: 25000})
	require.NoError(t, err)

	decided, err := svc.Approve(ctx, r.ID, admin.ID, "ok")
	require.NoError(t, err)
	assert.Equal(t, models.RefundApproved, decided.Status)
	assert.Equal(t, "ok", decided.AdminNote)
	require.NotNil(t, decided.DecidedBy)
	assert.Equal(t, admin.ID, *decided.DecidedBy)

	balance, err := svc.Wallet.Balance(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(25000), balance)

	history, err := svc.Wallet.History(ctx, client.ID, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.WalletTrxRefund, history[0].Type)
	assert.Equal(t, r.ID, *history[0].ReferenceID)

	require.Len(t, pub.events, 1)
	assert.Equal(t, event.RefundDecided, pub.events[0].EventType)

	// a decided request cannot be approved again
	_, err = svc.Approve(ctx, r.ID, admin.ID, "again")
	assert.ErrorIs(t, err, ErrRefundDecided)
	balance, _ = svc.Wallet.Balance(ctx, client.ID)
	assert.Equal(t, int64(25000), balance)
}

func TestRejectRefundLeavesBalance(t *testing.T) {
	svc, _, client, admin := newRefundService(t)
	ctx := context.Background()

	r, err := svc.Request(ctx, client.ID, RefundInput{OrderRef: "JO-9", Amount: 10000})
	require.NoError(t, err)

	decided, err := svc.Reject(ctx, r.ID, admin.ID, "sudah selesai")
	require.NoError(t, err)
	assert.Equal(t, models.RefundRejected, decided.Status)

	balance, err := svc.Wallet.Balance(ctx, client.ID)
	require.NoError(t, err)
	assert.Zero(t, balance)

	pending, err := svc.List(ctx, models.RefundPending)
	require.NoError(t, err)
	assert.Empty(t, pending)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.NotNil(t, all[0].Client)
	assert.Equal(t, client.ID, all[0].Client.ID)
}

func TestDecideUnknownRefund(t *testing.T) {
	svc, _, _, admin := newRefundService(t)
	_, err := svc.Approve(context.Background(), uuid.New(), admin.ID, "")
	assert.ErrorIs(t, err, ErrRefundNotFound)
}

func TestCreditClientRejectsNonPositive(t *testing.T) {
	gdb := testkit.OpenDB(t)
	u := testkit.CreateUser(t, gdb, "Client", models.RoleClient)
	err := NewWalletService(gdb).CreditClient(gdb, u.ID, 0, uuid.New(), "x")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}
