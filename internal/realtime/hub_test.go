package realtime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitConnected(t *testing.T, h *Hub, id uuid.UUID, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return h.Connected(id) == n }, time.Second, 5*time.Millisecond)
}

func TestNotifyReachesEveryTabOfUser(t *testing.T) {
	h := NewHub()
	go h.Run()

	user := uuid.New()
	other := uuid.New()
	tab1, tab2, stranger := NewClient(user), NewClient(user), NewClient(other)
	h.RegisterClient(tab1)
	h.RegisterClient(tab2)
	h.RegisterClient(stranger)
	waitConnected(t, h, user, 2)

	h.Notify(user, TypeRoleUpdated, map[string]string{"role": "freelancer"})

	for _, c := range []*Client{tab1, tab2} {
		select {
		case msg := <-c.Send:
			var n Notification
			require.NoError(t, json.Unmarshal(msg, &n))
			assert.Equal(t, TypeRoleUpdated, n.Type)
		case <-time.After(time.Second):
			t.Fatal("notification not delivered")
		}
	}
	assert.Empty(t, stranger.Send)
}

func TestUnregisterClosesSend(t *testing.T) {
	h := NewHub()
	go h.Run()

	user := uuid.New()
	c := NewClient(user)
	h.RegisterClient(c)
	waitConnected(t, h, user, 1)

	h.UnregisterClient(c)
	waitConnected(t, h, user, 0)
	_, open := <-c.Send
	assert.False(t, open)
}

func TestNotifyDoesNotBlockOnFullBuffer(t *testing.T) {
	h := NewHub()
	go h.Run()

	user := uuid.New()
	c := &Client{ID: "slow", UserID: user, Send: make(chan []byte)}
	h.RegisterClient(c)
	waitConnected(t, h, user, 1)

	done := make(chan struct{})
	go func() {
		h.Notify(user, TypeRoleUpdated, nil)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked")
	}
}
