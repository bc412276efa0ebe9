package notifications

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// TestHubClientHandoffAfterStop verifies that register and unregister
// handoffs return promptly once the run loop has exited, instead of leaving
// lingering connection goroutines blocked at shutdown.
func TestHubClientHandoffAfterStop(t *testing.T) {
	hub := NewHub(zap.NewNop())
	go hub.Run()
	hub.Stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		c := &client{send: make(chan Message, 1)}
		assert.False(t, hub.add(c), "a stopped hub must refuse new clients")
		hub.remove(c)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("client handoff blocked after hub stop")
	}
}

func TestHubRegisterAndBroadcast(t *testing.T) {
	hub := NewHub(zap.NewNop())
	go hub.Run()
	defer hub.Stop()

	c := &client{send: make(chan Message, 1)}
	assert.True(t, hub.add(c))

	hub.Broadcast(Message{Type: "delinquency_alert"})

	select {
	case msg := <-c.send:
		assert.Equal(t, "delinquency_alert", msg.Type)
	case <-time.After(time.Second):
		t.Fatal("registered client did not receive broadcast")
	}

	// Detach before Stop; the test client has no underlying connection.
	hub.remove(c)
}
