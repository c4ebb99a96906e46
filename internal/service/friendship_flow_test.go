package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"friendship-service/internal/events"
	"friendship-service/internal/models"
	"friendship-service/internal/notify"
)

// End-to-end flow over the real bus and fan-out: request, accept, message,
// push to the receiver's open stream.
func TestFriendshipFlowDeliversLivePush(t *testing.T) {
	store := newMemStore()
	store.users[alice] = models.User{Email: alice}
	store.users[bob] = models.User{Email: bob}

	bus := events.NewBus()
	broker := &recordingSink{}
	svc := NewFriendshipService(store, store, messageStore{store}, broker, bus)
	notifier := notify.NewNotifier(bus, nil)

	ctx := context.Background()
	bobStream := notifier.Register(bob)

	// A sends a request to B; B accepts.
	require.NoError(t, svc.AddFriendshipRequest(ctx, &models.FriendshipRequest{ToEmail: bob, FromEmail: alice}))
	require.NoError(t, svc.AcceptFriendshipRequest(ctx, bob, alice))

	_, err := svc.GetFriendship(ctx, alice, bob)
	require.NoError(t, err)

	// Request lifecycle events go to the requester (alice), so bob's
	// stream must still be empty.
	assert.Empty(t, bobStream.Events())

	// A messages B; B's open stream receives the MessageSent envelope.
	require.NoError(t, svc.SendMessage(ctx, &models.Message{SenderEmail: alice, ReceiverEmail: bob, Content: "hi"}))

	select {
	case payload := <-bobStream.Events():
		var envelope map[string]any
		require.NoError(t, json.Unmarshal(payload, &envelope))
		assert.Equal(t, models.TopicMessageSent, envelope["topic"])
		assert.Equal(t, "hi", envelope["content"])
		assert.Equal(t, alice, envelope["sender"])
	default:
		t.Fatal("expected a push on bob's stream")
	}

	// After deregistration no further pushes arrive.
	notifier.Deregister(bobStream)
	require.NoError(t, svc.SendMessage(ctx, &models.Message{SenderEmail: alice, ReceiverEmail: bob, Content: "again"}))
	_, open := <-bobStream.Events()
	assert.False(t, open, "stream is closed after deregistration")
}
