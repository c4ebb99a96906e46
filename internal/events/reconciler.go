package events

import (
	"context"
	"errors"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"friendship-service/internal/models"
)

// consumer is the slice of kafka.Reader the reconciler needs; narrowed so
// tests can feed records without a broker.
type consumer interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// userUpserter maintains the local User shadow copy.
type userUpserter interface {
	Upsert(ctx context.Context, user *models.User) error
}

// relationshipRemover is the subset of the friendship domain service used
// for compensating cleanup. Both operations report models.ErrNotFound when
// the entity is already gone; the reconciler treats that as a no-op.
type relationshipRemover interface {
	RejectFriendshipRequest(ctx context.Context, to, from string) error
	DeleteFriendship(ctx context.Context, a, b string) error
}

// Reconciler consumes the identity service's topics (UserCreated,
// UserBlocked) and replays them as local domain calls. Handling is
// idempotent under redelivery: cleanup of an already-absent entity does
// nothing and publishes nothing.
type Reconciler struct {
	reader  consumer
	users   userUpserter
	friends relationshipRemover
}

func NewReconciler(reader consumer, users userUpserter, friends relationshipRemover) *Reconciler {
	return &Reconciler{reader: reader, users: users, friends: friends}
}

// Run consumes until ctx is cancelled. Records that fail to decode are
// committed and skipped; records whose handling fails are not committed,
// so the broker redelivers them.
func (r *Reconciler) Run(ctx context.Context) {
	for {
		msg, err := r.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Error("fetch user event", "error", err)
			continue
		}

		event, err := models.DecodeEnvelope(msg.Value)
		if err != nil {
			slog.Warn("skip undecodable user event", "offset", msg.Offset, "error", err)
			r.commit(ctx, msg)
			continue
		}

		if err := r.handle(ctx, event); err != nil {
			slog.Error("reconcile user event", "topic", event.Topic(), "error", err)
			continue
		}
		r.commit(ctx, msg)
	}
}

func (r *Reconciler) handle(ctx context.Context, event models.DomainEvent) error {
	switch e := event.(type) {
	case *models.UserCreatedEvent:
		return r.users.Upsert(ctx, &models.User{Email: e.Email, Name: e.Name})

	case *models.UserBlockedEvent:
		return r.handleBlocked(ctx, e)

	default:
		// Other services' events on the same topic are not ours to handle.
		slog.Debug("ignore user event", "topic", event.Topic())
		return nil
	}
}

// handleBlocked removes, as one logical operation, any pending request in
// either direction between blocker and blocked, then the friendship
// itself. The domain service publishes FriendshipRequestRejected /
// FriendshipRemoved only for entities actually deleted, which keeps the
// published events exactly-once under redelivery.
func (r *Reconciler) handleBlocked(ctx context.Context, e *models.UserBlockedEvent) error {
	if err := r.friends.RejectFriendshipRequest(ctx, e.BlockedEmail, e.BlockerEmail); ignoreNotFound(err) != nil {
		return err
	}
	if err := r.friends.RejectFriendshipRequest(ctx, e.BlockerEmail, e.BlockedEmail); ignoreNotFound(err) != nil {
		return err
	}
	if err := r.friends.DeleteFriendship(ctx, e.BlockerEmail, e.BlockedEmail); ignoreNotFound(err) != nil {
		return err
	}
	return nil
}

func (r *Reconciler) commit(ctx context.Context, msg kafka.Message) {
	if err := r.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
		slog.Error("commit user event offset", "offset", msg.Offset, "error", err)
	}
}

// Close shuts down the underlying reader.
func (r *Reconciler) Close() error {
	return r.reader.Close()
}

func ignoreNotFound(err error) error {
	if errors.Is(err, models.ErrNotFound) {
		return nil
	}
	return err
}
