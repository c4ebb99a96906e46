package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"friendship-service/internal/models"
	"friendship-service/internal/repository"
)

// EventSink receives domain events. The broker sink is fire-and-forget;
// the bus sink dispatches synchronously to in-process subscribers.
type EventSink interface {
	Publish(event models.DomainEvent)
}

// FriendshipService owns the request/friendship/message state machine.
// Every successful mutation publishes exactly one event, first to the
// broker (async) and then to the internal bus (sync), after the
// persistence write has completed.
type FriendshipService struct {
	users       repository.UserRepository
	friendships repository.FriendshipRepository
	messages    repository.MessageRepository
	broker      EventSink
	bus         EventSink
}

func NewFriendshipService(
	users repository.UserRepository,
	friendships repository.FriendshipRepository,
	messages repository.MessageRepository,
	broker EventSink,
	bus EventSink,
) *FriendshipService {
	return &FriendshipService{
		users:       users,
		friendships: friendships,
		messages:    messages,
		broker:      broker,
		bus:         bus,
	}
}

func (s *FriendshipService) publish(event models.DomainEvent) {
	s.broker.Publish(event)
	s.bus.Publish(event)
}

// AddFriendshipRequest persists a pending request from req.FromEmail to
// req.ToEmail. Both users must exist (the gateway's foreign keys enforce
// this) and the pair must not already be friends. A reverse-direction
// request may coexist; the two are independent entities.
func (s *FriendshipService) AddFriendshipRequest(ctx context.Context, req *models.FriendshipRequest) error {
	if req.ToEmail == "" || req.FromEmail == "" {
		return fmt.Errorf("%w: request needs both to and from", models.ErrInvalidArgument)
	}
	if req.ToEmail == req.FromEmail {
		return fmt.Errorf("%w: cannot request friendship with yourself", models.ErrInvalidArgument)
	}

	if _, err := s.friendships.FindFriendship(ctx, req.ToEmail, req.FromEmail); err == nil {
		return fmt.Errorf("%w: users are already friends", models.ErrConstraintViolation)
	} else if !errors.Is(err, models.ErrNotFound) {
		return err
	}

	if err := s.friendships.SaveRequest(ctx, req); err != nil {
		return err
	}

	s.publish(models.FriendshipRequestSentEvent{ToEmail: req.ToEmail, FromEmail: req.FromEmail})
	return nil
}

// AcceptFriendshipRequest consumes the pending request and establishes the
// friendship. Returns models.ErrNotFound when no such request exists; a
// concurrent accept/reject loses the race the same way.
func (s *FriendshipService) AcceptFriendshipRequest(ctx context.Context, to, from string) error {
	if err := s.friendships.DeleteRequest(ctx, to, from); err != nil {
		return err
	}

	friendship := models.NewFriendship(to, from)
	if err := s.friendships.SaveFriendship(ctx, &friendship); err != nil {
		return err
	}

	s.publish(models.FriendshipRequestAcceptedEvent{ToEmail: to, FromEmail: from})
	return nil
}

// RejectFriendshipRequest discards the pending request without creating a
// friendship.
func (s *FriendshipService) RejectFriendshipRequest(ctx context.Context, to, from string) error {
	if err := s.friendships.DeleteRequest(ctx, to, from); err != nil {
		return err
	}

	s.publish(models.FriendshipRequestRejectedEvent{ToEmail: to, FromEmail: from})
	return nil
}

// DeleteFriendship removes an established friendship (unfriend). The pair
// may be given in either order. Message history is untouched.
func (s *FriendshipService) DeleteFriendship(ctx context.Context, a, b string) error {
	if err := s.friendships.DeleteFriendship(ctx, a, b); err != nil {
		return err
	}

	pair := models.NewFriendship(a, b)
	s.publish(models.FriendshipRemovedEvent{UserAEmail: pair.UserAEmail, UserBEmail: pair.UserBEmail})
	return nil
}

func (s *FriendshipService) GetFriendship(ctx context.Context, a, b string) (*models.Friendship, error) {
	return s.friendships.FindFriendship(ctx, a, b)
}

func (s *FriendshipService) GetAllFriendsByEmail(ctx context.Context, email string) ([]models.User, error) {
	return s.friendships.GetFriendsByEmail(ctx, email)
}

func (s *FriendshipService) GetFriendshipRequest(ctx context.Context, to, from string) (*models.FriendshipRequest, error) {
	return s.friendships.FindRequest(ctx, to, from)
}

func (s *FriendshipService) GetAllFriendshipRequestsByEmail(ctx context.Context, email string) ([]models.FriendshipRequest, error) {
	return s.friendships.GetRequestsByEmail(ctx, email)
}

// SendMessage persists the message and publishes MessageSent, which the
// fan-out routes to the receiver's live channel.
func (s *FriendshipService) SendMessage(ctx context.Context, msg *models.Message) error {
	if err := s.prepareMessage(ctx, msg); err != nil {
		return err
	}
	if err := s.messages.Save(ctx, msg); err != nil {
		return err
	}

	s.publish(models.MessageSentEvent{
		ID:            msg.ID,
		SenderEmail:   msg.SenderEmail,
		ReceiverEmail: msg.ReceiverEmail,
		Content:       msg.Content,
	})
	return nil
}

// ReceiveMessage records the inbound side of a message and publishes
// MessageReceived, mirrored to the sender's live channel as a delivery
// confirmation. The persist is idempotent on the message id: when the
// sender's copy is already stored, the stored copy wins and only the
// event is emitted.
func (s *FriendshipService) ReceiveMessage(ctx context.Context, msg *models.Message) error {
	if err := s.prepareMessage(ctx, msg); err != nil {
		return err
	}

	if existing, err := s.messages.FindByID(ctx, msg.ID); err == nil {
		*msg = *existing
	} else if errors.Is(err, models.ErrNotFound) {
		if err := s.messages.Save(ctx, msg); err != nil {
			return err
		}
	} else {
		return err
	}

	s.publish(models.MessageReceivedEvent{
		ID:            msg.ID,
		SenderEmail:   msg.SenderEmail,
		ReceiverEmail: msg.ReceiverEmail,
		Content:       msg.Content,
	})
	return nil
}

// prepareMessage validates the friends-only rule and fills in generated
// fields. Messages are only accepted between current friends; once stored
// they outlive the friendship.
func (s *FriendshipService) prepareMessage(ctx context.Context, msg *models.Message) error {
	if msg.SenderEmail == "" || msg.ReceiverEmail == "" {
		return fmt.Errorf("%w: message needs sender and receiver", models.ErrInvalidArgument)
	}
	if msg.Content == "" && msg.AttachmentURL == "" {
		return fmt.Errorf("%w: message needs content or an attachment", models.ErrInvalidArgument)
	}

	if _, err := s.friendships.FindFriendship(ctx, msg.SenderEmail, msg.ReceiverEmail); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return fmt.Errorf("%w: users are not friends", models.ErrConstraintViolation)
		}
		return err
	}

	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	return nil
}

func (s *FriendshipService) GetMessage(ctx context.Context, id string) (*models.Message, error) {
	return s.messages.FindByID(ctx, id)
}

func (s *FriendshipService) GetMessagesBetween(ctx context.Context, a, b string) ([]models.Message, error) {
	return s.messages.FindBetween(ctx, a, b)
}

// DeleteMessage is the only way a message disappears; neither unfriending
// nor user deletion cascades into message history.
func (s *FriendshipService) DeleteMessage(ctx context.Context, id string) error {
	return s.messages.DeleteByID(ctx, id)
}
