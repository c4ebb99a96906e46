package models

import (
	"encoding/json"
	"fmt"
)

// Event topics. These double as the "topic" field of the wire envelope and
// as the internal bus subscription keys.
const (
	TopicUserCreated               = "UserCreated"
	TopicUserBlocked               = "UserBlocked"
	TopicFriendshipRequestSent     = "FriendshipRequestSent"
	TopicFriendshipRequestAccepted = "FriendshipRequestAccepted"
	TopicFriendshipRequestRejected = "FriendshipRequestRejected"
	TopicFriendshipRemoved         = "FriendshipRemoved"
	TopicMessageSent               = "MessageSent"
	TopicMessageReceived           = "MessageReceived"
)

// DomainEvent is an immutable record of a state change. The set of
// implementations is closed; decoding dispatches over the registry below
// rather than reflecting on payloads.
type DomainEvent interface {
	// Topic names the event kind.
	Topic() string
	// Key is the broker partition key, chosen so all events touching one
	// user pair (or one user) land on the same partition.
	Key() string
}

type UserCreatedEvent struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (e UserCreatedEvent) Topic() string { return TopicUserCreated }
func (e UserCreatedEvent) Key() string   { return e.Email }

type UserBlockedEvent struct {
	BlockerEmail string `json:"blocker"`
	BlockedEmail string `json:"blocked"`
}

func (e UserBlockedEvent) Topic() string { return TopicUserBlocked }
func (e UserBlockedEvent) Key() string   { return e.BlockerEmail }

type FriendshipRequestSentEvent struct {
	ToEmail   string `json:"to"`
	FromEmail string `json:"from"`
}

func (e FriendshipRequestSentEvent) Topic() string { return TopicFriendshipRequestSent }
func (e FriendshipRequestSentEvent) Key() string   { return e.FromEmail }

type FriendshipRequestAcceptedEvent struct {
	ToEmail   string `json:"to"`
	FromEmail string `json:"from"`
}

func (e FriendshipRequestAcceptedEvent) Topic() string { return TopicFriendshipRequestAccepted }
func (e FriendshipRequestAcceptedEvent) Key() string   { return e.FromEmail }

type FriendshipRequestRejectedEvent struct {
	ToEmail   string `json:"to"`
	FromEmail string `json:"from"`
}

func (e FriendshipRequestRejectedEvent) Topic() string { return TopicFriendshipRequestRejected }
func (e FriendshipRequestRejectedEvent) Key() string   { return e.FromEmail }

type FriendshipRemovedEvent struct {
	UserAEmail string `json:"userA"`
	UserBEmail string `json:"userB"`
}

func (e FriendshipRemovedEvent) Topic() string { return TopicFriendshipRemoved }
func (e FriendshipRemovedEvent) Key() string   { return e.UserAEmail }

type MessageSentEvent struct {
	ID            string `json:"id"`
	SenderEmail   string `json:"sender"`
	ReceiverEmail string `json:"receiver"`
	Content       string `json:"content"`
}

func (e MessageSentEvent) Topic() string { return TopicMessageSent }
func (e MessageSentEvent) Key() string   { return e.SenderEmail }

type MessageReceivedEvent struct {
	ID            string `json:"id"`
	SenderEmail   string `json:"sender"`
	ReceiverEmail string `json:"receiver"`
	Content       string `json:"content"`
}

func (e MessageReceivedEvent) Topic() string { return TopicMessageReceived }
func (e MessageReceivedEvent) Key() string   { return e.ReceiverEmail }

// eventFactories is the decode dispatch table, one factory per topic.
var eventFactories = map[string]func() DomainEvent{
	TopicUserCreated:               func() DomainEvent { return &UserCreatedEvent{} },
	TopicUserBlocked:               func() DomainEvent { return &UserBlockedEvent{} },
	TopicFriendshipRequestSent:     func() DomainEvent { return &FriendshipRequestSentEvent{} },
	TopicFriendshipRequestAccepted: func() DomainEvent { return &FriendshipRequestAcceptedEvent{} },
	TopicFriendshipRequestRejected: func() DomainEvent { return &FriendshipRequestRejectedEvent{} },
	TopicFriendshipRemoved:         func() DomainEvent { return &FriendshipRemovedEvent{} },
	TopicMessageSent:               func() DomainEvent { return &MessageSentEvent{} },
	TopicMessageReceived:           func() DomainEvent { return &MessageReceivedEvent{} },
}

// EncodeEnvelope serializes an event as a flat JSON object of its fields
// plus a "topic" discriminator. There is no version field; consumers key
// off the topic alone.
func EncodeEnvelope(e DomainEvent) ([]byte, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	fields["topic"] = e.Topic()
	return json.Marshal(fields)
}

// DecodeEnvelope parses a wire envelope back into its concrete event. The
// returned event is a pointer to the concrete type.
func DecodeEnvelope(data []byte) (DomainEvent, error) {
	var head struct {
		Topic string `json:"topic"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode event envelope: %w", err)
	}
	factory, ok := eventFactories[head.Topic]
	if !ok {
		return nil, fmt.Errorf("decode event envelope: unknown topic %q", head.Topic)
	}
	event := factory()
	if err := json.Unmarshal(data, event); err != nil {
		return nil, fmt.Errorf("decode %s event: %w", head.Topic, err)
	}
	return event, nil
}
