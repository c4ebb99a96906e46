package notify

import (
	"log/slog"
	"sync"

	"friendship-service/internal/events"
	"friendship-service/internal/models"
)

// streamQueueSize bounds each SSE stream. The bus dispatches events inline
// with the mutating request, so pushes must never wait on a client socket;
// a stream that falls this far behind is dropped instead.
const streamQueueSize = 64

// Pusher is the WebSocket side of the fan-out.
type Pusher interface {
	Push(email string, payload []byte)
}

// Stream is one user's open event stream. At most one exists per user; a
// new registration replaces (and closes) the previous one.
type Stream struct {
	email  string
	ch     chan []byte
	closed bool // guarded by the notifier's mutex
}

// Events is the channel the SSE handler drains. It is closed when the
// stream is replaced, dropped, or deregistered.
func (s *Stream) Events() <-chan []byte {
	return s.ch
}

// Notifier is the live notification fan-out. It subscribes once, at
// construction, to the friendship and message topics on the internal bus,
// re-derives the target user from each event, and pushes the serialized
// envelope to that user's open channels.
type Notifier struct {
	mu      sync.Mutex
	streams map[string]*Stream
	hub     Pusher
}

func NewNotifier(bus *events.Bus, hub Pusher) *Notifier {
	n := &Notifier{
		streams: make(map[string]*Stream),
		hub:     hub,
	}

	for _, topic := range []string{
		models.TopicFriendshipRequestSent,
		models.TopicFriendshipRequestAccepted,
		models.TopicFriendshipRequestRejected,
		models.TopicMessageSent,
		models.TopicMessageReceived,
	} {
		bus.Subscribe(topic, n.handle)
	}

	return n
}

// Register opens a stream for the user, replacing any previous one.
func (n *Notifier) Register(email string) *Stream {
	n.mu.Lock()
	defer n.mu.Unlock()

	if old, ok := n.streams[email]; ok {
		n.closeStreamLocked(old)
	}

	stream := &Stream{email: email, ch: make(chan []byte, streamQueueSize)}
	n.streams[email] = stream
	return stream
}

// Deregister closes the stream if it is still the user's current one. A
// stream already replaced by a newer registration is left alone.
func (n *Notifier) Deregister(stream *Stream) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if current, ok := n.streams[stream.email]; ok && current == stream {
		n.closeStreamLocked(stream)
	}
}

func (n *Notifier) closeStreamLocked(stream *Stream) {
	if !stream.closed {
		stream.closed = true
		close(stream.ch)
	}
	delete(n.streams, stream.email)
}

// handle runs inline on the publishing goroutine. Target derivation per
// event kind: request lifecycle events go to the original requester, a
// sent message to its receiver, and a received message back to the sender
// as delivery confirmation.
func (n *Notifier) handle(event models.DomainEvent) {
	target := routeTarget(event)
	if target == "" {
		return
	}

	payload, err := models.EncodeEnvelope(event)
	if err != nil {
		slog.Error("encode event for fan-out", "topic", event.Topic(), "error", err)
		return
	}

	n.pushStream(target, payload)
	if n.hub != nil {
		n.hub.Push(target, payload)
	}
}

// pushStream delivers to the user's SSE stream without blocking. A full
// queue drops the stream: a disconnected or wedged client must never
// surface as an error on the originating mutation.
func (n *Notifier) pushStream(email string, payload []byte) {
	n.mu.Lock()
	defer n.mu.Unlock()

	stream, ok := n.streams[email]
	if !ok {
		return
	}

	select {
	case stream.ch <- payload:
	default:
		slog.Warn("dropping slow event stream", "user", email)
		n.closeStreamLocked(stream)
	}
}

func routeTarget(event models.DomainEvent) string {
	switch e := event.(type) {
	case models.FriendshipRequestSentEvent:
		return e.FromEmail
	case models.FriendshipRequestAcceptedEvent:
		return e.FromEmail
	case models.FriendshipRequestRejectedEvent:
		return e.FromEmail
	case models.MessageSentEvent:
		return e.ReceiverEmail
	case models.MessageReceivedEvent:
		return e.SenderEmail
	}
	return ""
}
