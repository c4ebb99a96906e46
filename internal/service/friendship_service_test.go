package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"friendship-service/internal/models"
)

// memStore is an in-memory persistence gateway implementing all three
// repository interfaces with the same integrity rules the postgres gateway
// enforces: identity uniqueness, user references for requests and
// friendships, and user-deletion cascade that spares messages.
type memStore struct {
	users       map[string]models.User
	requests    map[[2]string]models.FriendshipRequest
	friendships map[[2]string]models.Friendship
	messages    map[string]models.Message
}

func newMemStore() *memStore {
	return &memStore{
		users:       make(map[string]models.User),
		requests:    make(map[[2]string]models.FriendshipRequest),
		friendships: make(map[[2]string]models.Friendship),
		messages:    make(map[string]models.Message),
	}
}

func (m *memStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	u, ok := m.users[email]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &u, nil
}

func (m *memStore) FindAll(_ context.Context) ([]models.User, error) {
	var users []models.User
	for _, u := range m.users {
		users = append(users, u)
	}
	return users, nil
}

func (m *memStore) Save(_ context.Context, user *models.User) error {
	if _, ok := m.users[user.Email]; ok {
		return models.ErrDuplicateKey
	}
	m.users[user.Email] = *user
	return nil
}

func (m *memStore) Upsert(_ context.Context, user *models.User) error {
	m.users[user.Email] = *user
	return nil
}

func (m *memStore) Update(_ context.Context, user *models.User) error {
	if _, ok := m.users[user.Email]; !ok {
		return models.ErrNotFound
	}
	m.users[user.Email] = *user
	return nil
}

func (m *memStore) DeleteByEmail(_ context.Context, email string) error {
	if _, ok := m.users[email]; !ok {
		return models.ErrNotFound
	}
	delete(m.users, email)
	for key := range m.requests {
		if key[0] == email || key[1] == email {
			delete(m.requests, key)
		}
	}
	for key := range m.friendships {
		if key[0] == email || key[1] == email {
			delete(m.friendships, key)
		}
	}
	// Messages survive user deletion (retained history).
	return nil
}

func (m *memStore) SaveRequest(_ context.Context, req *models.FriendshipRequest) error {
	if _, ok := m.users[req.ToEmail]; !ok {
		return models.ErrReferenceViolation
	}
	if _, ok := m.users[req.FromEmail]; !ok {
		return models.ErrReferenceViolation
	}
	key := [2]string{req.ToEmail, req.FromEmail}
	if _, ok := m.requests[key]; ok {
		return models.ErrDuplicateKey
	}
	m.requests[key] = *req
	return nil
}

func (m *memStore) FindRequest(_ context.Context, to, from string) (*models.FriendshipRequest, error) {
	req, ok := m.requests[[2]string{to, from}]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &req, nil
}

func (m *memStore) DeleteRequest(_ context.Context, to, from string) error {
	key := [2]string{to, from}
	if _, ok := m.requests[key]; !ok {
		return models.ErrNotFound
	}
	delete(m.requests, key)
	return nil
}

func (m *memStore) FindAllRequests(_ context.Context) ([]models.FriendshipRequest, error) {
	var reqs []models.FriendshipRequest
	for _, r := range m.requests {
		reqs = append(reqs, r)
	}
	return reqs, nil
}

func (m *memStore) GetRequestsByEmail(_ context.Context, email string) ([]models.FriendshipRequest, error) {
	reqs := []models.FriendshipRequest{}
	for key, r := range m.requests {
		if key[0] == email || key[1] == email {
			reqs = append(reqs, r)
		}
	}
	return reqs, nil
}

func friendshipKey(a, b string) [2]string {
	pair := models.NewFriendship(a, b)
	return [2]string{pair.UserAEmail, pair.UserBEmail}
}

func (m *memStore) SaveFriendship(_ context.Context, f *models.Friendship) error {
	if _, ok := m.users[f.UserAEmail]; !ok {
		return models.ErrReferenceViolation
	}
	if _, ok := m.users[f.UserBEmail]; !ok {
		return models.ErrReferenceViolation
	}
	key := friendshipKey(f.UserAEmail, f.UserBEmail)
	if _, ok := m.friendships[key]; ok {
		return models.ErrDuplicateKey
	}
	m.friendships[key] = models.NewFriendship(f.UserAEmail, f.UserBEmail)
	return nil
}

func (m *memStore) FindFriendship(_ context.Context, a, b string) (*models.Friendship, error) {
	f, ok := m.friendships[friendshipKey(a, b)]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &f, nil
}

func (m *memStore) DeleteFriendship(_ context.Context, a, b string) error {
	key := friendshipKey(a, b)
	if _, ok := m.friendships[key]; !ok {
		return models.ErrNotFound
	}
	delete(m.friendships, key)
	return nil
}

func (m *memStore) FindAllFriendships(_ context.Context) ([]models.Friendship, error) {
	var friendships []models.Friendship
	for _, f := range m.friendships {
		friendships = append(friendships, f)
	}
	return friendships, nil
}

func (m *memStore) GetFriendsByEmail(_ context.Context, email string) ([]models.User, error) {
	friends := []models.User{}
	for _, f := range m.friendships {
		if f.Contains(email) {
			if u, ok := m.users[f.Other(email)]; ok {
				friends = append(friends, u)
			}
		}
	}
	return friends, nil
}

func (m *memStore) SaveMessage(_ context.Context, msg *models.Message) error {
	if _, ok := m.messages[msg.ID]; ok {
		return models.ErrDuplicateKey
	}
	m.messages[msg.ID] = *msg
	return nil
}

func (m *memStore) FindByID(_ context.Context, id string) (*models.Message, error) {
	msg, ok := m.messages[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &msg, nil
}

func (m *memStore) FindBetween(_ context.Context, a, b string) ([]models.Message, error) {
	msgs := []models.Message{}
	for _, msg := range m.messages {
		if (msg.SenderEmail == a && msg.ReceiverEmail == b) || (msg.SenderEmail == b && msg.ReceiverEmail == a) {
			msgs = append(msgs, msg)
		}
	}
	return msgs, nil
}

func (m *memStore) DeleteByID(_ context.Context, id string) error {
	if _, ok := m.messages[id]; !ok {
		return models.ErrNotFound
	}
	delete(m.messages, id)
	return nil
}

// messageStore adapts memStore to the MessageRepository's Save and FindAll
// names, which collide with UserRepository's on the shared struct.
type messageStore struct{ *memStore }

func (m messageStore) Save(ctx context.Context, msg *models.Message) error {
	return m.SaveMessage(ctx, msg)
}

func (m messageStore) FindAll(_ context.Context) ([]models.Message, error) {
	var msgs []models.Message
	for _, msg := range m.messages {
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

// recordingSink captures published events in order.
type recordingSink struct {
	events []models.DomainEvent
}

func (r *recordingSink) Publish(event models.DomainEvent) {
	r.events = append(r.events, event)
}

func (r *recordingSink) topics() []string {
	topics := make([]string, len(r.events))
	for i, e := range r.events {
		topics[i] = e.Topic()
	}
	return topics
}

type fixture struct {
	store  *memStore
	broker *recordingSink
	bus    *recordingSink
	svc    *FriendshipService
}

func newFixture(t *testing.T, users ...string) *fixture {
	t.Helper()
	store := newMemStore()
	for _, email := range users {
		store.users[email] = models.User{Email: email}
	}
	broker := &recordingSink{}
	bus := &recordingSink{}
	svc := NewFriendshipService(store, store, messageStore{store}, broker, bus)
	return &fixture{store: store, broker: broker, bus: bus, svc: svc}
}

const (
	alice = "alice@example.com"
	bob   = "bob@example.com"
	carol = "carol@example.com"
)

func TestAddFriendshipRequestAndGet(t *testing.T) {
	f := newFixture(t, alice, bob)
	ctx := context.Background()

	req := &models.FriendshipRequest{ToEmail: bob, FromEmail: alice}
	require.NoError(t, f.svc.AddFriendshipRequest(ctx, req))

	got, err := f.svc.GetFriendshipRequest(ctx, bob, alice)
	require.NoError(t, err)
	assert.Equal(t, bob, got.ToEmail)
	assert.Equal(t, alice, got.FromEmail)

	assert.Equal(t, []string{models.TopicFriendshipRequestSent}, f.bus.topics())
	assert.Equal(t, []string{models.TopicFriendshipRequestSent}, f.broker.topics())
}

func TestAddFriendshipRequestValidation(t *testing.T) {
	f := newFixture(t, alice, bob)
	ctx := context.Background()

	tests := []struct {
		name string
		req  *models.FriendshipRequest
		want error
	}{
		{"missing to", &models.FriendshipRequest{FromEmail: alice}, models.ErrInvalidArgument},
		{"missing from", &models.FriendshipRequest{ToEmail: bob}, models.ErrInvalidArgument},
		{"self request", &models.FriendshipRequest{ToEmail: alice, FromEmail: alice}, models.ErrInvalidArgument},
		{"unknown recipient", &models.FriendshipRequest{ToEmail: carol, FromEmail: alice}, models.ErrReferenceViolation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.svc.AddFriendshipRequest(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, f.bus.events, "failed mutations must not publish")
}

func TestAddFriendshipRequestDuplicate(t *testing.T) {
	f := newFixture(t, alice, bob)
	ctx := context.Background()

	require.NoError(t, f.svc.AddFriendshipRequest(ctx, &models.FriendshipRequest{ToEmail: bob, FromEmail: alice}))
	err := f.svc.AddFriendshipRequest(ctx, &models.FriendshipRequest{ToEmail: bob, FromEmail: alice})
	assert.ErrorIs(t, err, models.ErrDuplicateKey)
}

func TestAddFriendshipRequestWhenAlreadyFriends(t *testing.T) {
	f := newFixture(t, alice, bob)
	ctx := context.Background()

	require.NoError(t, f.svc.AddFriendshipRequest(ctx, &models.FriendshipRequest{ToEmail: bob, FromEmail: alice}))
	require.NoError(t, f.svc.AcceptFriendshipRequest(ctx, bob, alice))

	err := f.svc.AddFriendshipRequest(ctx, &models.FriendshipRequest{ToEmail: bob, FromEmail: alice})
	assert.ErrorIs(t, err, models.ErrConstraintViolation)
}

func TestReverseDirectionRequestsCoexist(t *testing.T) {
	// (A,B) and (B,A) are independent entities; no auto-merge happens.
	f := newFixture(t, alice, bob)
	ctx := context.Background()

	require.NoError(t, f.svc.AddFriendshipRequest(ctx, &models.FriendshipRequest{ToEmail: bob, FromEmail: alice}))
	require.NoError(t, f.svc.AddFriendshipRequest(ctx, &models.FriendshipRequest{ToEmail: alice, FromEmail: bob}))

	_, err := f.svc.GetFriendshipRequest(ctx, bob, alice)
	require.NoError(t, err)
	_, err = f.svc.GetFriendshipRequest(ctx, alice, bob)
	require.NoError(t, err)
}

func TestAcceptFriendshipRequest(t *testing.T) {
	f := newFixture(t, alice, bob)
	ctx := context.Background()

	require.NoError(t, f.svc.AddFriendshipRequest(ctx, &models.FriendshipRequest{ToEmail: bob, FromEmail: alice}))
	require.NoError(t, f.svc.AcceptFriendshipRequest(ctx, bob, alice))

	_, err := f.svc.GetFriendshipRequest(ctx, bob, alice)
	assert.ErrorIs(t, err, models.ErrNotFound, "accept consumes the request")

	// The friendship is canonical: both orientations find the same entity.
	ab, err := f.svc.GetFriendship(ctx, alice, bob)
	require.NoError(t, err)
	ba, err := f.svc.GetFriendship(ctx, bob, alice)
	require.NoError(t, err)
	assert.Equal(t, ab, ba)

	assert.Equal(t, []string{
		models.TopicFriendshipRequestSent,
		models.TopicFriendshipRequestAccepted,
	}, f.bus.topics())
}

func TestAcceptMissingRequest(t *testing.T) {
	f := newFixture(t, alice, bob)
	err := f.svc.AcceptFriendshipRequest(context.Background(), bob, alice)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Empty(t, f.bus.events)
}

func TestRejectFriendshipRequest(t *testing.T) {
	f := newFixture(t, alice, bob)
	ctx := context.Background()

	require.NoError(t, f.svc.AddFriendshipRequest(ctx, &models.FriendshipRequest{ToEmail: bob, FromEmail: alice}))
	require.NoError(t, f.svc.RejectFriendshipRequest(ctx, bob, alice))

	_, err := f.svc.GetFriendshipRequest(ctx, bob, alice)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = f.svc.GetFriendship(ctx, alice, bob)
	assert.ErrorIs(t, err, models.ErrNotFound, "reject must not create a friendship")
}

func TestRejectMissingRequest(t *testing.T) {
	f := newFixture(t, alice, bob)
	err := f.svc.RejectFriendshipRequest(context.Background(), bob, alice)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDeleteFriendship(t *testing.T) {
	f := newFixture(t, alice, bob)
	ctx := context.Background()

	require.NoError(t, f.svc.AddFriendshipRequest(ctx, &models.FriendshipRequest{ToEmail: bob, FromEmail: alice}))
	require.NoError(t, f.svc.AcceptFriendshipRequest(ctx, bob, alice))
	require.NoError(t, f.svc.DeleteFriendship(ctx, bob, alice))

	_, err := f.svc.GetFriendship(ctx, alice, bob)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDeleteMissingFriendship(t *testing.T) {
	f := newFixture(t, alice, bob)
	err := f.svc.DeleteFriendship(context.Background(), alice, bob)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func befriend(t *testing.T, f *fixture, a, b string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.svc.AddFriendshipRequest(ctx, &models.FriendshipRequest{ToEmail: b, FromEmail: a}))
	require.NoError(t, f.svc.AcceptFriendshipRequest(ctx, b, a))
}

func TestSendMessageRequiresFriendship(t *testing.T) {
	f := newFixture(t, alice, bob)
	msg := &models.Message{SenderEmail: alice, ReceiverEmail: bob, Content: "hi"}
	err := f.svc.SendMessage(context.Background(), msg)
	assert.ErrorIs(t, err, models.ErrConstraintViolation)
}

func TestSendMessagePersistsAndPublishes(t *testing.T) {
	f := newFixture(t, alice, bob)
	ctx := context.Background()
	befriend(t, f, alice, bob)

	msg := &models.Message{SenderEmail: alice, ReceiverEmail: bob, Content: "hi"}
	require.NoError(t, f.svc.SendMessage(ctx, msg))
	require.NotEmpty(t, msg.ID, "message gets a generated id")

	got, err := f.svc.GetMessage(ctx, msg.ID)
	require.NoError(t, err)
	assert.Equal(t, "hi", got.Content)

	last := f.bus.events[len(f.bus.events)-1]
	sent, ok := last.(models.MessageSentEvent)
	require.True(t, ok)
	assert.Equal(t, msg.ID, sent.ID)
	assert.Equal(t, "hi", sent.Content)
}

func TestReceiveMessageIdempotentOnStoredCopy(t *testing.T) {
	f := newFixture(t, alice, bob)
	ctx := context.Background()
	befriend(t, f, alice, bob)

	msg := &models.Message{SenderEmail: alice, ReceiverEmail: bob, Content: "hi"}
	require.NoError(t, f.svc.SendMessage(ctx, msg))

	ack := &models.Message{ID: msg.ID, SenderEmail: alice, ReceiverEmail: bob, Content: "hi"}
	require.NoError(t, f.svc.ReceiveMessage(ctx, ack))

	msgs, err := f.svc.GetMessagesBetween(ctx, alice, bob)
	require.NoError(t, err)
	assert.Len(t, msgs, 1, "ack of a stored message must not duplicate it")

	last := f.bus.events[len(f.bus.events)-1]
	assert.Equal(t, models.TopicMessageReceived, last.Topic())
}

func TestMessageHistoryOutlivesFriendship(t *testing.T) {
	f := newFixture(t, alice, bob)
	ctx := context.Background()
	befriend(t, f, alice, bob)

	msg := &models.Message{SenderEmail: alice, ReceiverEmail: bob, Content: "hi"}
	require.NoError(t, f.svc.SendMessage(ctx, msg))
	require.NoError(t, f.svc.DeleteFriendship(ctx, alice, bob))

	got, err := f.svc.GetMessage(ctx, msg.ID)
	require.NoError(t, err)
	assert.Equal(t, "hi", got.Content)

	// But without the friendship no new messages are accepted.
	err = f.svc.SendMessage(ctx, &models.Message{SenderEmail: alice, ReceiverEmail: bob, Content: "again"})
	assert.ErrorIs(t, err, models.ErrConstraintViolation)
}

func TestUserDeletionCascadesButSparesMessages(t *testing.T) {
	f := newFixture(t, alice, bob, carol)
	ctx := context.Background()
	befriend(t, f, alice, bob)
	require.NoError(t, f.svc.AddFriendshipRequest(ctx, &models.FriendshipRequest{ToEmail: alice, FromEmail: carol}))

	msg := &models.Message{SenderEmail: alice, ReceiverEmail: bob, Content: "hi"}
	require.NoError(t, f.svc.SendMessage(ctx, msg))

	require.NoError(t, f.store.DeleteByEmail(ctx, alice))

	_, err := f.svc.GetFriendship(ctx, alice, bob)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = f.svc.GetFriendshipRequest(ctx, alice, carol)
	assert.ErrorIs(t, err, models.ErrNotFound)

	got, err := f.svc.GetMessage(ctx, msg.ID)
	require.NoError(t, err)
	assert.Equal(t, "hi", got.Content)
}

func TestEveryMutationPublishesOnceOnBothChannels(t *testing.T) {
	f := newFixture(t, alice, bob)
	ctx := context.Background()

	require.NoError(t, f.svc.AddFriendshipRequest(ctx, &models.FriendshipRequest{ToEmail: bob, FromEmail: alice}))
	require.NoError(t, f.svc.AcceptFriendshipRequest(ctx, bob, alice))
	require.NoError(t, f.svc.SendMessage(ctx, &models.Message{SenderEmail: alice, ReceiverEmail: bob, Content: "hi"}))
	require.NoError(t, f.svc.DeleteFriendship(ctx, alice, bob))

	want := []string{
		models.TopicFriendshipRequestSent,
		models.TopicFriendshipRequestAccepted,
		models.TopicMessageSent,
		models.TopicFriendshipRemoved,
	}
	assert.Equal(t, want, f.bus.topics())
	assert.Equal(t, want, f.broker.topics())
}

func TestGetAllFriendsByEmail(t *testing.T) {
	f := newFixture(t, alice, bob, carol)
	befriend(t, f, alice, bob)
	befriend(t, f, alice, carol)

	friends, err := f.svc.GetAllFriendsByEmail(context.Background(), alice)
	require.NoError(t, err)

	emails := make([]string, len(friends))
	for i, u := range friends {
		emails[i] = u.Email
	}
	assert.ElementsMatch(t, []string{bob, carol}, emails)
}

func TestGetAllFriendshipRequestsByEmail(t *testing.T) {
	f := newFixture(t, alice, bob, carol)
	ctx := context.Background()
	require.NoError(t, f.svc.AddFriendshipRequest(ctx, &models.FriendshipRequest{ToEmail: alice, FromEmail: bob}))
	require.NoError(t, f.svc.AddFriendshipRequest(ctx, &models.FriendshipRequest{ToEmail: carol, FromEmail: alice}))

	reqs, err := f.svc.GetAllFriendshipRequestsByEmail(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, reqs, 2)
}
