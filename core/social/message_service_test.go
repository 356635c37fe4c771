package social

import (
	"context"
	"testing"
	"time"

	"resonate/apperror"
	"resonate/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMessageRepo struct {
	nextID   int64
	now      time.Time
	messages []*model.Message
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{nextID: 1, now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (r *fakeMessageRepo) CreateMessage(ctx context.Context, msg *model.Message) error {
	msg.ID = r.nextID
	r.nextID++
	msg.CreatedAt = r.now
	r.now = r.now.Add(time.Second)
	clone := *msg
	r.messages = append(r.messages, &clone)
	return nil
}

func (r *fakeMessageRepo) GetConversation(ctx context.Context, userA, userB int64) ([]*model.Message, error) {
	out := make([]*model.Message, 0)
	for _, m := range r.messages {
		if (m.FromUserID == userA && m.ToUserID == userB) ||
			(m.FromUserID == userB && m.ToUserID == userA) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) GetMessagesInvolving(ctx context.Context, userID int64) ([]*model.Message, error) {
	out := make([]*model.Message, 0)
	for i := len(r.messages) - 1; i >= 0; i-- {
		if r.messages[i].FromUserID == userID || r.messages[i].ToUserID == userID {
			out = append(out, r.messages[i])
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) MarkConversationRead(ctx context.Context, toUserID, fromUserID int64) error {
	for _, m := range r.messages {
		if m.ToUserID == toUserID && m.FromUserID == fromUserID {
			m.Read = true
		}
	}
	return nil
}

func newMessageFixture(t *testing.T) (*MessageService, *fakeNotificationRepo) {
	t.Helper()
	users := newFakeUserRepo(
		&model.User{ID: 1, Username: "alice"},
		&model.User{ID: 2, Username: "bob"},
		&model.User{ID: 3, Username: "carol"},
	)
	notifRepo := newFakeNotificationRepo()
	svc := NewMessageService(newFakeMessageRepo(), users, NewNotificationService(notifRepo, nil))
	return svc, notifRepo
}

func TestSendMessageValidation(t *testing.T) {
	svc, _ := newMessageFixture(t)
	ctx := context.Background()

	_, err := svc.Send(ctx, alice, bob.ID, "   ")
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = svc.Send(ctx, alice, alice.ID, "hello me")
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = svc.Send(ctx, alice, 99, "hello")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestSendMessageNotifiesRecipient(t *testing.T) {
	svc, notifications := newMessageFixture(t)

	msg, err := svc.Send(context.Background(), alice, bob.ID, "  hey bob  ")
	require.NoError(t, err)
	assert.Equal(t, "hey bob", msg.Content, "content is trimmed")
	assert.Equal(t, "bob", msg.ToUsername)
	assert.False(t, msg.Read)

	require.Len(t, notifications.notifications, 1)
	n := notifications.notifications[0]
	assert.Equal(t, model.NotificationMessage, n.Type)
	assert.Equal(t, bob.ID, n.UserID)
	assert.Equal(t, alice.ID, n.FromUserID)
}

func TestConversationIsOrderedBothDirections(t *testing.T) {
	svc, _ := newMessageFixture(t)
	ctx := context.Background()

	_, err := svc.Send(ctx, alice, bob.ID, "one")
	require.NoError(t, err)
	_, err = svc.Send(ctx, bob, alice.ID, "two")
	require.NoError(t, err)
	_, err = svc.Send(ctx, alice, bob.ID, "three")
	require.NoError(t, err)
	// Noise in another conversation.
	_, err = svc.Send(ctx, alice, 3, "unrelated")
	require.NoError(t, err)

	messages, err := svc.Conversation(ctx, alice, bob.ID)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "one", messages[0].Content)
	assert.Equal(t, "two", messages[1].Content)
	assert.Equal(t, "three", messages[2].Content)
}

func TestConversationsFoldPerCounterparty(t *testing.T) {
	svc, _ := newMessageFixture(t)
	ctx := context.Background()
	carol := model.Actor{ID: 3, Username: "carol"}

	_, err := svc.Send(ctx, alice, bob.ID, "to bob 1")
	require.NoError(t, err)
	_, err = svc.Send(ctx, bob, alice.ID, "from bob")
	require.NoError(t, err)
	_, err = svc.Send(ctx, alice, carol.ID, "to carol")
	require.NoError(t, err)
	_, err = svc.Send(ctx, alice, bob.ID, "to bob 2")
	require.NoError(t, err)

	summaries, err := svc.Conversations(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 2, "one entry per counterparty")

	// Newest conversation first; each carries its latest message.
	assert.Equal(t, bob.ID, summaries[0].UserID)
	assert.Equal(t, "to bob 2", summaries[0].LastMessage)
	assert.Equal(t, carol.ID, summaries[1].UserID)
	assert.Equal(t, "to carol", summaries[1].LastMessage)

	// Alice sent the last message to Bob, so nothing is unread for her.
	assert.False(t, summaries[0].Unread)

	// Bob's view: newest message from Alice is inbound and unread.
	bobSummaries, err := svc.Conversations(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, bobSummaries, 1)
	assert.Equal(t, alice.ID, bobSummaries[0].UserID)
	assert.True(t, bobSummaries[0].Unread)
}

func TestMarkConversationRead(t *testing.T) {
	svc, _ := newMessageFixture(t)
	ctx := context.Background()

	_, err := svc.Send(ctx, alice, bob.ID, "hello")
	require.NoError(t, err)

	require.NoError(t, svc.MarkConversationRead(ctx, bob, alice.ID))

	summaries, err := svc.Conversations(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.False(t, summaries[0].Unread)
}
