package notification

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"CareerConnect/internal/access"
	"CareerConnect/internal/apperr"
	"CareerConnect/internal/auth"
	"CareerConnect/internal/config"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type memStore struct {
	mu    sync.Mutex
	items []*Notification
}

func (m *memStore) CreateNotification(_ context.Context, n *Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *n
	m.items = append(m.items, &cp)
	return nil
}

func (m *memStore) ListByUser(_ context.Context, userID primitive.ObjectID, limit int64) ([]*Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*Notification{}
	for _, n := range m.items {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) CountUnread(_ context.Context, userID primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, n := range m.items {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (m *memStore) MarkRead(_ context.Context, id, userID primitive.ObjectID) (*Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.items {
		if n.ID == id && n.UserID == userID {
			n.Read = true
			cp := *n
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) MarkAllRead(_ context.Context, userID primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var changed int64
	for _, n := range m.items {
		if n.UserID == userID && !n.Read {
			n.Read = true
			changed++
		}
	}
	return changed, nil
}

func (m *memStore) PendingEmail(_ context.Context, limit int64, maxAttempts int) ([]*Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Notification
	for _, n := range m.items {
		if !n.Emailed && n.EmailAttempts < maxAttempts && int64(len(out)) < limit {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memStore) MarkEmailed(_ context.Context, id primitive.ObjectID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.items {
		if n.ID == id {
			n.Emailed = true
			n.EmailedAt = &at
		}
	}
	return nil
}

func (m *memStore) RecordEmailFailure(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.items {
		if n.ID == id {
			n.EmailAttempts++
		}
	}
	return nil
}

func newService(t *testing.T) (*NotificationService, *memStore) {
	checker, err := access.NewChecker(zap.NewNop())
	require.NoError(t, err)
	store := &memStore{}
	return NewNotificationService(store, checker, zap.NewNop()), store
}

func student() access.Identity {
	return access.Identity{ID: primitive.NewObjectID(), Role: access.RoleStudent}
}

func TestEmitStartsUnread(t *testing.T) {
	svc, store := newService(t)
	user := student()

	require.NoError(t, svc.Emit(context.Background(), user.ID, TypeApplicationSubmitted, "submitted", map[string]string{"jobId": "j"}))

	require.Len(t, store.items, 1)
	require.False(t, store.items[0].Read)
	require.False(t, store.items[0].CreatedAt.IsZero())
	require.Equal(t, "j", store.items[0].Data["jobId"])
}

func TestMarkAllReadClearsUnreadCount(t *testing.T) {
	svc, _ := newService(t)
	user, other := student(), student()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Emit(ctx, user.ID, TypeApplicationStatus, "m", nil))
	}
	require.NoError(t, svc.Emit(ctx, other.ID, TypeApplicationStatus, "m", nil))

	count, err := svc.UnreadCount(ctx, user)
	require.NoError(t, err)
	require.EqualValues(t, 3, count)

	require.NoError(t, svc.MarkAllRead(ctx, user))

	count, err = svc.UnreadCount(ctx, user)
	require.NoError(t, err)
	require.Zero(t, count)

	list, err := svc.List(ctx, user)
	require.NoError(t, err)
	for _, n := range list {
		require.True(t, n.Read)
	}

	count, err = svc.UnreadCount(ctx, other)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func TestMarkReadIsOwnerScopedAndIdempotent(t *testing.T) {
	svc, store := newService(t)
	owner, intruder := student(), student()
	ctx := context.Background()
	require.NoError(t, svc.Emit(ctx, owner.ID, TypeApplicationStatus, "m", nil))
	id := store.items[0].ID

	_, err := svc.MarkRead(ctx, intruder, id)
	require.True(t, apperr.Is(err, apperr.KindNotFound))

	n, err := svc.MarkRead(ctx, owner, id)
	require.NoError(t, err)
	require.True(t, n.Read)

	n, err = svc.MarkRead(ctx, owner, id)
	require.NoError(t, err)
	require.True(t, n.Read)
}

func TestListIsCappedAndNewestFirst(t *testing.T) {
	svc, _ := newService(t)
	user := student()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ctx := context.Background()

	for i := 0; i < ListLimit+5; i++ {
		at := base.Add(time.Duration(i) * time.Minute)
		svc.now = func() time.Time { return at }
		require.NoError(t, svc.Emit(ctx, user.ID, TypeApplicationStatus, fmt.Sprint(i), nil))
	}

	list, err := svc.List(ctx, user)
	require.NoError(t, err)
	require.Len(t, list, ListLimit)
	require.Equal(t, fmt.Sprint(ListLimit+4), list[0].Message)
}

func TestListRequiresIdentity(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.List(context.Background(), access.Identity{})
	require.True(t, apperr.Is(err, apperr.KindUnauthorized))
}

type mailerMock struct {
	mock.Mock
}

func (m *mailerMock) SendEmail(ctx context.Context, to, subject, body string) error {
	return m.Called(ctx, to, subject, body).Error(0)
}

type usersStub map[primitive.ObjectID]*auth.User

func (u usersStub) FindByID(_ context.Context, id primitive.ObjectID) (*auth.User, error) {
	return u[id], nil
}

func TestDispatcherSendsAndRetries(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	alice := &auth.User{ID: primitive.NewObjectID(), Name: "Alice", Email: "alice@example.com"}
	bob := &auth.User{ID: primitive.NewObjectID(), Name: "Bob", Email: "bob@example.com"}

	require.NoError(t, svc.Emit(ctx, alice.ID, TypeApplicationStatus, "accepted", nil))
	require.NoError(t, svc.Emit(ctx, bob.ID, TypeApplicationReceived, "new", nil))

	mailer := &mailerMock{}
	mailer.On("SendEmail", mock.Anything, "alice@example.com", "Application status updated", mock.Anything).Return(nil)
	mailer.On("SendEmail", mock.Anything, "bob@example.com", "New application received", mock.Anything).Return(errors.New("smtp down"))

	d := NewDispatcher(store, mailer, usersStub{alice.ID: alice, bob.ID: bob},
		&config.NotificationConfig{DispatchInterval: time.Minute}, zap.NewNop())

	for round := 0; round < maxEmailAttempts+1; round++ {
		d.DispatchDue(ctx)
	}

	require.True(t, store.items[0].Emailed)
	require.False(t, store.items[1].Emailed)
	require.Equal(t, maxEmailAttempts, store.items[1].EmailAttempts)
	mailer.AssertNumberOfCalls(t, "SendEmail", 1+maxEmailAttempts)
}

func TestDispatcherSkipsUnknownRecipient(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	require.NoError(t, svc.Emit(ctx, primitive.NewObjectID(), TypeApplicationStatus, "m", nil))

	mailer := &mailerMock{}
	d := NewDispatcher(store, mailer, usersStub{}, &config.NotificationConfig{DispatchInterval: time.Minute}, zap.NewNop())

	require.Zero(t, d.DispatchDue(ctx))
	require.Equal(t, 1, store.items[0].EmailAttempts)
	mailer.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
