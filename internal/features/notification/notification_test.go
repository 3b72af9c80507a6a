package notification

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"langlink-api/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeSocket struct {
	mu       sync.Mutex
	messages []Message
	closed   bool
	fail     bool
	block    chan struct{}
}

func (s *fakeSocket) WriteJSON(v interface{}) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("broken pipe")
	}
	s.messages = append(s.messages, v.(Message))
	return nil
}

func (s *fakeSocket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSocket) received() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.messages...)
}

type memoryRepo struct {
	mu    sync.Mutex
	items []Notification
	err   error
}

func (r *memoryRepo) Create(_ context.Context, n *Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	n.ID = primitive.NewObjectID()
	r.items = append(r.items, *n)
	return nil
}

func (r *memoryRepo) GetByUserID(_ context.Context, userID primitive.ObjectID, page, limit int64) ([]Notification, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var mine []Notification
	for i := len(r.items) - 1; i >= 0; i-- {
		if r.items[i].UserID == userID {
			mine = append(mine, r.items[i])
		}
	}
	total := int64(len(mine))
	start := (page - 1) * limit
	if start >= total {
		return []Notification{}, total, nil
	}
	end := min(start+limit, total)
	return mine[start:end], total, nil
}

func (r *memoryRepo) GetUnreadCount(_ context.Context, userID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, it := range r.items {
		if it.UserID == userID && !it.IsRead {
			n++
		}
	}
	return n, nil
}

func (r *memoryRepo) MarkAsRead(_ context.Context, id, userID primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == id && r.items[i].UserID == userID {
			r.items[i].IsRead = true
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepo) MarkAllAsRead(_ context.Context, userID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for i := range r.items {
		if r.items[i].UserID == userID && !r.items[i].IsRead {
			r.items[i].IsRead = true
			n++
		}
	}
	return n, nil
}

func (r *memoryRepo) EnsureIndexes(context.Context) error { return nil }

func TestHubFansOutToEverySocketOfUser(t *testing.T) {
	hub := NewHub(zap.NewNop())
	alice, bob := primitive.NewObjectID(), primitive.NewObjectID()

	a1, a2, b1 := &fakeSocket{}, &fakeSocket{}, &fakeSocket{}
	hub.Register(alice, a1)
	hub.Register(alice, a2)
	hub.Register(bob, b1)
	require.Equal(t, 2, hub.Connected(alice))

	assert.Equal(t, 2, hub.Push(alice, Message{Event: "group.invite.received"}))

	require.Eventually(t, func() bool {
		return len(a1.received()) == 1 && len(a2.received()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Empty(t, b1.received())

	hub.Close()
	assert.Equal(t, 0, hub.Connected(alice))
	assert.True(t, a1.closed)
}

func TestHubUnregister(t *testing.T) {
	hub := NewHub(zap.NewNop())
	user := primitive.NewObjectID()
	socket := &fakeSocket{}

	client := hub.Register(user, socket)
	hub.Unregister(user, client)

	assert.Equal(t, 0, hub.Connected(user))
	assert.Equal(t, 0, hub.Push(user, Message{Event: "x"}))

	// a second unregister after Close must not panic or block
	hub.Close()
	hub.Unregister(user, client)
}

func TestHubSurvivesBrokenSocket(t *testing.T) {
	hub := NewHub(zap.NewNop())
	user := primitive.NewObjectID()
	socket := &fakeSocket{fail: true}

	client := hub.Register(user, socket)
	hub.Push(user, Message{Event: "first"})

	require.Eventually(t, func() bool {
		socket.mu.Lock()
		defer socket.mu.Unlock()
		return socket.closed
	}, time.Second, 5*time.Millisecond)

	// the dead writer keeps draining so pushes never block
	for i := 0; i < sendBuffer*3; i++ {
		hub.Push(user, Message{Event: "more"})
	}
	hub.Unregister(user, client)
}

func TestHubDropsWhenBufferFull(t *testing.T) {
	hub := NewHub(zap.NewNop())
	user := primitive.NewObjectID()
	socket := &fakeSocket{block: make(chan struct{})}

	client := hub.Register(user, socket)

	delivered := 0
	for i := 0; i < sendBuffer+5; i++ {
		delivered += hub.Push(user, Message{Event: "spam"})
	}
	// one message may already be held by the blocked writer
	assert.LessOrEqual(t, delivered, sendBuffer+1)
	assert.GreaterOrEqual(t, delivered, sendBuffer)

	close(socket.block)
	hub.Unregister(user, client)
	assert.Len(t, socket.received(), delivered)
}

func TestNotifyPersistsAndPushes(t *testing.T) {
	repo := &memoryRepo{}
	hub := NewHub(zap.NewNop())
	svc := NewNotificationService(repo, hub, zap.NewNop())

	user := primitive.NewObjectID()
	socket := &fakeSocket{}
	hub.Register(user, socket)
	defer hub.Close()

	svc.Notify(user, "group.invite.received", map[string]interface{}{"groupId": "g1"})

	require.Len(t, repo.items, 1)
	assert.Equal(t, "You have been invited to a group", repo.items[0].Title)

	require.Eventually(t, func() bool { return len(socket.received()) == 1 }, time.Second, 5*time.Millisecond)
	msg := socket.received()[0]
	assert.Equal(t, repo.items[0].ID.Hex(), msg.ID)
	assert.Equal(t, "group.invite.received", msg.Event)
}

func TestNotifyStillPushesWhenPersistFails(t *testing.T) {
	repo := &memoryRepo{err: errors.New("mongo down")}
	hub := NewHub(zap.NewNop())
	svc := NewNotificationService(repo, hub, zap.NewNop())

	user := primitive.NewObjectID()
	socket := &fakeSocket{}
	hub.Register(user, socket)
	defer hub.Close()

	svc.Notify(user, "custom.event", nil)

	require.Eventually(t, func() bool { return len(socket.received()) == 1 }, time.Second, 5*time.Millisecond)
	msg := socket.received()[0]
	assert.Empty(t, msg.ID)
	assert.Equal(t, "custom.event", msg.Title)
}

func TestNotificationRoutes(t *testing.T) {
	repo := &memoryRepo{}
	hub := NewHub(zap.NewNop())
	svc := NewNotificationService(repo, hub, zap.NewNop())
	cfg := &config.Config{SkipAuth: true}

	app := fiber.New()
	NewNotificationApi(NewNotificationController(svc, hub, zap.NewNop()), cfg).Setup(app)

	dev, _ := primitive.ObjectIDFromHex("000000000000000000000001")
	svc.Notify(dev, "group.member.removed", nil)
	svc.Notify(dev, "group.invite.responded", nil)
	svc.Notify(primitive.NewObjectID(), "group.invite.received", nil)

	do := func(method, path string) (int, map[string]interface{}) {
		resp, err := app.Test(httptest.NewRequest(method, path, nil))
		require.NoError(t, err)
		defer resp.Body.Close()
		body := map[string]interface{}{}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return resp.StatusCode, body
	}

	status, body := do(http.MethodGet, "/api/notifications?limit=1")
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 2, body["total"])
	require.Len(t, body["data"], 1)
	assert.Equal(t, "group.invite.responded", body["data"].([]interface{})[0].(map[string]interface{})["event"])

	status, body = do(http.MethodGet, "/api/notifications/unread-count")
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 2, body["count"])

	status, _ = do(http.MethodPut, "/api/notifications/"+repo.items[0].ID.Hex()+"/read")
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = do(http.MethodPut, "/api/notifications/"+repo.items[2].ID.Hex()+"/read")
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = do(http.MethodPut, "/api/notifications/nope/read")
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = do(http.MethodPost, "/api/notifications/mark-all-read")
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 1, body["updated"])

	status, _ = do(http.MethodGet, "/api/ws")
	assert.Equal(t, fiber.StatusUpgradeRequired, status)
}
