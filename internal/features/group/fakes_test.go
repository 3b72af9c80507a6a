package group

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	common_models "langlink-api/internal/common/models"
	"langlink-api/internal/config"
	"langlink-api/internal/features/chat"
	"langlink-api/internal/features/user"

	"github.com/cenkalti/backoff/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type memoryGroupRepo struct {
	mu     sync.Mutex
	groups map[primitive.ObjectID]*Group
	// interfere runs once before the next write, standing in for a concurrent writer.
	interfere func(stored *Group)
	writes    int
	createErr error
}

func newMemoryGroupRepo() *memoryGroupRepo {
	return &memoryGroupRepo{groups: map[primitive.ObjectID]*Group{}}
}

func (r *memoryGroupRepo) put(g *Group) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups[g.ID] = g.clone()
}

func (r *memoryGroupRepo) Create(_ context.Context, g *Group) error {
	if r.createErr != nil {
		return r.createErr
	}
	if g.ID.IsZero() {
		g.ID = primitive.NewObjectID()
	}
	g.Version = 1
	r.put(g)
	return nil
}

func (r *memoryGroupRepo) FindByID(_ context.Context, id primitive.ObjectID) (*Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.groups[id]
	if !ok {
		return nil, ErrGroupNotFound
	}
	return g.clone(), nil
}

func (r *memoryGroupRepo) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []Group{}
	for _, id := range ids {
		if g, ok := r.groups[id]; ok {
			out = append(out, *g.clone())
		}
	}
	return out, nil
}

func (r *memoryGroupRepo) FindByMember(_ context.Context, userID primitive.ObjectID) ([]Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []Group{}
	for _, g := range r.groups {
		if g.IsMember(userID) {
			out = append(out, *g.clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memoryGroupRepo) beforeWrite(id primitive.ObjectID) {
	r.writes++
	fn := r.interfere
	r.interfere = nil
	if fn != nil {
		if stored, ok := r.groups[id]; ok {
			fn(stored)
			stored.Version++
		}
	}
}

func (r *memoryGroupRepo) Update(_ context.Context, g *Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.beforeWrite(g.ID)

	stored, ok := r.groups[g.ID]
	if !ok || stored.Version != g.Version {
		return ErrVersionConflict
	}
	g.Version++
	r.groups[g.ID] = g.clone()
	return nil
}

func (r *memoryGroupRepo) Delete(_ context.Context, id primitive.ObjectID, version int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.beforeWrite(id)

	stored, ok := r.groups[id]
	if !ok || stored.Version != version {
		return ErrVersionConflict
	}
	delete(r.groups, id)
	return nil
}

func (r *memoryGroupRepo) EnsureIndexes(context.Context) error { return nil }

type memoryInviteRepo struct {
	mu        sync.Mutex
	invites   []Invite
	deleteErr error
}

func (r *memoryInviteRepo) Create(_ context.Context, inv *Invite) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.invites {
		if existing.Group == inv.Group && existing.For == inv.For && existing.Status == InviteStatusPending {
			return ErrDuplicatePending
		}
	}
	if inv.ID.IsZero() {
		inv.ID = primitive.NewObjectID()
	}
	r.invites = append(r.invites, *inv)
	return nil
}

func (r *memoryInviteRepo) FindByID(_ context.Context, id primitive.ObjectID) (*Invite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invites {
		if inv.ID == id {
			cp := inv
			return &cp, nil
		}
	}
	return nil, ErrInviteNotFound
}

func (r *memoryInviteRepo) filter(keep func(Invite) bool) []Invite {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []Invite{}
	for _, inv := range r.invites {
		if keep(inv) {
			out = append(out, inv)
		}
	}
	return out
}

func (r *memoryInviteRepo) FindByGroupAndUser(_ context.Context, groupID, userID primitive.ObjectID) ([]Invite, error) {
	return r.filter(func(inv Invite) bool { return inv.Group == groupID && inv.For == userID }), nil
}

func (r *memoryInviteRepo) FindPendingFor(_ context.Context, userID primitive.ObjectID) ([]Invite, error) {
	return r.filter(func(inv Invite) bool { return inv.For == userID && inv.Status == InviteStatusPending }), nil
}

func (r *memoryInviteRepo) Resolve(_ context.Context, id primitive.ObjectID, status InviteStatus, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.invites {
		if r.invites[i].ID == id && r.invites[i].Status == InviteStatusPending {
			r.invites[i].Status = status
			r.invites[i].UpdatedAt = at
			return nil
		}
	}
	return ErrAlreadyHandled
}

func (r *memoryInviteRepo) Reopen(_ context.Context, id primitive.ObjectID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.invites {
		if r.invites[i].ID == id && r.invites[i].Status == InviteStatusAccepted {
			r.invites[i].Status = InviteStatusPending
			r.invites[i].UpdatedAt = at
			return nil
		}
	}
	return ErrInviteNotFound
}

func (r *memoryInviteRepo) remove(drop func(Invite) bool) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.invites[:0]
	var removed int64
	for _, inv := range r.invites {
		if drop(inv) {
			removed++
			continue
		}
		kept = append(kept, inv)
	}
	r.invites = kept
	return removed
}

func (r *memoryInviteRepo) DeleteByIDs(_ context.Context, ids []primitive.ObjectID) error {
	r.remove(func(inv Invite) bool { return containsID(ids, inv.ID) })
	return nil
}

func (r *memoryInviteRepo) DeleteByGroup(_ context.Context, groupID primitive.ObjectID) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.remove(func(inv Invite) bool { return inv.Group == groupID })
	return nil
}

func (r *memoryInviteRepo) PurgeResolvedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	return r.remove(func(inv Invite) bool {
		return inv.Status != InviteStatusPending && inv.UpdatedAt.Before(cutoff)
	}), nil
}

func (r *memoryInviteRepo) EnsureIndexes(context.Context) error { return nil }

type fakeUsers struct {
	users map[primitive.ObjectID]user.User
}

func newFakeUsers(ids ...primitive.ObjectID) *fakeUsers {
	f := &fakeUsers{users: map[primitive.ObjectID]user.User{}}
	for i, id := range ids {
		f.users[id] = user.User{ID: id, FullName: "User " + string(rune('A'+i))}
	}
	return f
}

func (f *fakeUsers) GetUserByID(_ context.Context, id primitive.ObjectID) (*user.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return &u, nil
}

func (f *fakeUsers) Exists(_ context.Context, id primitive.ObjectID) (bool, error) {
	_, ok := f.users[id]
	return ok, nil
}

func (f *fakeUsers) Summaries(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]user.Summary, error) {
	out := map[primitive.ObjectID]user.Summary{}
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out[id] = u.Summary()
		}
	}
	return out, nil
}

func (f *fakeUsers) DisplayNames(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	summaries, _ := f.Summaries(ctx, ids)
	out := map[primitive.ObjectID]string{}
	for id, s := range summaries {
		out[id] = s.FullName
	}
	return out, nil
}

type channelCall struct {
	Op        string
	ChannelID string
	UserIDs   []string
}

type fakeChannels struct {
	mu        sync.Mutex
	calls     []channelCall
	createErr error
	syncErr   error
}

func (f *fakeChannels) record(call channelCall) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeChannels) CreateChannel(_ context.Context, channelID string, spec chat.ChannelSpec) (string, error) {
	f.record(channelCall{Op: "create", ChannelID: channelID, UserIDs: spec.Members})
	if f.createErr != nil {
		return "", f.createErr
	}
	return channelID, nil
}

func (f *fakeChannels) AddMembers(_ context.Context, channelID string, userIDs []string) error {
	f.record(channelCall{Op: "add", ChannelID: channelID, UserIDs: userIDs})
	return f.syncErr
}

func (f *fakeChannels) RemoveMembers(_ context.Context, channelID string, userIDs []string) error {
	f.record(channelCall{Op: "remove", ChannelID: channelID, UserIDs: userIDs})
	return f.syncErr
}

type fakeAudit struct {
	mu   sync.Mutex
	logs []common_models.AuditLog
}

func (f *fakeAudit) LogChange(_ context.Context, action common_models.AuditAction, module, recordID string, changes map[string]common_models.Change) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, common_models.AuditLog{Action: action, Module: module, RecordID: recordID, Changes: changes})
	return nil
}

func (f *fakeAudit) ListLogs(_ context.Context, module, recordID string, _, _ int64) ([]common_models.AuditLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []common_models.AuditLog{}
	for _, l := range f.logs {
		if l.Module == module && l.RecordID == recordID {
			out = append(out, l)
		}
	}
	return out, nil
}

type notification struct {
	UserID primitive.ObjectID
	Event  string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (f *fakeNotifier) Notify(userID primitive.ObjectID, event string, _ interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, notification{UserID: userID, Event: event})
}

type serviceFixture struct {
	service  *GroupServiceImpl
	groups   *memoryGroupRepo
	invites  *memoryInviteRepo
	users    *fakeUsers
	channels *fakeChannels
	audit    *fakeAudit
	notifier *fakeNotifier
}

var errProviderDown = &chat.ProviderError{Op: "test", Err: errors.New("provider down")}

func newServiceFixture(users ...primitive.ObjectID) *serviceFixture {
	f := &serviceFixture{
		groups:   newMemoryGroupRepo(),
		invites:  &memoryInviteRepo{},
		users:    newFakeUsers(users...),
		channels: &fakeChannels{},
		audit:    &fakeAudit{},
		notifier: &fakeNotifier{},
	}
	cfg := &config.Config{SyncTimeout: time.Second, CASMaxRetries: 3}
	svc := NewGroupService(f.groups, f.invites, f.users, f.channels, f.audit, f.notifier, cfg, zap.NewNop()).(*GroupServiceImpl)
	svc.casBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	svc.newChannelID = func() string { return "group-fixed" }
	f.service = svc
	return f
}
