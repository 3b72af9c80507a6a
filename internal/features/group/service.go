package group

import (
	"context"
	"errors"
	"fmt"
	"time"

	"langlink-api/internal/config"
	common_models "langlink-api/internal/common/models"
	"langlink-api/internal/features/audit"
	"langlink-api/internal/features/chat"
	"langlink-api/internal/features/user"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const auditModule = "groups"

// Notification events pushed to users.
const (
	EventInviteReceived  = "group.invite.received"
	EventInviteResponded = "group.invite.responded"
	EventMemberRemoved   = "group.member.removed"
)

// Notifier pushes a realtime event to one user.
type Notifier interface {
	Notify(userID primitive.ObjectID, event string, data interface{})
}

type GroupService interface {
	CreateGroup(ctx context.Context, creator primitive.ObjectID, req CreateGroupRequest) (*Group, error)
	ListGroups(ctx context.Context, userID primitive.ObjectID) ([]Group, error)
	GetGroup(ctx context.Context, id primitive.ObjectID) (*GroupView, error)
	UpdateMembers(ctx context.Context, actor, groupID primitive.ObjectID, req MemberActionRequest) (*MemberActionResult, error)
	UpdateDetails(ctx context.Context, actor, groupID primitive.ObjectID, patch DetailsPatch) (*GroupView, error)
	InviteMember(ctx context.Context, actor, groupID, target primitive.ObjectID) (*Invite, error)
	ListInvites(ctx context.Context, userID primitive.ObjectID) ([]InviteView, error)
	RespondInvite(ctx context.Context, actor, inviteID primitive.ObjectID, action string) (*Invite, error)
	ListActivity(ctx context.Context, actor, groupID primitive.ObjectID, page, limit int64) ([]common_models.AuditLog, error)
	PurgeResolvedInvites(ctx context.Context, olderThan time.Duration) (int64, error)
}

type GroupServiceImpl struct {
	groups       GroupRepository
	invites      InviteRepository
	users        user.UserService
	channels     chat.ChannelSyncAdapter
	auditService audit.AuditService
	notifier     Notifier
	config       *config.Config
	log          *zap.Logger

	now          func() time.Time
	newChannelID func() string
	casBackOff   func() backoff.BackOff
}

func NewGroupService(
	groups GroupRepository,
	invites InviteRepository,
	users user.UserService,
	channels chat.ChannelSyncAdapter,
	auditService audit.AuditService,
	notifier Notifier,
	cfg *config.Config,
	log *zap.Logger,
) GroupService {
	return &GroupServiceImpl{
		groups:       groups,
		invites:      invites,
		users:        users,
		channels:     channels,
		auditService: auditService,
		notifier:     notifier,
		config:       cfg,
		log:          log.Named("group"),
		now:          time.Now,
		newChannelID: func() string { return "group-" + uuid.NewString() },
		casBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 10 * time.Millisecond
			b.MaxInterval = 200 * time.Millisecond
			return b
		},
	}
}

func (s *GroupServiceImpl) CreateGroup(ctx context.Context, creator primitive.ObjectID, req CreateGroupRequest) (*Group, error) {
	if req.CreatedByID != "" && req.CreatedByID != creator.Hex() {
		return nil, ErrCreatorMismatch
	}
	invitees, err := parseIDs(req.MemberIDs)
	if err != nil {
		return nil, err
	}

	group, err := NewGroup(req.Name, req.Image, creator, s.newChannelID(), s.now())
	if err != nil {
		return nil, err
	}

	syncCtx, cancel := context.WithTimeout(ctx, s.config.SyncTimeout)
	channelID, err := s.channels.CreateChannel(syncCtx, group.StreamChannelID, chat.ChannelSpec{
		Name:      group.Name,
		Image:     group.Image,
		Members:   []string{creator.Hex()},
		CreatedBy: creator.Hex(),
	})
	cancel()
	if err != nil {
		return nil, fmt.Errorf("create chat channel: %w", err)
	}
	group.StreamChannelID = channelID

	if err := s.groups.Create(ctx, group); err != nil {
		s.log.Warn("chat channel left without a group",
			zap.String("channelId", channelID), zap.String("creator", creator.Hex()), zap.Error(err))
		return nil, fmt.Errorf("create group: %w", err)
	}
	s.audit(ctx, common_models.AuditActionCreate, group.ID, map[string]common_models.Change{
		"group": {New: group},
	})

	for _, target := range invitees {
		if target == creator {
			continue
		}
		if _, err := s.InviteMember(ctx, creator, group.ID, target); err != nil {
			s.log.Warn("skipping initial invite",
				zap.String("groupId", group.ID.Hex()),
				zap.String("target", target.Hex()),
				zap.Error(err))
		}
	}

	return group, nil
}

func (s *GroupServiceImpl) ListGroups(ctx context.Context, userID primitive.ObjectID) ([]Group, error) {
	return s.groups.FindByMember(ctx, userID)
}

func (s *GroupServiceImpl) GetGroup(ctx context.Context, id primitive.ObjectID) (*GroupView, error) {
	group, err := s.groups.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, group)
}

func (s *GroupServiceImpl) UpdateMembers(ctx context.Context, actor, groupID primitive.ObjectID, req MemberActionRequest) (*MemberActionResult, error) {
	if req.UserID == "" || req.Action == "" {
		return nil, ErrInvalidInput.withMessage("Missing required fields")
	}
	target, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		return nil, ErrInvalidInput.withMessage("Invalid user ID")
	}

	before, outcome, err := s.mutate(ctx, groupID, func(g *Group) (*MemberOutcome, error) {
		return ApplyMemberAction(g, actor, target, MemberAction(req.Action))
	})
	if err != nil {
		return nil, err
	}
	s.applyEffects(ctx, outcome.Effects)

	if MemberAction(req.Action) == ActionRemove && target != actor {
		s.notify(target, EventMemberRemoved, eventData{"groupId": groupID.Hex(), "name": before.Name})
	}

	if outcome.Deleted {
		s.dropInvitesOf(ctx, groupID)
		s.audit(ctx, common_models.AuditActionDelete, groupID, map[string]common_models.Change{
			"group": {Old: before, New: "DELETED"},
		})
		return &MemberActionResult{Deleted: true}, nil
	}

	s.audit(ctx, common_models.AuditActionGroup, groupID, membershipChanges(before, outcome.Group))
	view, err := s.populate(ctx, outcome.Group)
	if err != nil {
		return nil, err
	}
	return &MemberActionResult{Group: view}, nil
}

func (s *GroupServiceImpl) UpdateDetails(ctx context.Context, actor, groupID primitive.ObjectID, patch DetailsPatch) (*GroupView, error) {
	before, outcome, err := s.mutate(ctx, groupID, func(g *Group) (*MemberOutcome, error) {
		if !g.IsAdmin(actor) {
			return nil, ErrNotAdmin
		}
		return &MemberOutcome{Group: UpdateDetails(g, patch)}, nil
	})
	if err != nil {
		return nil, err
	}

	changes := map[string]common_models.Change{}
	if before.Name != outcome.Group.Name {
		changes["name"] = common_models.Change{Old: before.Name, New: outcome.Group.Name}
	}
	if before.Image != outcome.Group.Image {
		changes["image"] = common_models.Change{Old: before.Image, New: outcome.Group.Image}
	}
	if len(changes) > 0 {
		s.audit(ctx, common_models.AuditActionUpdate, groupID, changes)
	}

	return s.populate(ctx, outcome.Group)
}

func (s *GroupServiceImpl) InviteMember(ctx context.Context, actor, groupID, target primitive.ObjectID) (*Invite, error) {
	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !CanInvite(group, actor) {
		return nil, ErrNotAdmin.withMessage("Only admins can invite")
	}
	if err := ValidateInviteTarget(group, target); err != nil {
		return nil, err
	}

	exists, err := s.users.Exists(ctx, target)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrUserNotFound
	}

	existing, err := s.invites.FindByGroupAndUser(ctx, groupID, target)
	if err != nil {
		return nil, err
	}
	plan, err := CreateInvite(existing, group, actor, target, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.invites.DeleteByIDs(ctx, plan.Purge); err != nil {
		return nil, fmt.Errorf("purge stale invites: %w", err)
	}
	if err := s.invites.Create(ctx, plan.Invite); err != nil {
		return nil, err
	}

	s.audit(ctx, common_models.AuditActionInvite, groupID, map[string]common_models.Change{
		"invite": {New: target.Hex()},
	})
	s.notify(target, EventInviteReceived, eventData{
		"inviteId": plan.Invite.ID.Hex(),
		"groupId":  groupID.Hex(),
		"name":     group.Name,
	})
	return plan.Invite, nil
}

func (s *GroupServiceImpl) ListInvites(ctx context.Context, userID primitive.ObjectID) ([]InviteView, error) {
	invites, err := s.invites.FindPendingFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(invites) == 0 {
		return []InviteView{}, nil
	}

	groupIDs := make([]primitive.ObjectID, 0, len(invites))
	inviterIDs := make([]primitive.ObjectID, 0, len(invites))
	for _, inv := range invites {
		groupIDs = append(groupIDs, inv.Group)
		inviterIDs = append(inviterIDs, inv.InvitedBy)
	}

	groups, err := s.groups.FindByIDs(ctx, groupIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]Group, len(groups))
	for _, g := range groups {
		byID[g.ID] = g
	}
	inviters, err := s.users.Summaries(ctx, inviterIDs)
	if err != nil {
		return nil, err
	}

	views := make([]InviteView, 0, len(invites))
	for _, inv := range invites {
		g, ok := byID[inv.Group]
		if !ok {
			continue
		}
		inviter, ok := inviters[inv.InvitedBy]
		if !ok {
			inviter = user.Summary{ID: inv.InvitedBy}
		}
		views = append(views, InviteView{
			ID:        inv.ID,
			Group:     InviteGroupSummary{ID: g.ID, Name: g.Name, Image: g.Image},
			For:       inv.For,
			InvitedBy: inviter,
			Status:    inv.Status,
			CreatedAt: inv.CreatedAt,
		})
	}
	return views, nil
}

func (s *GroupServiceImpl) RespondInvite(ctx context.Context, actor, inviteID primitive.ObjectID, action string) (*Invite, error) {
	invite, err := s.invites.FindByID(ctx, inviteID)
	if err != nil && !errors.Is(err, ErrInviteNotFound) {
		return nil, err
	}
	resp, err := RespondInvite(invite, actor, action, s.now())
	if err != nil {
		return nil, err
	}

	if resp.Join {
		if _, err := s.groups.FindByID(ctx, invite.Group); err != nil {
			if errors.Is(err, ErrGroupNotFound) {
				s.dropInvitesOf(ctx, invite.Group)
			}
			return nil, err
		}
	}

	if err := s.invites.Resolve(ctx, invite.ID, resp.Invite.Status, resp.Invite.UpdatedAt); err != nil {
		return nil, err
	}

	if resp.Join {
		_, outcome, err := s.mutate(ctx, invite.Group, func(g *Group) (*MemberOutcome, error) {
			return JoinGroup(g, actor), nil
		})
		if err != nil {
			// The accept only counts once the member is stored.
			if errors.Is(err, ErrGroupNotFound) {
				s.dropInvitesOf(ctx, invite.Group)
			} else if rerr := s.invites.Reopen(ctx, invite.ID, s.now()); rerr != nil {
				s.log.Error("failed to reopen invite after join failure",
					zap.String("inviteId", invite.ID.Hex()), zap.Error(rerr))
			}
			return nil, fmt.Errorf("join group: %w", err)
		}
		s.applyEffects(ctx, outcome.Effects)
		s.audit(ctx, common_models.AuditActionGroup, invite.Group, map[string]common_models.Change{
			"member_added": {New: actor.Hex()},
		})
	} else {
		s.audit(ctx, common_models.AuditActionInvite, invite.Group, map[string]common_models.Change{
			"invite_declined": {Old: actor.Hex()},
		})
	}

	s.notify(invite.InvitedBy, EventInviteResponded, eventData{
		"inviteId": invite.ID.Hex(),
		"groupId":  invite.Group.Hex(),
		"status":   resp.Invite.Status,
	})
	return resp.Invite, nil
}

func (s *GroupServiceImpl) dropInvitesOf(ctx context.Context, groupID primitive.ObjectID) {
	if err := s.invites.DeleteByGroup(ctx, groupID); err != nil {
		s.log.Error("failed to delete invites of removed group", zap.String("groupId", groupID.Hex()), zap.Error(err))
	}
}

func (s *GroupServiceImpl) ListActivity(ctx context.Context, actor, groupID primitive.ObjectID, page, limit int64) ([]common_models.AuditLog, error) {
	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsMember(actor) {
		return nil, ErrNotGroupMember
	}
	return s.auditService.ListLogs(ctx, auditModule, groupID.Hex(), page, limit)
}

func (s *GroupServiceImpl) PurgeResolvedInvites(ctx context.Context, olderThan time.Duration) (int64, error) {
	return s.invites.PurgeResolvedBefore(ctx, s.now().Add(-olderThan))
}

// mutate loads the group, applies fn and writes the result with a version check. On a
// version conflict the whole cycle repeats on a fresh snapshot.
func (s *GroupServiceImpl) mutate(ctx context.Context, groupID primitive.ObjectID, fn func(*Group) (*MemberOutcome, error)) (*Group, *MemberOutcome, error) {
	var before *Group
	var outcome *MemberOutcome

	operation := func() error {
		current, err := s.groups.FindByID(ctx, groupID)
		if err != nil {
			return backoff.Permanent(err)
		}
		next, err := fn(current)
		if err != nil {
			return backoff.Permanent(err)
		}

		if next.Deleted {
			err = s.groups.Delete(ctx, groupID, current.Version)
		} else {
			err = s.groups.Update(ctx, next.Group)
		}
		if errors.Is(err, ErrVersionConflict) {
			s.log.Debug("group version conflict, retrying", zap.String("groupId", groupID.Hex()))
			return err
		}
		if err != nil {
			return backoff.Permanent(err)
		}

		before, outcome = current, next
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(s.casBackOff(), s.config.CASMaxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, nil, err
	}
	return before, outcome, nil
}

// applyEffects mirrors membership into the chat channel. Failures are logged only; the
// stored group stays authoritative.
func (s *GroupServiceImpl) applyEffects(ctx context.Context, effects []ChannelEffect) {
	for _, effect := range effects {
		ids := hexIDs(effect.UserIDs)

		syncCtx, cancel := context.WithTimeout(ctx, s.config.SyncTimeout)
		var err error
		switch effect.Kind {
		case EffectAddMembers:
			err = s.channels.AddMembers(syncCtx, effect.ChannelID, ids)
		case EffectRemoveMembers:
			err = s.channels.RemoveMembers(syncCtx, effect.ChannelID, ids)
		}
		cancel()

		if err != nil {
			s.log.Warn("chat channel sync failed",
				zap.String("channel", effect.ChannelID),
				zap.Strings("users", ids),
				zap.Error(err))
		}
	}
}

func (s *GroupServiceImpl) populate(ctx context.Context, group *Group) (*GroupView, error) {
	ids := make([]primitive.ObjectID, 0, len(group.Members)+len(group.Admins))
	ids = append(ids, group.Members...)
	ids = append(ids, group.Admins...)

	summaries, err := s.users.Summaries(ctx, ids)
	if err != nil {
		return nil, err
	}

	return &GroupView{
		ID:              group.ID,
		Name:            group.Name,
		Image:           group.Image,
		Members:         pick(summaries, group.Members),
		Admins:          pick(summaries, group.Admins),
		StreamChannelID: group.StreamChannelID,
		CreatedAt:       group.CreatedAt,
		UpdatedAt:       group.UpdatedAt,
	}, nil
}

func (s *GroupServiceImpl) audit(ctx context.Context, action common_models.AuditAction, groupID primitive.ObjectID, changes map[string]common_models.Change) {
	if err := s.auditService.LogChange(ctx, action, auditModule, groupID.Hex(), changes); err != nil {
		s.log.Warn("failed to write audit log", zap.String("groupId", groupID.Hex()), zap.Error(err))
	}
}

func (s *GroupServiceImpl) notify(userID primitive.ObjectID, event string, data interface{}) {
	if s.notifier != nil {
		s.notifier.Notify(userID, event, data)
	}
}

type eventData = map[string]interface{}

func membershipChanges(before, after *Group) map[string]common_models.Change {
	changes := map[string]common_models.Change{}
	if !sameIDs(before.Members, after.Members) {
		changes["members"] = common_models.Change{Old: hexIDs(before.Members), New: hexIDs(after.Members)}
	}
	if !sameIDs(before.Admins, after.Admins) {
		changes["admins"] = common_models.Change{Old: hexIDs(before.Admins), New: hexIDs(after.Admins)}
	}
	return changes
}

func pick(summaries map[primitive.ObjectID]user.Summary, ids []primitive.ObjectID) []user.Summary {
	out := make([]user.Summary, 0, len(ids))
	for _, id := range ids {
		if summary, ok := summaries[id]; ok {
			out = append(out, summary)
		}
	}
	return out
}

func parseIDs(raw []string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(raw))
	for _, r := range raw {
		id, err := primitive.ObjectIDFromHex(r)
		if err != nil {
			return nil, ErrInvalidInput.withMessage("Invalid member ID: " + r)
		}
		if !containsID(ids, id) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func hexIDs(ids []primitive.ObjectID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.Hex()
	}
	return out
}

func sameIDs(a, b []primitive.ObjectID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
