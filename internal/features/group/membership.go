package group

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Membership rules. Every function here is pure: inputs are never mutated and a call
// either returns a complete result or an *Error.

type MemberAction string

const (
	ActionRemove      MemberAction = "remove"
	ActionToggleAdmin MemberAction = "toggleAdmin"
	ActionAdd         MemberAction = "add"
)

type EffectKind int

const (
	EffectAddMembers EffectKind = iota + 1
	EffectRemoveMembers
)

// ChannelEffect is a chat channel change to apply once the new state is persisted.
type ChannelEffect struct {
	Kind      EffectKind
	ChannelID string
	UserIDs   []primitive.ObjectID
}

// MemberOutcome is the next group state, or Deleted when no members remain.
type MemberOutcome struct {
	Group   *Group
	Deleted bool
	Effects []ChannelEffect
}

// NewGroup builds a group whose creator is its only member and admin.
func NewGroup(name, image string, creator primitive.ObjectID, channelID string, now time.Time) (*Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidInput.withMessage("Group name is required")
	}
	return &Group{
		ID:              primitive.NewObjectID(),
		Name:            name,
		Image:           strings.TrimSpace(image),
		Members:         []primitive.ObjectID{creator},
		Admins:          []primitive.ObjectID{creator},
		StreamChannelID: channelID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// ApplyMemberAction removes a member or toggles their admin flag on behalf of actor.
func ApplyMemberAction(g *Group, actor, target primitive.ObjectID, action MemberAction) (*MemberOutcome, error) {
	next := g.clone()
	var effects []ChannelEffect

	switch action {
	case ActionRemove:
		// members may always leave on their own
		if actor != target && !g.IsAdmin(actor) {
			return nil, ErrNotAdmin
		}
		if !g.IsMember(target) {
			return nil, ErrNotMember
		}
		next.Members = withoutID(next.Members, target)
		next.Admins = withoutID(next.Admins, target)
		effects = append(effects, ChannelEffect{
			Kind:      EffectRemoveMembers,
			ChannelID: g.StreamChannelID,
			UserIDs:   []primitive.ObjectID{target},
		})
	case ActionToggleAdmin:
		if !g.IsAdmin(actor) {
			return nil, ErrNotAdmin
		}
		if next.IsAdmin(target) {
			next.Admins = withoutID(next.Admins, target)
		} else {
			if !next.IsMember(target) {
				return nil, ErrNotMember.withMessage("User must be a member to become admin")
			}
			next.Admins = append(next.Admins, target)
		}
	case ActionAdd:
		return nil, ErrDirectAdd
	default:
		return nil, ErrUnsupportedAction
	}

	repairAdmins(next)
	if len(next.Members) == 0 {
		return &MemberOutcome{Deleted: true, Effects: effects}, nil
	}
	return &MemberOutcome{Group: next, Effects: effects}, nil
}

// repairAdmins drops admins that are not members and makes a sole member its admin.
func repairAdmins(g *Group) {
	admins := g.Admins[:0:0]
	for _, id := range g.Admins {
		if containsID(g.Members, id) && !containsID(admins, id) {
			admins = append(admins, id)
		}
	}
	g.Admins = admins

	if len(g.Members) == 1 {
		g.Admins = []primitive.ObjectID{g.Members[0]}
	}
}

func CanInvite(g *Group, actor primitive.ObjectID) bool {
	return g.IsAdmin(actor)
}

func ValidateInviteTarget(g *Group, target primitive.ObjectID) error {
	if g.IsMember(target) {
		return ErrAlreadyMember
	}
	return nil
}

// InvitePlan is a new pending invite plus the stale invites it supersedes.
type InvitePlan struct {
	Invite *Invite
	Purge  []primitive.ObjectID
}

// CreateInvite plans an invite for target. existing may hold invites of any pair; only
// those for (g, target) are considered.
func CreateInvite(existing []Invite, g *Group, inviter, target primitive.ObjectID, now time.Time) (*InvitePlan, error) {
	if !CanInvite(g, inviter) {
		return nil, ErrNotAdmin.withMessage("Only admins can invite")
	}
	if err := ValidateInviteTarget(g, target); err != nil {
		return nil, err
	}

	plan := &InvitePlan{}
	for _, inv := range existing {
		if inv.Group != g.ID || inv.For != target {
			continue
		}
		if inv.Status == InviteStatusPending {
			return nil, ErrDuplicatePending
		}
		plan.Purge = append(plan.Purge, inv.ID)
	}

	plan.Invite = &Invite{
		ID:        primitive.NewObjectID(),
		Group:     g.ID,
		For:       target,
		InvitedBy: inviter,
		Status:    InviteStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return plan, nil
}

// InviteResponse is the resolved invite; Join asks the caller to add the invitee.
type InviteResponse struct {
	Invite *Invite
	Join   bool
}

func RespondInvite(inv *Invite, actor primitive.ObjectID, action string, now time.Time) (*InviteResponse, error) {
	if inv == nil {
		return nil, ErrInviteNotFound
	}
	if inv.For != actor {
		return nil, ErrNotInvitee
	}

	status := InviteStatus(action)
	if status != InviteStatusAccepted && status != InviteStatusDeclined {
		return nil, ErrUnsupportedAction.withMessage("Invalid action")
	}
	if inv.Status != InviteStatusPending {
		return nil, ErrAlreadyHandled
	}

	resolved := *inv
	resolved.Status = status
	resolved.UpdatedAt = now
	return &InviteResponse{Invite: &resolved, Join: status == InviteStatusAccepted}, nil
}

// JoinGroup adds user as a member. The channel add is requested even when the user is
// already a member so a missed earlier sync gets repaired.
func JoinGroup(g *Group, user primitive.ObjectID) *MemberOutcome {
	next := g.clone()
	if !next.IsMember(user) {
		next.Members = append(next.Members, user)
	}
	repairAdmins(next)
	return &MemberOutcome{
		Group: next,
		Effects: []ChannelEffect{{
			Kind:      EffectAddMembers,
			ChannelID: g.StreamChannelID,
			UserIDs:   []primitive.ObjectID{user},
		}},
	}
}

func UpdateDetails(g *Group, patch DetailsPatch) *Group {
	next := g.clone()
	if patch.Name != nil {
		if name := strings.TrimSpace(*patch.Name); name != "" {
			next.Name = name
		}
	}
	if patch.Image != nil {
		if image := strings.TrimSpace(*patch.Image); image != "" {
			next.Image = image
		}
	}
	return next
}
