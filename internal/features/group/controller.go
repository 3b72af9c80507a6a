package group

import (
	"langlink-api/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type GroupController struct {
	Service GroupService
	Log     *zap.Logger
}

func NewGroupController(service GroupService, log *zap.Logger) *GroupController {
	return &GroupController{Service: service, Log: log}
}

// CreateGroup godoc
// @Summary      Create a group
// @Description  Creates the group and its chat channel; memberIds receive pending invites
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        group  body      CreateGroupRequest  true  "Group"
// @Success      201    {object}  Group
// @Failure      400    {object}  map[string]string
// @Failure      403    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Router       /api/groups [post]
func (ctrl *GroupController) CreateGroup(c *fiber.Ctx) error {
	actor, err := middleware.CurrentUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req CreateGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}

	group, err := ctrl.Service.CreateGroup(c.UserContext(), actor, req)
	if err != nil {
		return ctrl.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(group)
}

// ListGroups godoc
// @Summary      Groups of the current user
// @Tags         groups
// @Produce      json
// @Success      200  {array}   Group
// @Router       /api/groups [get]
func (ctrl *GroupController) ListGroups(c *fiber.Ctx) error {
	actor, err := middleware.CurrentUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	groups, err := ctrl.Service.ListGroups(c.UserContext(), actor)
	if err != nil {
		return ctrl.fail(c, err)
	}
	return c.JSON(groups)
}

// GetGroup godoc
// @Summary      Get a group
// @Tags         groups
// @Produce      json
// @Param        id   path      string  true  "Group ID"
// @Success      200  {object}  GroupView
// @Failure      404  {object}  map[string]string
// @Router       /api/groups/{id} [get]
func (ctrl *GroupController) GetGroup(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid group ID"})
	}

	group, err := ctrl.Service.GetGroup(c.UserContext(), id)
	if err != nil {
		return ctrl.fail(c, err)
	}
	return c.JSON(group)
}

// UpdateMembers godoc
// @Summary      Remove a member or toggle admin
// @Description  action is remove or toggleAdmin; members are added through invites
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        groupId  path      string               true  "Group ID"
// @Param        body     body      MemberActionRequest  true  "Action"
// @Success      200      {object}  GroupView
// @Failure      400      {object}  map[string]string
// @Failure      403      {object}  map[string]string
// @Failure      404      {object}  map[string]string
// @Router       /api/groups/{groupId}/members [patch]
func (ctrl *GroupController) UpdateMembers(c *fiber.Ctx) error {
	actor, err := middleware.CurrentUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	groupID, err := primitive.ObjectIDFromHex(c.Params("groupId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid group ID"})
	}

	var req MemberActionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}

	result, err := ctrl.Service.UpdateMembers(c.UserContext(), actor, groupID, req)
	if err != nil {
		return ctrl.fail(c, err)
	}
	if result.Deleted {
		return c.JSON(fiber.Map{"message": "Group deleted as no members remain."})
	}
	return c.JSON(result.Group)
}

// UpdateDetails godoc
// @Summary      Change group name or image
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        groupId  path      string        true  "Group ID"
// @Param        body     body      DetailsPatch  true  "Details"
// @Success      200      {object}  GroupView
// @Failure      403      {object}  map[string]string
// @Failure      404      {object}  map[string]string
// @Router       /api/groups/updateGroup/{groupId} [patch]
func (ctrl *GroupController) UpdateDetails(c *fiber.Ctx) error {
	actor, err := middleware.CurrentUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	groupID, err := primitive.ObjectIDFromHex(c.Params("groupId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid group ID"})
	}

	var patch DetailsPatch
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}

	group, err := ctrl.Service.UpdateDetails(c.UserContext(), actor, groupID, patch)
	if err != nil {
		return ctrl.fail(c, err)
	}
	return c.JSON(group)
}

// InviteMember godoc
// @Summary      Invite a user
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        groupId  path      string         true  "Group ID"
// @Param        body     body      InviteRequest  true  "Invitee"
// @Success      201      {object}  Invite
// @Failure      400      {object}  map[string]string
// @Failure      403      {object}  map[string]string
// @Failure      404      {object}  map[string]string
// @Router       /api/groups/{groupId}/invite [post]
func (ctrl *GroupController) InviteMember(c *fiber.Ctx) error {
	actor, err := middleware.CurrentUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	groupID, err := primitive.ObjectIDFromHex(c.Params("groupId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid group ID"})
	}

	var req InviteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	target, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid user ID"})
	}

	invite, err := ctrl.Service.InviteMember(c.UserContext(), actor, groupID, target)
	if err != nil {
		return ctrl.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(invite)
}

// ListInvites godoc
// @Summary      Pending invites for the current user
// @Tags         groups
// @Produce      json
// @Success      200  {array}  InviteView
// @Router       /api/groups/invites [get]
func (ctrl *GroupController) ListInvites(c *fiber.Ctx) error {
	actor, err := middleware.CurrentUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	invites, err := ctrl.Service.ListInvites(c.UserContext(), actor)
	if err != nil {
		return ctrl.fail(c, err)
	}
	return c.JSON(invites)
}

// RespondInvite godoc
// @Summary      Accept or decline an invite
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        inviteId  path      string                true  "Invite ID"
// @Param        body      body      RespondInviteRequest  true  "accept or decline"
// @Success      200       {object}  Invite
// @Failure      400       {object}  map[string]string
// @Failure      403       {object}  map[string]string
// @Failure      404       {object}  map[string]string
// @Router       /api/groups/invites/respond/{inviteId} [patch]
func (ctrl *GroupController) RespondInvite(c *fiber.Ctx) error {
	actor, err := middleware.CurrentUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	inviteID, err := primitive.ObjectIDFromHex(c.Params("inviteId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid invite ID"})
	}

	var req RespondInviteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}

	invite, err := ctrl.Service.RespondInvite(c.UserContext(), actor, inviteID, req.Action)
	if err != nil {
		return ctrl.fail(c, err)
	}
	return c.JSON(invite)
}

// ListActivity godoc
// @Summary      Audit trail of a group
// @Tags         groups
// @Produce      json
// @Param        id     path   string  true   "Group ID"
// @Param        page   query  int     false  "Page"
// @Param        limit  query  int     false  "Page size"
// @Success      200    {array}  models.AuditLog
// @Failure      403    {object}  map[string]string
// @Router       /api/groups/{id}/activity [get]
func (ctrl *GroupController) ListActivity(c *fiber.Ctx) error {
	actor, err := middleware.CurrentUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	groupID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid group ID"})
	}

	logs, err := ctrl.Service.ListActivity(c.UserContext(), actor, groupID,
		int64(c.QueryInt("page", 1)), int64(c.QueryInt("limit", 20)))
	if err != nil {
		return ctrl.fail(c, err)
	}
	return c.JSON(logs)
}

func (ctrl *GroupController) fail(c *fiber.Ctx, err error) error {
	status, message := StatusFor(err)
	if status == fiber.StatusInternalServerError {
		ctrl.Log.Error("group request failed", zap.String("path", c.Path()), zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"message": message})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized"})
}
