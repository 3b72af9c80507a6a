package group

import (
	"langlink-api/internal/config"
	"langlink-api/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type GroupApi struct {
	controller *GroupController
	config     *config.Config
}

func NewGroupApi(controller *GroupController, config *config.Config) *GroupApi {
	return &GroupApi{
		controller: controller,
		config:     config,
	}
}

func (h *GroupApi) Setup(app *fiber.App) {
	groups := app.Group("/api/groups", middleware.AuthMiddleware(h.config.SkipAuth))

	groups.Post("/", h.controller.CreateGroup)
	groups.Get("/", h.controller.ListGroups)

	// Static segments before /:id
	groups.Get("/invites", h.controller.ListInvites)
	groups.Patch("/invites/respond/:inviteId", h.controller.RespondInvite)
	groups.Patch("/updateGroup/:groupId", h.controller.UpdateDetails)

	groups.Get("/:id", h.controller.GetGroup)
	groups.Get("/:id/activity", h.controller.ListActivity)
	groups.Patch("/:groupId", h.controller.UpdateDetails)
	groups.Patch("/:groupId/members", h.controller.UpdateMembers)
	groups.Post("/:groupId/invite", h.controller.InviteMember)
}
