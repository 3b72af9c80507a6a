package media

import (
	"errors"

	"langlink-api/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type MediaController struct {
	MediaService MediaService
	Log          *zap.Logger
}

func NewMediaController(mediaService MediaService, log *zap.Logger) *MediaController {
	return &MediaController{MediaService: mediaService, Log: log}
}

// UploadImage godoc
// @Summary      Upload an image
// @Description  Stores an image (group or profile picture) and returns its public URL
// @Tags         media
// @Accept       multipart/form-data
// @Produce      json
// @Param        image  formData  file  true  "Image file"
// @Success      200    {object}  map[string]string
// @Failure      400    {object}  map[string]string
// @Failure      413    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Router       /api/upload [post]
func (ctrl *MediaController) UploadImage(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized"})
	}

	file, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "No file uploaded"})
	}

	url, err := ctrl.MediaService.UploadImage(c.UserContext(), userID, file)
	switch {
	case err == nil:
		return c.JSON(fiber.Map{"url": url})
	case errors.Is(err, ErrNoFile):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "No file uploaded"})
	case errors.Is(err, ErrNotImage):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Only image files are allowed"})
	case errors.Is(err, ErrTooLarge):
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{"message": "Image is too large"})
	default:
		ctrl.Log.Error("image upload failed", zap.String("userId", userID.Hex()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Image upload failed"})
	}
}
