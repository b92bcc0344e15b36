package handlers

import (
	apperrors "sports-match-system/errors"
	"sports-match-system/models"
	"sports-match-system/services"
	"sports-match-system/workers"

	"github.com/gofiber/fiber/v2"
)

// SetupAvatarRoutes wires the avatar item catalog, unlock progress, purchase
// and generation endpoints.
func SetupAvatarRoutes(app *fiber.App, unlockService *services.UnlockService, streamService *services.UnlockStreamService, avatarWorker *workers.AvatarWorker) {
	avatar := app.Group("/s/avatar")

	avatar.Get("/items", itemProgress(unlockService))
	avatar.Get("/unlocked", unlockedItems(unlockService))
	avatar.Post("/items/:id/unlock", unlockItem(unlockService))
	avatar.Get("/unlocks/stream", streamService.StreamUnlocksSSE)
	avatar.Post("/generate", generateAvatar(avatarWorker))
}

func itemProgress(svc *services.UnlockService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sportID := c.Query("sport_id")
		if sportID == "" {
			return respondError(c, apperrors.New(apperrors.CodeInvalidInput, "sport_id is required"))
		}
		progress, err := svc.Progress(userID(c), sportID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"items": progress})
	}
}

func unlockedItems(svc *services.UnlockService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sportID := c.Query("sport_id")
		if sportID == "" {
			return respondError(c, apperrors.New(apperrors.CodeInvalidInput, "sport_id is required"))
		}
		items, err := svc.ListUnlocked(userID(c), sportID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"items": items})
	}
}

func unlockItem(svc *services.UnlockService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			Via     string `json:"via"` // "purchase" or "achievement"
			SportID string `json:"sport_id"`
		}
		if err := c.BodyParser(&body); err != nil {
			return respondError(c, apperrors.New(apperrors.CodeInvalidInput, "invalid request body"))
		}
		if body.Via == "" {
			body.Via = models.UnlockViaAchievement
		}
		item, err := svc.UnlockItem(userID(c), c.Params("id"), body.Via, body.SportID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"unlocked": item})
	}
}

func generateAvatar(worker *workers.AvatarWorker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			Prompt string `json:"prompt"`
		}
		if err := c.BodyParser(&body); err != nil || body.Prompt == "" {
			return respondError(c, apperrors.New(apperrors.CodeInvalidInput, "prompt is required"))
		}
		if !worker.Enqueue(workers.AvatarTask{UserID: userID(c), Prompt: body.Prompt}) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "avatar generation queue is full, try again later",
			})
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"message": "avatar generation queued",
		})
	}
}
