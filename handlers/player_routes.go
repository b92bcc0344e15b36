package handlers

import (
	apperrors "sports-match-system/errors"
	"sports-match-system/services"

	"github.com/gofiber/fiber/v2"
)

// SetupPlayerRoutes wires profile, stats and invite endpoints.
func SetupPlayerRoutes(app *fiber.App, playerService *services.PlayerService) {
	players := app.Group("/s/players")

	players.Get("/search", searchPlayers(playerService))
	players.Get("/me/stats", myStats(playerService))
	players.Post("/me/bootstrap", bootstrapPlayer(playerService))
	players.Get("/:id", getPlayer(playerService))

	invites := app.Group("/s/invites")
	invites.Post("/", recordInvite(playerService))
	invites.Post("/:id/credit", creditInvite(playerService))
}

func searchPlayers(svc *services.PlayerService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		players, err := svc.SearchPlayers(c.Query("q"), c.QueryInt("limit", 20))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"players": players})
	}
}

func myStats(svc *services.PlayerService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sportID := c.Query("sport_id")
		if sportID == "" {
			return respondError(c, apperrors.New(apperrors.CodeInvalidInput, "sport_id is required"))
		}
		stats, err := svc.StatsFor(userID(c), sportID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(stats)
	}
}

// bootstrapPlayer grants the default avatar items. The app calls this once
// after onboarding; repeat calls are harmless.
func bootstrapPlayer(svc *services.PlayerService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sportID := c.Query("sport_id")
		if sportID == "" {
			return respondError(c, apperrors.New(apperrors.CodeInvalidInput, "sport_id is required"))
		}
		if err := svc.EnsureDefaultItems(userID(c), sportID); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "default items granted"})
	}
}

func getPlayer(svc *services.PlayerService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		player, err := svc.GetPlayer(c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(player)
	}
}

func recordInvite(svc *services.PlayerService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			InviteeID string `json:"invitee_id"`
			SportID   string `json:"sport_id"`
			Code      string `json:"code"`
		}
		if err := c.BodyParser(&body); err != nil {
			return respondError(c, apperrors.New(apperrors.CodeInvalidInput, "invalid request body"))
		}
		inv, err := svc.RecordInvite(userID(c), body.InviteeID, body.SportID, body.Code)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(inv)
	}
}

func creditInvite(svc *services.PlayerService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		unlocked, err := svc.CreditInvite(c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"newly_unlocked": unlocked})
	}
}
