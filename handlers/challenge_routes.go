package handlers

import (
	apperrors "sports-match-system/errors"
	"sports-match-system/services"

	"github.com/gofiber/fiber/v2"
)

// SetupChallengeRoutes wires the skill-drill endpoints.
func SetupChallengeRoutes(app *fiber.App, challengeService *services.ChallengeService) {
	challenges := app.Group("/s/challenges")

	challenges.Get("/", listChallenges(challengeService))
	challenges.Post("/:id/attempts", recordAttempt(challengeService))
	challenges.Get("/:id/best", bestAttempt(challengeService))
	challenges.Get("/attempts/history", attemptHistory(challengeService))
}

func listChallenges(svc *services.ChallengeService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sportID := c.Query("sport_id")
		if sportID == "" {
			return respondError(c, apperrors.New(apperrors.CodeInvalidInput, "sport_id is required"))
		}
		challenges, err := svc.ActiveChallenges(sportID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"challenges": challenges})
	}
}

func recordAttempt(svc *services.ChallengeService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			ScoreValue int `json:"score_value"`
			MaxValue   int `json:"max_value"`
		}
		if err := c.BodyParser(&body); err != nil {
			return respondError(c, apperrors.New(apperrors.CodeInvalidInput, "invalid request body"))
		}
		result, err := svc.RecordAttempt(userID(c), c.Params("id"), body.ScoreValue, body.MaxValue)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(result)
	}
}

func bestAttempt(svc *services.ChallengeService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		best, err := svc.BestAttempt(userID(c), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		if best == nil {
			return c.JSON(fiber.Map{"best": nil})
		}
		return c.JSON(fiber.Map{"best": best, "accuracy": best.Accuracy()})
	}
}

func attemptHistory(svc *services.ChallengeService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		attempts, err := svc.History(userID(c), c.QueryInt("limit", 50))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"attempts": attempts})
	}
}
