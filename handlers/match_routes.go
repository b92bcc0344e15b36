package handlers

import (
	"fmt"
	"path/filepath"

	apperrors "sports-match-system/errors"
	"sports-match-system/services"
	"sports-match-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// SetupMatchRoutes wires the match lifecycle endpoints. All routes require
// user context from the gateway.
func SetupMatchRoutes(app *fiber.App, matchService *services.MatchService) {
	matches := app.Group("/s/matches")

	matches.Post("/", createMatch(matchService))
	matches.Get("/", listMatches(matchService))
	matches.Get("/:id", getMatch(matchService))
	matches.Post("/:id/respond", respondToMatch(matchService))
	matches.Post("/:id/cancel", cancelMatch(matchService))
	matches.Post("/:id/recording/acquire", acquireRecording(matchService))
	matches.Post("/:id/recording/release", releaseRecording(matchService))
	matches.Post("/:id/video", uploadVideo(matchService))
	matches.Post("/:id/agree", agreeResult(matchService))
	matches.Post("/:id/dispute", disputeMatch(matchService))
}

func createMatch(svc *services.MatchService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			OpponentID string `json:"opponent_id"`
			VenueID    string `json:"venue_id"`
			SportID    string `json:"sport_id"`
		}
		if err := c.BodyParser(&body); err != nil {
			return respondError(c, apperrors.New(apperrors.CodeInvalidInput, "invalid request body"))
		}
		m, err := svc.Create(userID(c), body.OpponentID, body.VenueID, body.SportID)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(m)
	}
}

func listMatches(svc *services.MatchService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		matches, err := svc.ListForUser(userID(c), c.QueryInt("limit", 50))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"matches": matches})
	}
}

func getMatch(svc *services.MatchService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		m, err := svc.Get(c.Params("id"), userID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(m)
	}
}

func respondToMatch(svc *services.MatchService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			Accept bool `json:"accept"`
		}
		if err := c.BodyParser(&body); err != nil {
			return respondError(c, apperrors.New(apperrors.CodeInvalidInput, "invalid request body"))
		}
		m, err := svc.Respond(c.Params("id"), userID(c), body.Accept)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(m)
	}
}

func cancelMatch(svc *services.MatchService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		m, err := svc.Cancel(c.Params("id"), userID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(m)
	}
}

func acquireRecording(svc *services.MatchService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		m, message, err := svc.AcquireRecordingLock(c.Params("id"), userID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"match": m, "message": message})
	}
}

func releaseRecording(svc *services.MatchService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		m, err := svc.ReleaseRecordingLock(c.Params("id"), userID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(m)
	}
}

func uploadVideo(svc *services.MatchService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("video")
		if err != nil {
			return respondError(c, apperrors.New(apperrors.CodeInvalidInput, "video file is required"))
		}

		ext := filepath.Ext(fileHeader.Filename)
		if ext == "" {
			ext = ".mp4"
		}
		key := fmt.Sprintf("match-videos/%s/%s%s", c.Params("id"), uuid.NewString(), ext)
		videoURL, err := utils.UploadFileToR2(fileHeader, key)
		if err != nil {
			return respondError(c, apperrors.Wrap(apperrors.CodeInternal, "video upload failed", err))
		}

		m, err := svc.AttachVideo(c.Params("id"), userID(c), videoURL)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(m)
	}
}

func agreeResult(svc *services.MatchService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			Agree bool `json:"agree"`
		}
		if err := c.BodyParser(&body); err != nil {
			return respondError(c, apperrors.New(apperrors.CodeInvalidInput, "invalid request body"))
		}
		m, unlocked, err := svc.AgreeResult(c.Params("id"), userID(c), body.Agree)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"match": m, "newly_unlocked": unlocked})
	}
}

func disputeMatch(svc *services.MatchService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			Reason  string `json:"reason"`
			Details string `json:"details"`
		}
		if err := c.BodyParser(&body); err != nil {
			return respondError(c, apperrors.New(apperrors.CodeInvalidInput, "invalid request body"))
		}
		m, err := svc.Dispute(c.Params("id"), userID(c), body.Reason, body.Details)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(m)
	}
}
