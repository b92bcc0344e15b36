package handlers

import (
	apperrors "sports-match-system/errors"

	"github.com/gofiber/fiber/v2"
)

// respondError renders a service error with its mapped status and code.
func respondError(c *fiber.Ctx, err error) error {
	return c.Status(apperrors.HTTPStatus(err)).JSON(fiber.Map{
		"error": err.Error(),
		"code":  apperrors.CodeOf(err),
	})
}

func userID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}
