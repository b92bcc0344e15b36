package handlers

import (
	apperrors "sports-match-system/errors"
	"sports-match-system/services"

	"github.com/gofiber/fiber/v2"
)

// SetupVenueRoutes wires the venue catalog endpoints.
func SetupVenueRoutes(app *fiber.App, venueService *services.VenueService) {
	venues := app.Group("/s/venues")

	venues.Get("/", listVenues(venueService))
	venues.Post("/", createVenue(venueService))
	venues.Get("/:slug", getVenue(venueService))
}

func listVenues(svc *services.VenueService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		venues, err := svc.ListVenues()
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"venues": venues})
	}
}

func createVenue(svc *services.VenueService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			Name      string  `json:"name"`
			Address   string  `json:"address"`
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		}
		if err := c.BodyParser(&body); err != nil {
			return respondError(c, apperrors.New(apperrors.CodeInvalidInput, "invalid request body"))
		}
		v, err := svc.CreateVenue(body.Name, body.Address, body.Latitude, body.Longitude)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(v)
	}
}

func getVenue(svc *services.VenueService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		v, err := svc.GetVenueBySlug(c.Params("slug"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(v)
	}
}
