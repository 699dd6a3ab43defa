package analytics

import (
	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/interactions", func(c *fiber.Ctx) error {
		var req Interaction
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if req.MuseumID == "" || req.ArtworkID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "museum_id and artwork_id required")
		}
		logged, err := svc.LogInteraction(c.Context(), req)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(logged)
	})

	r.Get("/museums/:id", authMiddleware, func(c *fiber.Ctx) error {
		out, err := svc.MuseumAnalytics(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(out)
	})
}
