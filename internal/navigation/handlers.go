package navigation

import (
	"errors"
	"strconv"

	"backend-artscope/internal/geo"
	"backend-artscope/internal/nav"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

func RegisterRoutes(r fiber.Router, svc *Service) {
	r.Post("/sessions", func(c *fiber.Ctx) error {
		var req StartRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if req.VisitorRef == "" || req.PathID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "visitor_ref and path_id required")
		}
		view, warnings, err := svc.StartSession(c.Context(), req)
		if err != nil {
			return sessionError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"session":  view,
			"warnings": warnings,
		})
	})

	r.Get("/sessions/:id", func(c *fiber.Ctx) error {
		view, err := svc.Session(c.Context(), c.Params("id"))
		if err != nil {
			return sessionError(err)
		}
		return c.JSON(view)
	})

	r.Post("/sessions/:id/position", func(c *fiber.Ctx) error {
		var req PositionRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		guidance, err := svc.RecordPosition(c.Context(), c.Params("id"), req)
		if err != nil {
			return sessionError(err)
		}
		return c.JSON(guidance)
	})

	r.Post("/sessions/:id/arrive", func(c *fiber.Ctx) error {
		var req PositionRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		view, err := svc.ConfirmArrival(c.Context(), c.Params("id"), req)
		if err != nil {
			return sessionError(err)
		}
		return c.JSON(view)
	})

	r.Post("/sessions/:id/abandon", func(c *fiber.Ctx) error {
		var req AbandonRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		reason := nav.AbandonReason(req.Reason)
		if reason == "" {
			reason = nav.ReasonExplicitExit
		}
		status, err := svc.Abandon(c.Context(), c.Params("id"), reason)
		if err != nil {
			return sessionError(err)
		}
		return c.JSON(fiber.Map{"status": status})
	})

	r.Get("/nearest", func(c *fiber.Ctx) error {
		museumID := c.Query("museum_id")
		lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
		lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
		if museumID == "" || errLat != nil || errLng != nil {
			return fiber.NewError(fiber.StatusBadRequest, "museum_id, lat and lng required")
		}
		wp, dist, err := svc.Nearest(c.Context(), museumID, lat, lng)
		if errors.Is(err, ErrNoWaypoints) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		if err != nil {
			return sessionError(err)
		}
		return c.JSON(fiber.Map{"waypoint": wp, "distance_m": dist})
	})

	r.Get("/sessions/:id/summary", func(c *fiber.Ctx) error {
		summary, err := svc.Summary(c.Context(), c.Params("id"))
		if err != nil {
			return sessionError(err)
		}
		return c.JSON(summary)
	})
}

func sessionError(err error) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows), errors.Is(err, ErrSessionNotFound):
		return fiber.NewError(fiber.StatusNotFound, "session not found")
	case errors.Is(err, nav.ErrTargetNotOnPath):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, nav.ErrNotYetArrived), errors.Is(err, nav.ErrInvalidSessionState):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, nav.ErrEmptyPath), errors.Is(err, geo.ErrInvalidCoordinate):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
