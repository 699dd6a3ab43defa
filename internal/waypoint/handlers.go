package waypoint

import (
	"errors"

	"backend-artscope/internal/nav"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		var req Waypoint
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if req.MuseumID == "" || req.Title == "" {
			return fiber.NewError(fiber.StatusBadRequest, "museum_id and title required")
		}
		wp, err := svc.CreateWaypoint(c.Context(), req)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(wp)
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		wp, err := svc.GetWaypoint(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "waypoint not found")
		}
		return c.JSON(wp)
	})

	r.Put("/:id", authMiddleware, func(c *fiber.Ctx) error {
		var req Waypoint
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		wp, err := svc.UpdateWaypoint(c.Context(), c.Params("id"), req)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(wp)
	})

	r.Delete("/:id", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.DeleteWaypoint(c.Context(), c.Params("id")); err != nil {
			if errors.Is(err, ErrWaypointInUse) {
				return fiber.NewError(fiber.StatusConflict, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func RegisterPathRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		var req PathRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		path, warnings, err := svc.CreatePath(c.Context(), req)
		if err != nil {
			return pathError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"path": path, "warnings": warnings})
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		path, err := svc.GetPath(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "path not found")
		}
		return c.JSON(path)
	})

	r.Put("/:id", authMiddleware, func(c *fiber.Ctx) error {
		var req PathRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		path, warnings, err := svc.UpdatePath(c.Context(), c.Params("id"), req)
		if err != nil {
			return pathError(err)
		}
		return c.JSON(fiber.Map{"path": path, "warnings": warnings})
	})

	r.Get("/", func(c *fiber.Ctx) error {
		museumID := c.Query("museum_id")
		if museumID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "museum_id required")
		}
		paths, err := svc.ListPaths(c.Context(), museumID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(paths)
	})
}

func pathError(err error) error {
	switch {
	case errors.Is(err, nav.ErrEmptyPath),
		errors.Is(err, nav.ErrCyclicPath),
		errors.Is(err, nav.ErrNegativeDistance),
		errors.Is(err, nav.ErrMissingSegment):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
