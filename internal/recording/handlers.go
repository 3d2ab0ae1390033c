package recording

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/NoraMoser/Adventure-Tracker-sub000/internal/recorder"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		var req struct {
			ActivityType recorder.ActivityType `json:"activity_type"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		session, err := svc.Start(c.Context(), userID, req.ActivityType)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(session)
	})

	r.Get("/", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		return c.JSON(fiber.Map{"sessions": svc.Active(userID)})
	})

	r.Post("/:id/fixes", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		var fix recorder.LocationFix
		if err := c.BodyParser(&fix); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		resp, err := svc.AddFix(userID, c.Params("id"), fix)
		if err != nil {
			return sessionError(err)
		}
		return c.JSON(resp)
	})

	r.Post("/:id/pause", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		if err := svc.Pause(userID, c.Params("id")); err != nil {
			return sessionError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/:id/resume", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		if err := svc.Resume(userID, c.Params("id")); err != nil {
			return sessionError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Get("/:id/status", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		snapshot, err := svc.Status(userID, c.Params("id"))
		if err != nil {
			return sessionError(err)
		}
		return c.JSON(snapshot)
	})

	r.Get("/:id/route", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		route, err := svc.Route(userID, c.Params("id"))
		if err != nil {
			return sessionError(err)
		}
		return c.JSON(fiber.Map{"route": route})
	})

	r.Post("/:id/stop", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		var req struct {
			Name string `json:"name"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		act, err := svc.Stop(c.Context(), userID, c.Params("id"), req.Name)
		if err != nil {
			if errors.Is(err, recorder.ErrNoActivityData) {
				return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
			}
			return sessionError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(act)
	})

	r.Post("/:id/discard", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		if err := svc.Discard(c.Context(), userID, c.Params("id")); err != nil {
			return sessionError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func sessionError(err error) error {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, recorder.ErrNotTracking),
		errors.Is(err, recorder.ErrNotPaused),
		errors.Is(err, recorder.ErrAlreadyTracking):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
