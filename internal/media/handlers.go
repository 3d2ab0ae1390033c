package media

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/NoraMoser/Adventure-Tracker-sub000/internal/activity"
	"github.com/NoraMoser/Adventure-Tracker-sub000/internal/spot"
)

func RegisterRoutes(r fiber.Router, svc *Service, activities *activity.Service, spots *spot.Service, authMiddleware fiber.Handler) {
	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		var body struct {
			LocalRef string `json:"local_ref"`
			Kind     string `json:"kind"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		obj, err := svc.Register(c.Context(), userID, body.LocalRef, body.Kind)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(obj)
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		obj, err := svc.Get(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "media not found")
		}
		return c.JSON(obj)
	})

	// Attach is best-effort: the photos already live in media_objects, so a
	// failed target update only means the link is missing, not the photo.
	r.Post("/attach", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			TargetKind string   `json:"target_kind"`
			TargetID   string   `json:"target_id"`
			URLs       []string `json:"urls"`
		}
		if err := c.BodyParser(&body); err != nil || body.TargetID == "" || len(body.URLs) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "target_kind, target_id, and urls required")
		}

		var err error
		switch body.TargetKind {
		case "activity":
			err = activities.AttachPhotos(c.Context(), body.TargetID, body.URLs)
		case "spot":
			err = spots.AttachPhotos(c.Context(), body.TargetID, body.URLs)
		default:
			return fiber.NewError(fiber.StatusBadRequest, "target_kind must be activity or spot")
		}
		if err != nil {
			log.Printf("photo attach failed for %s %s: %v", body.TargetKind, body.TargetID, err)
			return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"attached": false})
		}
		return c.JSON(fiber.Map{"attached": true})
	})
}
