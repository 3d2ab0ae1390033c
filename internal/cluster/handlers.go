package cluster

import (
	"github.com/NoraMoser/Adventure-Tracker-sub000/internal/trip"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes exposes the engine over HTTP. The review workflow maps to
// request/response instead of a modal chain: detection returns clusters,
// the client resolves each one with a follow-up call.
func RegisterRoutes(r fiber.Router, engine *Engine, authMiddleware fiber.Handler) {
	r.Get("/", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		clusters, err := engine.Detect(c.Context(), userID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "trip detection failed: "+err.Error())
		}
		return c.JSON(fiber.Map{"clusters": clusters})
	})

	r.Post("/accept", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		var body Cluster
		if err := c.BodyParser(&body); err != nil || len(body.Items) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "cluster with items required")
		}
		created, err := engine.Materialize(c.Context(), userID, body)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not create trip: "+err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(created)
	})

	r.Post("/reject", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		var body struct {
			Items []struct {
				Kind trip.ItemKind `json:"kind"`
				ID   string        `json:"id"`
			} `json:"items"`
		}
		if err := c.BodyParser(&body); err != nil || len(body.Items) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "items required")
		}
		for _, it := range body.Items {
			if err := engine.rejections.Add(c.Context(), userID, it.Kind, it.ID); err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "could not save rejection: "+err.Error())
			}
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Delete("/rejections", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		if err := engine.rejections.Clear(c.Context(), userID); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	// single-item matching: returns the matched trip, or a proposal the
	// client must explicitly confirm (trips are never created silently)
	r.Post("/match", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		var item Item
		if err := c.BodyParser(&item); err != nil || !item.Kind.Valid() || item.ID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "item with kind and id required")
		}
		matched, err := engine.MatchTrip(c.Context(), userID, item)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "trip matching failed: "+err.Error())
		}
		if matched != nil {
			return c.JSON(fiber.Map{"trip": matched})
		}
		return c.JSON(fiber.Map{
			"trip":     nil,
			"proposal": fiber.Map{"name": "Trip — " + item.Date.Format("Jan 2, 2006")},
		})
	})
}
