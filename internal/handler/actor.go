package handler

import (
	"go-pos-inventory/internal/model"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Helpers that read the user info RequireAuth put in the context.
func getUserID(c *fiber.Ctx) string {
	userID, ok := c.Locals("user_id").(string)
	if !ok {
		return "system" // only on routes without RequireAuth
	}
	return userID
}

func getUserName(c *fiber.Ctx) string {
	userName, ok := c.Locals("user_name").(string)
	if !ok {
		return "Unknown"
	}
	return userName
}

func getUserEmail(c *fiber.Ctx) string {
	userEmail, _ := c.Locals("user_email").(string)
	return userEmail
}

func actorFrom(c *fiber.Ctx) model.Actor {
	return model.Actor{ID: getUserID(c), Name: getUserName(c), Email: getUserEmail(c)}
}

func parseUUID(id string) (uuid.UUID, error) {
	return uuid.Parse(id)
}
