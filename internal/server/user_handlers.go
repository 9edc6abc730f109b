package server

import (
	"inkpost/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// SubmitUser handles POST /api/users. The body's mode selects signUp or update.
func (s *Server) SubmitUser(c *fiber.Ctx) error {
	user, mode, err := s.userService.Submit(c.UserContext(), c.Body())
	if err != nil {
		return respond(c, err)
	}
	status := fiber.StatusOK
	if mode == validation.ModeSignUp {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(user)
}

// GetUser handles GET /api/users/:id
func (s *Server) GetUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	user, err := s.userService.Get(c.UserContext(), id)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(user)
}
