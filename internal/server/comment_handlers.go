package server

import (
	"github.com/gofiber/fiber/v2"
)

// SubmitComment handles POST /api/comments
func (s *Server) SubmitComment(c *fiber.Ctx) error {
	comment, err := s.commentService.Submit(c.UserContext(), c.Body())
	if err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// GetThread handles GET /api/posts/:id/comments and returns the post's
// comments in display order with their depth.
func (s *Server) GetThread(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	entries, err := s.commentService.Thread(c.UserContext(), id)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(entries)
}

// DeleteComment handles DELETE /api/comments/:id
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.commentService.Delete(c.UserContext(), id); err != nil {
		return respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
