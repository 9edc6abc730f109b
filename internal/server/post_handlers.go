package server

import (
	"inkpost/internal/models"
	"inkpost/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// SubmitPost handles POST /api/posts. The body's mode selects create or edit.
func (s *Server) SubmitPost(c *fiber.Ctx) error {
	view, mode, err := s.postService.Submit(c.UserContext(), c.Body())
	if err != nil {
		return respond(c, err)
	}
	status := fiber.StatusOK
	if mode == validation.ModeCreate {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(view)
}

// GetPosts handles GET /api/posts, optionally filtered by categoryId or userId.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	ctx := c.UserContext()
	page := parsePagination(c, defaultPaginationLimit)

	categoryID, byCategory, err := parseQueryID(c, "categoryId")
	if err != nil {
		return nil
	}
	userID, byUser, err := parseQueryID(c, "userId")
	if err != nil {
		return nil
	}
	if byCategory && byUser {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("categoryId and userId cannot be combined"))
	}

	var posts []*models.PostView
	switch {
	case byCategory:
		posts, err = s.postService.ListByCategory(ctx, categoryID, page)
	case byUser:
		posts, err = s.postService.ListByUser(ctx, userID, page)
	default:
		posts, err = s.postService.List(ctx, page)
	}
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	post, err := s.postService.Get(c.UserContext(), id)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.postService.Delete(c.UserContext(), id); err != nil {
		return respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
