package server

import (
	"inkpost/internal/models"
	"inkpost/internal/service"

	"github.com/gofiber/fiber/v2"
)

func parseTaxon(c *fiber.Ctx) (service.CreateTaxonInput, error) {
	var req service.CreateTaxonInput
	if err := c.BodyParser(&req); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
		return req, errResponseWritten
	}
	return req, nil
}

// CreateCategory handles POST /api/categories
func (s *Server) CreateCategory(c *fiber.Ctx) error {
	req, err := parseTaxon(c)
	if err != nil {
		return nil
	}
	category, err := s.taxonomyService.CreateCategory(c.UserContext(), req)
	if err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

// GetCategories handles GET /api/categories
func (s *Server) GetCategories(c *fiber.Ctx) error {
	categories, err := s.taxonomyService.ListCategories(c.UserContext())
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(categories)
}

// DeleteCategory handles DELETE /api/categories/:id
func (s *Server) DeleteCategory(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.taxonomyService.DeleteCategory(c.UserContext(), id); err != nil {
		return respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CreateTag handles POST /api/tags
func (s *Server) CreateTag(c *fiber.Ctx) error {
	req, err := parseTaxon(c)
	if err != nil {
		return nil
	}
	tag, err := s.taxonomyService.CreateTag(c.UserContext(), req)
	if err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(tag)
}

// GetTags handles GET /api/tags
func (s *Server) GetTags(c *fiber.Ctx) error {
	tags, err := s.taxonomyService.ListTags(c.UserContext())
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(tags)
}

// DeleteTag handles DELETE /api/tags/:id
func (s *Server) DeleteTag(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.taxonomyService.DeleteTag(c.UserContext(), id); err != nil {
		return respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
