package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"inkpost/internal/models"
	"inkpost/internal/observability"
	"inkpost/internal/repository"
	"inkpost/internal/validation"
)

// TaxonomyService manages categories and tags.
type TaxonomyService struct {
	categoryRepo repository.CategoryRepository
	tagRepo      repository.TagRepository
}

// CreateTaxonInput names a new category or tag.
type CreateTaxonInput struct {
	Name string `json:"name"`
}

func NewTaxonomyService(categoryRepo repository.CategoryRepository, tagRepo repository.TagRepository) *TaxonomyService {
	return &TaxonomyService{categoryRepo: categoryRepo, tagRepo: tagRepo}
}

func checkName(schema string, in CreateTaxonInput) (string, error) {
	name := strings.TrimSpace(in.Name)
	var msg string
	switch {
	case name == "":
		msg = "must not be empty"
	case utf8.RuneCountInString(name) > validation.MaxTitleLen:
		msg = "must be at most 255 characters"
	default:
		return name, nil
	}
	observability.RecordValidationFailure(schema, "")
	return "", models.NewFieldValidationError(schema, "", []models.FieldError{{Path: "name", Message: msg}})
}

func (s *TaxonomyService) CreateCategory(ctx context.Context, in CreateTaxonInput) (*models.Category, error) {
	name, err := checkName("category", in)
	if err != nil {
		return nil, err
	}
	category := &models.Category{Name: name}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *TaxonomyService) ListCategories(ctx context.Context) ([]*models.Category, error) {
	return s.categoryRepo.List(ctx)
}

// DeleteCategory soft-deletes a category. Posts in it keep pointing at it and
// resolve its name as absent.
func (s *TaxonomyService) DeleteCategory(ctx context.Context, id uint) error {
	return s.categoryRepo.Delete(ctx, id)
}

func (s *TaxonomyService) CreateTag(ctx context.Context, in CreateTaxonInput) (*models.Tag, error) {
	name, err := checkName("tag", in)
	if err != nil {
		return nil, err
	}
	tag := &models.Tag{Name: name}
	if err := s.tagRepo.Create(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

func (s *TaxonomyService) ListTags(ctx context.Context) ([]*models.Tag, error) {
	return s.tagRepo.List(ctx)
}

func (s *TaxonomyService) DeleteTag(ctx context.Context, id uint) error {
	return s.tagRepo.Delete(ctx, id)
}
