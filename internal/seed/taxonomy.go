package seed

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"inkpost/internal/models"

	"gopkg.in/yaml.v3"
)

//go:embed taxonomy.yaml
var defaultTaxonomy []byte

// Taxonomy lists the category and tag names to create.
type Taxonomy struct {
	Categories []string `yaml:"categories"`
	Tags       []string `yaml:"tags"`
}

// DefaultTaxonomy returns the embedded taxonomy.
func DefaultTaxonomy() (*Taxonomy, error) {
	return ParseTaxonomy(defaultTaxonomy)
}

// ParseTaxonomy decodes raw YAML. Names are trimmed; blank or repeated names
// and an empty category list are errors.
func ParseTaxonomy(raw []byte) (*Taxonomy, error) {
	var t Taxonomy
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("parse taxonomy: %w", err)
	}
	var err error
	if t.Categories, err = cleanNames("category", t.Categories); err != nil {
		return nil, err
	}
	if t.Tags, err = cleanNames("tag", t.Tags); err != nil {
		return nil, err
	}
	if len(t.Categories) == 0 {
		return nil, fmt.Errorf("taxonomy needs at least one category")
	}
	return &t, nil
}

func cleanNames(kind string, names []string) ([]string, error) {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for i, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("%s %d is blank", kind, i)
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%s %q is listed twice", kind, name)
		}
		seen[key] = struct{}{}
		out = append(out, name)
	}
	return out, nil
}

// ensureTaxonomy finds or creates every named category and tag.
func (f *Factory) ensureTaxonomy(ctx context.Context, t *Taxonomy) ([]*models.Category, []*models.Tag, error) {
	categories := make([]*models.Category, 0, len(t.Categories))
	for _, name := range t.Categories {
		c := &models.Category{Name: name}
		if f.opts.DryRun {
			c.ID = f.syntheticID()
		} else if err := f.db.WithContext(ctx).Where(models.Category{Name: name}).FirstOrCreate(c).Error; err != nil {
			return nil, nil, fmt.Errorf("category %q: %w", name, err)
		}
		categories = append(categories, c)
	}

	tags := make([]*models.Tag, 0, len(t.Tags))
	for _, name := range t.Tags {
		tag := &models.Tag{Name: name}
		if f.opts.DryRun {
			tag.ID = f.syntheticID()
		} else if err := f.db.WithContext(ctx).Where(models.Tag{Name: name}).FirstOrCreate(tag).Error; err != nil {
			return nil, nil, fmt.Errorf("tag %q: %w", name, err)
		}
		tags = append(tags, tag)
	}
	return categories, tags, nil
}
