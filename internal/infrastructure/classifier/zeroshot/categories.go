package zeroshot

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/document-classifier/internal/core/domain"
)

//go:embed categories.yaml
var categoriesYAML []byte

// CategoryDescription is the natural-language prototype of one category.
type CategoryDescription struct {
	Name        domain.Category `yaml:"name"`
	Description string          `yaml:"description"`
}

type categoryFile struct {
	Categories []CategoryDescription `yaml:"categories"`
}

// DefaultCategories returns the embedded category descriptions in file order.
func DefaultCategories() ([]CategoryDescription, error) {
	return ParseCategories(categoriesYAML)
}

// ParseCategories decodes a category file and checks it covers exactly the
// closed category set.
func ParseCategories(data []byte) ([]CategoryDescription, error) {
	var file categoryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}

	seen := make(map[domain.Category]bool, len(file.Categories))
	for _, c := range file.Categories {
		if !domain.IsKnownCategory(c.Name) {
			return nil, fmt.Errorf("unknown category %q", c.Name)
		}
		if seen[c.Name] {
			return nil, fmt.Errorf("duplicate category %q", c.Name)
		}
		if strings.TrimSpace(c.Description) == "" {
			return nil, fmt.Errorf("category %q has no description", c.Name)
		}
		seen[c.Name] = true
	}
	for _, c := range domain.Categories() {
		if !seen[c] {
			return nil, fmt.Errorf("category %q is missing", c)
		}
	}
	return file.Categories, nil
}
