// Package catalog serves the menu and resolves image names to URLs.
package catalog

import (
	_ "embed"
	"fmt"

	"momo/internal/models"

	"gopkg.in/yaml.v3"
)

//go:embed menu.yaml
var defaultMenu []byte

// Category groups menu items.
type Category struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

type menuFile struct {
	Categories []Category        `yaml:"categories"`
	Items      []models.MenuItem `yaml:"items"`
}

// Catalog is the read-only menu.
type Catalog struct {
	categories []Category
	items      []models.MenuItem
	images     *ImageResolver
}

// Load parses the embedded menu.
func Load(images *ImageResolver) (*Catalog, error) {
	return Parse(defaultMenu, images)
}

// Parse builds a Catalog from a YAML document.
func Parse(data []byte, images *ImageResolver) (*Catalog, error) {
	var menu menuFile
	if err := yaml.Unmarshal(data, &menu); err != nil {
		return nil, fmt.Errorf("failed to parse menu: %w", err)
	}
	known := make(map[string]bool, len(menu.Categories))
	for _, c := range menu.Categories {
		known[c.ID] = true
	}
	seen := make(map[string]bool, len(menu.Items))
	for i, item := range menu.Items {
		if item.ID == "" || seen[item.ID] {
			return nil, fmt.Errorf("menu item %d has a missing or duplicate id %q", i, item.ID)
		}
		if !known[item.Category] {
			return nil, fmt.Errorf("menu item %s has unknown category %q", item.ID, item.Category)
		}
		seen[item.ID] = true
		menu.Items[i].ImageURL = images.URL(item.Image)
	}
	return &Catalog{categories: menu.Categories, items: menu.Items, images: images}, nil
}

// Categories lists the menu categories in display order.
func (c *Catalog) Categories() []Category {
	return append([]Category(nil), c.categories...)
}

// All lists every item in display order.
func (c *Catalog) All() []models.MenuItem {
	return append([]models.MenuItem(nil), c.items...)
}

// ByCategory lists the items of one category.
func (c *Catalog) ByCategory(category string) []models.MenuItem {
	out := []models.MenuItem{}
	for _, item := range c.items {
		if item.Category == category {
			out = append(out, item)
		}
	}
	return out
}

// Featured lists the items highlighted on the landing page.
func (c *Catalog) Featured() []models.MenuItem {
	out := []models.MenuItem{}
	for _, item := range c.items {
		if item.Featured {
			out = append(out, item)
		}
	}
	return out
}

// Images returns the resolver used for item pictures.
func (c *Catalog) Images() *ImageResolver {
	return c.images
}
