package models

// MenuItem is an entry of the catalog.
type MenuItem struct {
	ID          string  `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description" yaml:"description"`
	Image       string  `json:"image" yaml:"image"`
	ImageURL    string  `json:"image_url" yaml:"-"`
	Price       float64 `json:"price" yaml:"price"`
	Category    string  `json:"category" yaml:"category"`
	Spicy       bool    `json:"spicy" yaml:"spicy"`
	Featured    bool    `json:"featured" yaml:"featured"`
}
