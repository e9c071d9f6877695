package domain

import "fmt"

// MenuItem is a single dish as it appears in the source document and in
// items-style answers.
type MenuItem struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Price       string   `json:"price"`
	Description string   `json:"description"`
	Ingredients []string `json:"ingredients"`
	Calories    int      `json:"calories"`
}

// MenuSection is one top-level category of a venue's menu.
type MenuSection struct {
	Category string     `json:"category"`
	Items    []MenuItem `json:"items"`
}

// MenuDocument is the raw per-venue menu record fetched from the document
// source. Immutable input; never persisted by this service.
type MenuDocument struct {
	VenueName string        `json:"hotelName"`
	Sections  []MenuSection `json:"sections"`
}

// Validate checks the structural invariants ingestion depends on.
func (d *MenuDocument) Validate() error {
	if d.VenueName == "" {
		return fmt.Errorf("venue name is empty: %w", ErrMalformedDocument)
	}
	if d.Sections == nil {
		return fmt.Errorf("sections are missing: %w", ErrMalformedDocument)
	}
	return nil
}

// FlatItems returns every item across all categories in document order.
func (d *MenuDocument) FlatItems() []MenuItem {
	items := make([]MenuItem, 0)
	for _, sec := range d.Sections {
		items = append(items, sec.Items...)
	}
	return items
}
