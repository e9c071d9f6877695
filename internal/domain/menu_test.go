package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestMenuDocument_Validate(t *testing.T) {
	cases := []struct {
		name    string
		doc     MenuDocument
		wantErr bool
	}{
		{"valid", MenuDocument{VenueName: "moes", Sections: []MenuSection{}}, false},
		{"empty venue", MenuDocument{Sections: []MenuSection{}}, true},
		{"nil sections", MenuDocument{VenueName: "moes"}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.doc.Validate()
			if tc.wantErr && !errors.Is(err, ErrMalformedDocument) {
				t.Fatalf("expected ErrMalformedDocument, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestMenuDocument_FlatItems(t *testing.T) {
	doc := MenuDocument{
		VenueName: "moes",
		Sections: []MenuSection{
			{Category: "Bowls", Items: []MenuItem{{ID: "1"}, {ID: "2"}}},
			{Category: "Sides", Items: nil},
			{Category: "Drinks", Items: []MenuItem{{ID: "3"}}},
		},
	}

	items := doc.FlatItems()
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].ID != "1" || items[2].ID != "3" {
		t.Errorf("document order not preserved: %+v", items)
	}
}

func TestMenuDocument_JSONShape(t *testing.T) {
	raw := `{
		"hotelName": "moes",
		"sections": [
			{"category": "Bowls", "items": [
				{"id": "1", "name": "Burrito Bowl", "price": "$9.50",
				 "description": "Rice and beans", "ingredients": ["rice"], "calories": 710}
			]}
		]
	}`

	var doc MenuDocument
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc.VenueName != "moes" {
		t.Errorf("hotelName not mapped: %+v", doc)
	}
	item := doc.Sections[0].Items[0]
	if item.Price != "$9.50" || item.Calories != 710 {
		t.Errorf("unexpected item: %+v", item)
	}
}
