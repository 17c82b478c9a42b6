package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Category is one of the eleven equipment catalogs a BOQ selects from.
type Category string

const (
	CategoryNVR             Category = "nvr"
	CategoryCamera          Category = "camera"
	CategorySwitch          Category = "switch"
	CategoryRack            Category = "rack"
	CategoryPole            Category = "pole"
	CategoryWeatherproofBox Category = "weatherproof_box"
	CategoryCable           Category = "cable"
	CategoryConduit         Category = "conduit"
	CategoryWire            Category = "wire"
	CategoryUPS             Category = "ups"
	CategoryLCD             Category = "lcd"
)

// Categories lists every equipment category in template column order.
var Categories = []Category{
	CategoryNVR,
	CategoryCamera,
	CategorySwitch,
	CategoryRack,
	CategoryPole,
	CategoryWeatherproofBox,
	CategoryCable,
	CategoryConduit,
	CategoryWire,
	CategoryUPS,
	CategoryLCD,
}

var categoryCollections = map[Category]string{
	CategoryNVR:             "nvrs",
	CategoryCamera:          "cameras",
	CategorySwitch:          "switches",
	CategoryRack:            "racks",
	CategoryPole:            "poles",
	CategoryWeatherproofBox: "weatherproof-boxes",
	CategoryCable:           "cables",
	CategoryConduit:         "conduits",
	CategoryWire:            "wires",
	CategoryUPS:             "upss",
	CategoryLCD:             "lcds",
}

// Collection is the REST collection holding the category's catalog.
func (c Category) Collection() string {
	return categoryCollections[c]
}

// RefKey is the key a selection entry uses to reference the catalog item.
func (c Category) RefKey() string {
	return string(c)
}

// SelectionField is the BOQ attribute holding the category's selection list.
func (c Category) SelectionField() string {
	return string(c) + "_selection"
}

// CatalogItem is immutable reference data for one piece of equipment.
type CatalogItem struct {
	ID         int     `json:"id"`
	DocumentID string  `json:"documentId,omitempty"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
}

// UnmarshalJSON accepts prices sent as numbers, numeric strings or null.
func (c *CatalogItem) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID         int             `json:"id"`
		DocumentID string          `json:"documentId"`
		Name       string          `json:"name"`
		Price      json.RawMessage `json:"price"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	c.ID = raw.ID
	c.DocumentID = raw.DocumentID
	c.Name = raw.Name
	c.Price = flexFloat(raw.Price)
	return nil
}

// flexFloat decodes a JSON number or numeric string; anything else is 0.
func flexFloat(raw json.RawMessage) float64 {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0
	}
	if unq, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unq)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
