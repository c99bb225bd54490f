// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

// Template is a base meme image with a known number of text slots.
//
// Templates are immutable once fetched: the catalog source creates them,
// nothing mutates them, and they're discarded wholesale when the catalog
// refreshes. Identity is ID.
//
// SlotCount comes from the upstream API's box_count field — how many text
// boxes the template is traditionally captioned with (1–4 in practice).
type Template struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ImageURL  string `json:"imageUrl"`
	Category  string `json:"category"`
	SlotCount int    `json:"slotCount"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}
