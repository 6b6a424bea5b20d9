package models

// Location is a named place players might be at
type Location struct {
	// Name is what a civilian sees on their card
	Name string

	// Category is the name of the category the location came from
	Category string
}

// Category is a named, ordered set of locations
type Category struct {
	Name      string
	Locations []Location

	// Aggregate marks the synthetic category built from every other category
	Aggregate bool
}

// Clone returns a copy of the category that shares no memory with the original
func (c Category) Clone() Category {
	clone := c
	clone.Locations = append([]Location(nil), c.Locations...)
	return clone
}
