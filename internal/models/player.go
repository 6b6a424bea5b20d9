package models

// UnknownLocation is the location shown on a spy's card
const UnknownLocation = "Unknown"

// Role names a player's side in a round
type Role string

const (
	RoleSpy      Role = "Spy"
	RoleCivilian Role = "Civilian"
)

// Player represents a seat in a round
type Player struct {
	// ID is the 1-based seat number, never reused within a round
	ID int

	// IsSpy indicates the player does not know the location
	IsSpy bool

	// Location is the round location for civilians and UnknownLocation for spies
	Location string
}

// Role returns the player's role
func (p *Player) Role() Role {
	if p.IsSpy {
		return RoleSpy
	}
	return RoleCivilian
}

// Clone returns a copy of the player
func (p *Player) Clone() *Player {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}
