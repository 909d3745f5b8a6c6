package models

import "fmt"

// Player represents one player in the directory.
type Player struct {
	ID         int    `db:"id" json:"id"`
	ExternalID string `db:"external_id" json:"external_id" validate:"required"`
	FirstName  string `db:"first_name" json:"first_name"`
	LastName   string `db:"last_name" json:"last_name"`
	Position   string `db:"position" json:"position"`
	Team       string `db:"team" json:"team"`
}

// FullName returns the display name.
func (p *Player) FullName() string {
	return fmt.Sprintf("%s %s", p.FirstName, p.LastName)
}
