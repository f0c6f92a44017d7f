package domain

import "time"

// Server is one catalogue entry. Vote tallies live in their own namespace
// and are joined in at read time.
type Server struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	Description string    `json:"description"`
	Version     string    `json:"version"`
	Tags        []string  `json:"tags,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
