package model

import "time"

// Participant is a registered student in the session. ID is the
// transport-assigned connection identity.
type Participant struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	JoinedAt time.Time `json:"joinedAt"`
}
