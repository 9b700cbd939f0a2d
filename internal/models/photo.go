package models

import "time"

// Publication records the outcome of one publish cycle.
type Publication struct {
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"publishedAt"`
}
