package model

import "time"

// Winner is a roster entry. Positions are 1-based and unique.
type Winner struct {
	ID        string    `json:"id" bson:"_id"`
	TeamName  string    `json:"teamName" bson:"teamName"`
	Position  int       `json:"position" bson:"position"`
	MessageID string    `json:"messageId,omitempty" bson:"messageId,omitempty"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}
