package model

import "time"

// Team is one enrolled competitor
type Team struct {
	ID          string    `json:"id" bson:"_id"`
	TeamName    string    `json:"teamName" bson:"teamName"`
	Email       string    `json:"email" bson:"email"`
	IsAdmin     bool      `json:"isAdmin" bson:"isAdmin"`
	IsBlocked   bool      `json:"isBlocked" bson:"isBlocked"`
	BlockReason string    `json:"blockReason,omitempty" bson:"blockReason,omitempty"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}

// EnrollRequest is the body of POST /v1/teams/enroll
type EnrollRequest struct {
	TeamName string `json:"teamName"`
	Email    string `json:"email"`
}

// EnrollResponse returns the new team and its token
type EnrollResponse struct {
	Team  *Team  `json:"team"`
	Token string `json:"token"`
}

// TeamStatus answers an enrollment check
type TeamStatus struct {
	TeamName    string `json:"teamName"`
	Enrolled    bool   `json:"enrolled"`
	IsBlocked   bool   `json:"isBlocked"`
	BlockReason string `json:"blockReason,omitempty"`
}

// BlockRequest is the body of the admin block endpoint
type BlockRequest struct {
	Reason string `json:"reason"`
}
