package model

import (
	"slices"
	"time"
)

// EncryptionType tags the cipher used to produce EncryptedText
type EncryptionType string

const (
	EncryptionCaesar  EncryptionType = "caesar"
	EncryptionBase64  EncryptionType = "base64"
	EncryptionMorse   EncryptionType = "morse"
	EncryptionBinary  EncryptionType = "binary"
	EncryptionReverse EncryptionType = "reverse"
	EncryptionMixed   EncryptionType = "mixed"
	EncryptionROT13   EncryptionType = "rot13"
	EncryptionHex     EncryptionType = "hex"
	EncryptionAtbash  EncryptionType = "atbash"
	EncryptionMD5     EncryptionType = "md5"
)

// Difficulty of a pool message
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// EncryptedMessage is one entry of the challenge pool
type EncryptedMessage struct {
	ID             string         `json:"id" bson:"_id"`
	OriginalText   string         `json:"originalText" bson:"originalText"`
	EncryptedText  string         `json:"encryptedText" bson:"encryptedText"`
	EncryptionType EncryptionType `json:"encryptionType" bson:"encryptionType"`
	Hint           string         `json:"hint" bson:"hint"`
	Difficulty     Difficulty     `json:"difficulty" bson:"difficulty"`
	Active         bool           `json:"active" bson:"active"`
	ActiveForTeams []string       `json:"activeForTeams" bson:"activeForTeams"`
	CreatedAt      time.Time      `json:"createdAt" bson:"createdAt"`
}

// AssignedTo reports whether teamName holds this message
func (m *EncryptedMessage) AssignedTo(teamName string) bool {
	return slices.Contains(m.ActiveForTeams, teamName)
}

// MessageView is the team-facing projection, without the plaintext
type MessageView struct {
	ID             string         `json:"id"`
	EncryptedText  string         `json:"encryptedText"`
	EncryptionType EncryptionType `json:"encryptionType"`
	Hint           string         `json:"hint"`
	Difficulty     Difficulty     `json:"difficulty"`
}

// View projects the message for a team
func (m *EncryptedMessage) View() *MessageView {
	return &MessageView{
		ID:             m.ID,
		EncryptedText:  m.EncryptedText,
		EncryptionType: m.EncryptionType,
		Hint:           m.Hint,
		Difficulty:     m.Difficulty,
	}
}

// ChallengeResponse is returned by GET /v1/encryption
type ChallengeResponse struct {
	Message *MessageView  `json:"message"`
	Game    *GameSnapshot `json:"game"`
}
