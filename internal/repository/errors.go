package repository

import (
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrStateConflict = errors.New("game state was modified concurrently")
	ErrPositionTaken = errors.New("winner position already taken")
	ErrAlreadyWinner = errors.New("team is already on the winner roster")
	ErrTeamNameTaken = errors.New("team name already taken")
	ErrEmailTaken    = errors.New("email already registered")
)

// duplicateOn reports whether err is a unique-index violation on the named index
func duplicateOn(err error, index string) bool {
	if !mongo.IsDuplicateKeyError(err) {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if duplicateIndex(e.Message) == index {
				return true
			}
		}
		return false
	}
	return duplicateIndex(err.Error()) == index
}

// duplicateIndex extracts the index name from an E11000 message. The key
// values after "dup key" are user data and never inspected.
func duplicateIndex(msg string) string {
	if i := strings.Index(msg, " dup key"); i >= 0 {
		msg = msg[:i]
	}
	_, after, ok := strings.Cut(msg, "index: ")
	if !ok {
		return ""
	}
	name, _, _ := strings.Cut(after, " ")
	return name
}
