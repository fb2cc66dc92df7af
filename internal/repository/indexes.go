package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names
const (
	GameStateCollection  = "gamestates"
	TeamCollection       = "teams"
	MessageCollection    = "encryptedmessages"
	SubmissionCollection = "decryptionsubmissions"
	WinnerCollection     = "winners"
)

// Index names referenced when translating duplicate-key errors
const (
	winnerPositionIndex = "position_1"
	winnerTeamIndex     = "teamName_1"
	teamNameIndex       = "teamName_1"
	teamEmailIndex      = "email_1"
)

type indexSpec struct {
	collection string
	keys       bson.D
	unique     bool
}

var indexes = []indexSpec{
	{WinnerCollection, bson.D{{Key: "position", Value: 1}}, true},
	{WinnerCollection, bson.D{{Key: "teamName", Value: 1}}, true},
	{TeamCollection, bson.D{{Key: "teamName", Value: 1}}, true},
	{TeamCollection, bson.D{{Key: "email", Value: 1}}, true},
	{MessageCollection, bson.D{{Key: "activeForTeams", Value: 1}}, false},
	{SubmissionCollection, bson.D{
		{Key: "teamName", Value: 1},
		{Key: "messageId", Value: 1},
		{Key: "isCorrect", Value: 1},
	}, false},
}

// EnsureIndexes creates the indexes the race guards depend on. The unique
// winner position index is what makes concurrent admission safe, so failures
// here are fatal.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for _, spec := range indexes {
		opts := options.Index()
		if spec.unique {
			opts.SetUnique(true)
		}
		_, err := db.Collection(spec.collection).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    spec.keys,
			Options: opts,
		})
		if err != nil {
			return fmt.Errorf("failed to create index on %s: %w", spec.collection, err)
		}
	}
	return nil
}
