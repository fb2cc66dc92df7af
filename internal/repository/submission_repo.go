package repository

import (
	"context"
	"time"

	"decryptrace/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SubmissionRepo is the append-only audit log of guesses
type SubmissionRepo interface {
	Create(ctx context.Context, sub *model.DecryptionSubmission) error
	HasCorrect(ctx context.Context, teamName, messageID string) (bool, error)
	DeleteByTeam(ctx context.Context, teamName string) error
	DeleteAll(ctx context.Context) error
}

type submissionRepo struct {
	collection *mongo.Collection
}

func NewSubmissionRepo(db *mongo.Database) SubmissionRepo {
	return &submissionRepo{
		collection: db.Collection(SubmissionCollection),
	}
}

func (r *submissionRepo) Create(ctx context.Context, sub *model.DecryptionSubmission) error {
	if sub.ID == "" {
		sub.ID = primitive.NewObjectID().Hex()
	}
	if sub.Timestamp.IsZero() {
		sub.Timestamp = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, sub)
	return err
}

func (r *submissionRepo) HasCorrect(ctx context.Context, teamName, messageID string) (bool, error) {
	n, err := r.collection.CountDocuments(ctx,
		bson.M{"teamName": teamName, "messageId": messageID, "isCorrect": true},
		options.Count().SetLimit(1),
	)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *submissionRepo) DeleteByTeam(ctx context.Context, teamName string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"teamName": teamName})
	return err
}

func (r *submissionRepo) DeleteAll(ctx context.Context) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{})
	return err
}
