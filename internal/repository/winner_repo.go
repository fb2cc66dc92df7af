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

// WinnerRepo persists the ranked roster. Insert relies on unique indexes on
// position and teamName; see EnsureIndexes.
type WinnerRepo interface {
	Count(ctx context.Context) (int, error)
	// Insert returns ErrPositionTaken or ErrAlreadyWinner when a concurrent admission won
	Insert(ctx context.Context, w *model.Winner) error
	ExistsForTeam(ctx context.Context, teamName string) (bool, error)
	List(ctx context.Context) ([]*model.Winner, error)
	DeleteAll(ctx context.Context) error
}

type winnerRepo struct {
	collection *mongo.Collection
}

func NewWinnerRepo(db *mongo.Database) WinnerRepo {
	return &winnerRepo{
		collection: db.Collection(WinnerCollection),
	}
}

func (r *winnerRepo) Count(ctx context.Context) (int, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{})
	return int(n), err
}

func (r *winnerRepo) Insert(ctx context.Context, w *model.Winner) error {
	if w.ID == "" {
		w.ID = primitive.NewObjectID().Hex()
	}
	if w.Timestamp.IsZero() {
		w.Timestamp = time.Now()
	}

	_, err := r.collection.InsertOne(ctx, w)
	switch {
	case duplicateOn(err, winnerPositionIndex):
		return ErrPositionTaken
	case duplicateOn(err, winnerTeamIndex):
		return ErrAlreadyWinner
	}
	return err
}

func (r *winnerRepo) ExistsForTeam(ctx context.Context, teamName string) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"teamName": teamName}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *winnerRepo) List(ctx context.Context) ([]*model.Winner, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "position", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	winners := []*model.Winner{}
	if err := cursor.All(ctx, &winners); err != nil {
		return nil, err
	}
	return winners, nil
}

func (r *winnerRepo) DeleteAll(ctx context.Context) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{})
	return err
}
