package repository

import (
	"context"
	"time"

	"decryptrace/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GameStateRepo persists the singleton game state
type GameStateRepo interface {
	// Get returns the state, creating the default document on first access
	Get(ctx context.Context) (*model.GameState, error)
	// CompareAndSwap writes next only if the stored version still equals expected
	CompareAndSwap(ctx context.Context, expected int64, next *model.GameState) error
	// Reset overwrites the state with defaults and bumps the version
	Reset(ctx context.Context) error
}

type gameStateRepo struct {
	collection *mongo.Collection
}

// NewGameStateRepo creates a new game state repository
func NewGameStateRepo(db *mongo.Database) GameStateRepo {
	return &gameStateRepo{
		collection: db.Collection(GameStateCollection),
	}
}

func (r *gameStateRepo) Get(ctx context.Context) (*model.GameState, error) {
	def := model.DefaultGameState()
	update := bson.M{"$setOnInsert": bson.M{
		"active":              def.Active,
		"isPaused":            def.IsPaused,
		"startTime":           nil,
		"endTime":             nil,
		"pausedTimeRemaining": def.PausedTimeRemaining,
		"version":             int64(0),
		"updatedAt":           time.Now(),
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var state model.GameState
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": model.GameStateID}, update, opts).Decode(&state)
	if mongo.IsDuplicateKeyError(err) {
		// lost the insert race; the document exists now
		err = r.collection.FindOne(ctx, bson.M{"_id": model.GameStateID}).Decode(&state)
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

func (r *gameStateRepo) CompareAndSwap(ctx context.Context, expected int64, next *model.GameState) error {
	doc := next.Clone()
	doc.ID = model.GameStateID
	doc.Version = expected + 1
	doc.UpdatedAt = time.Now()

	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": model.GameStateID, "version": expected}, doc)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrStateConflict
	}
	next.Version = doc.Version
	next.UpdatedAt = doc.UpdatedAt
	return nil
}

func (r *gameStateRepo) Reset(ctx context.Context) error {
	update := bson.M{
		"$set": bson.M{
			"active":              false,
			"isPaused":            false,
			"startTime":           nil,
			"endTime":             nil,
			"pausedTimeRemaining": time.Duration(0),
			"updatedAt":           time.Now(),
		},
		"$inc": bson.M{"version": int64(1)},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": model.GameStateID}, update, options.Update().SetUpsert(true))
	return err
}
