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

// MessageRepo persists the challenge pool and its per-team assignments
type MessageRepo interface {
	Create(ctx context.Context, msg *model.EncryptedMessage) error
	GetByID(ctx context.Context, id string) (*model.EncryptedMessage, error)
	// List returns the pool in insertion order
	List(ctx context.Context) ([]*model.EncryptedMessage, error)
	Count(ctx context.Context) (int64, error)
	// FindByTeam returns every message whose assignment set holds teamName, oldest first
	FindByTeam(ctx context.Context, teamName string) ([]*model.EncryptedMessage, error)
	FindActive(ctx context.Context) (*model.EncryptedMessage, error)
	// AddTeam set-inserts teamName; it reports false when the team was already present
	AddTeam(ctx context.Context, id, teamName string) (bool, error)
	// RemoveTeam pulls teamName from one message, or from all when id is empty
	RemoveTeam(ctx context.Context, id, teamName string) error
	// SetActive moves the legacy global flag to id; it reports false if id does not exist
	SetActive(ctx context.Context, id string) (bool, error)
	// Reseed replaces the whole pool
	Reseed(ctx context.Context, msgs []*model.EncryptedMessage) error
}

type messageRepo struct {
	collection *mongo.Collection
}

func NewMessageRepo(db *mongo.Database) MessageRepo {
	return &messageRepo{
		collection: db.Collection(MessageCollection),
	}
}

func prepareMessage(msg *model.EncryptedMessage, now time.Time) {
	if msg.ID == "" {
		msg.ID = primitive.NewObjectID().Hex()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = now
	}
	// $addToSet fails on a null field
	if msg.ActiveForTeams == nil {
		msg.ActiveForTeams = []string{}
	}
}

func (r *messageRepo) Create(ctx context.Context, msg *model.EncryptedMessage) error {
	prepareMessage(msg, time.Now())
	_, err := r.collection.InsertOne(ctx, msg)
	return err
}

func (r *messageRepo) GetByID(ctx context.Context, id string) (*model.EncryptedMessage, error) {
	var msg model.EncryptedMessage
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&msg)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}

func (r *messageRepo) find(ctx context.Context, filter bson.M) ([]*model.EncryptedMessage, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	msgs := []*model.EncryptedMessage{}
	if err := cursor.All(ctx, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *messageRepo) List(ctx context.Context) ([]*model.EncryptedMessage, error) {
	return r.find(ctx, bson.M{})
}

func (r *messageRepo) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

func (r *messageRepo) FindByTeam(ctx context.Context, teamName string) ([]*model.EncryptedMessage, error) {
	return r.find(ctx, bson.M{"activeForTeams": teamName})
}

func (r *messageRepo) FindActive(ctx context.Context) (*model.EncryptedMessage, error) {
	var msg model.EncryptedMessage
	err := r.collection.FindOne(ctx, bson.M{"active": true}).Decode(&msg)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}

func (r *messageRepo) AddTeam(ctx context.Context, id, teamName string) (bool, error) {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$addToSet": bson.M{"activeForTeams": teamName}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (r *messageRepo) RemoveTeam(ctx context.Context, id, teamName string) error {
	update := bson.M{"$pull": bson.M{"activeForTeams": teamName}}
	if id != "" {
		_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
		return err
	}
	_, err := r.collection.UpdateMany(ctx, bson.M{"activeForTeams": teamName}, update)
	return err
}

func (r *messageRepo) SetActive(ctx context.Context, id string) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}

	if _, err := r.collection.UpdateMany(ctx, bson.M{"active": true}, bson.M{"$set": bson.M{"active": false}}); err != nil {
		return false, err
	}
	if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"active": true}}); err != nil {
		return false, err
	}
	return true, nil
}

func (r *messageRepo) Reseed(ctx context.Context, msgs []*model.EncryptedMessage) error {
	if _, err := r.collection.DeleteMany(ctx, bson.M{}); err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}

	now := time.Now()
	docs := make([]interface{}, 0, len(msgs))
	for _, msg := range msgs {
		// ObjectID counters keep List in slice order
		prepareMessage(msg, now)
		docs = append(docs, msg)
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return err
}
