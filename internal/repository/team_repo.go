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

type TeamRepo interface {
	Create(ctx context.Context, team *model.Team) error
	GetByName(ctx context.Context, teamName string) (*model.Team, error)
	List(ctx context.Context) ([]*model.Team, error)
	// SetBlocked updates the block flag and returns the updated team, or nil if absent
	SetBlocked(ctx context.Context, teamName string, blocked bool, reason string) (*model.Team, error)
	DeleteByName(ctx context.Context, teamName string) (bool, error)
}

type teamRepo struct {
	collection *mongo.Collection
}

func NewTeamRepo(db *mongo.Database) TeamRepo {
	return &teamRepo{
		collection: db.Collection(TeamCollection),
	}
}

func (r *teamRepo) Create(ctx context.Context, team *model.Team) error {
	if team.ID == "" {
		team.ID = primitive.NewObjectID().Hex()
	}
	if team.CreatedAt.IsZero() {
		team.CreatedAt = time.Now()
	}

	_, err := r.collection.InsertOne(ctx, team)
	switch {
	case duplicateOn(err, teamNameIndex):
		return ErrTeamNameTaken
	case duplicateOn(err, teamEmailIndex):
		return ErrEmailTaken
	}
	return err
}

func (r *teamRepo) GetByName(ctx context.Context, teamName string) (*model.Team, error) {
	var team model.Team
	err := r.collection.FindOne(ctx, bson.M{"teamName": teamName}).Decode(&team)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &team, nil
}

func (r *teamRepo) List(ctx context.Context) ([]*model.Team, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	teams := []*model.Team{}
	if err := cursor.All(ctx, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

func (r *teamRepo) SetBlocked(ctx context.Context, teamName string, blocked bool, reason string) (*model.Team, error) {
	var update bson.M
	if blocked {
		update = bson.M{"$set": bson.M{"isBlocked": true, "blockReason": reason}}
	} else {
		update = bson.M{"$set": bson.M{"isBlocked": false}, "$unset": bson.M{"blockReason": ""}}
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var team model.Team
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"teamName": teamName}, update, opts).Decode(&team)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &team, nil
}

func (r *teamRepo) DeleteByName(ctx context.Context, teamName string) (bool, error) {
	res, err := r.collection.DeleteOne(ctx, bson.M{"teamName": teamName})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
