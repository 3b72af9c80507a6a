package group

import (
	"context"
	"errors"
	"time"

	"langlink-api/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type GroupRepository interface {
	Create(ctx context.Context, group *Group) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*Group, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]Group, error)
	FindByMember(ctx context.Context, userID primitive.ObjectID) ([]Group, error)
	// Update writes group if its stored version still equals group.Version, then bumps
	// the version on both sides. A stale version yields ErrVersionConflict.
	Update(ctx context.Context, group *Group) error
	// Delete removes the group only at the given version.
	Delete(ctx context.Context, id primitive.ObjectID, version int64) error
	EnsureIndexes(ctx context.Context) error
}

type GroupRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewGroupRepository(mongodb *database.MongodbDB) GroupRepository {
	return &GroupRepositoryImpl{
		Collection: mongodb.DB.Collection("groups"),
	}
}

func (r *GroupRepositoryImpl) Create(ctx context.Context, group *Group) error {
	now := time.Now()
	if group.ID.IsZero() {
		group.ID = primitive.NewObjectID()
	}
	if group.CreatedAt.IsZero() {
		group.CreatedAt = now
	}
	group.UpdatedAt = now
	group.Version = 1

	_, err := r.Collection.InsertOne(ctx, group)
	return err
}

func (r *GroupRepositoryImpl) FindByID(ctx context.Context, id primitive.ObjectID) (*Group, error) {
	var group Group
	err := r.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&group)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrGroupNotFound
	}
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *GroupRepositoryImpl) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]Group, error) {
	if len(ids) == 0 {
		return []Group{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *GroupRepositoryImpl) FindByMember(ctx context.Context, userID primitive.ObjectID) ([]Group, error) {
	return r.find(ctx, bson.M{"members": userID}, options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}}))
}

func (r *GroupRepositoryImpl) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]Group, error) {
	cursor, err := r.Collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	groups := []Group{}
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *GroupRepositoryImpl) Update(ctx context.Context, group *Group) error {
	now := time.Now()
	filter := bson.M{"_id": group.ID, "version": group.Version}
	update := bson.M{
		"$set": bson.M{
			"name":       group.Name,
			"image":      group.Image,
			"members":    group.Members,
			"admins":     group.Admins,
			"updated_at": now,
		},
		"$inc": bson.M{"version": 1},
	}

	result, err := r.Collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrVersionConflict
	}
	group.Version++
	group.UpdatedAt = now
	return nil
}

func (r *GroupRepositoryImpl) Delete(ctx context.Context, id primitive.ObjectID, version int64) error {
	result, err := r.Collection.DeleteOne(ctx, bson.M{"_id": id, "version": version})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrVersionConflict
	}
	return nil
}

func (r *GroupRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "members", Value: 1}},
		Options: options.Index().SetName("members"),
	})
	return err
}
