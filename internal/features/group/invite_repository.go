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

type InviteRepository interface {
	// Create inserts a pending invite; a second pending invite for the same pair yields
	// ErrDuplicatePending.
	Create(ctx context.Context, invite *Invite) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*Invite, error)
	FindByGroupAndUser(ctx context.Context, groupID, userID primitive.ObjectID) ([]Invite, error)
	FindPendingFor(ctx context.Context, userID primitive.ObjectID) ([]Invite, error)
	// Resolve moves a pending invite to status. Invites that are no longer pending yield
	// ErrAlreadyHandled.
	Resolve(ctx context.Context, id primitive.ObjectID, status InviteStatus, at time.Time) error
	// Reopen puts an accepted invite back to pending.
	Reopen(ctx context.Context, id primitive.ObjectID, at time.Time) error
	DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) error
	DeleteByGroup(ctx context.Context, groupID primitive.ObjectID) error
	PurgeResolvedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	EnsureIndexes(ctx context.Context) error
}

type InviteRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewInviteRepository(mongodb *database.MongodbDB) InviteRepository {
	return &InviteRepositoryImpl{
		Collection: mongodb.DB.Collection("group_invites"),
	}
}

func (r *InviteRepositoryImpl) Create(ctx context.Context, invite *Invite) error {
	if invite.ID.IsZero() {
		invite.ID = primitive.NewObjectID()
	}
	_, err := r.Collection.InsertOne(ctx, invite)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicatePending
	}
	return err
}

func (r *InviteRepositoryImpl) FindByID(ctx context.Context, id primitive.ObjectID) (*Invite, error) {
	var invite Invite
	err := r.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&invite)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrInviteNotFound
	}
	if err != nil {
		return nil, err
	}
	return &invite, nil
}

func (r *InviteRepositoryImpl) FindByGroupAndUser(ctx context.Context, groupID, userID primitive.ObjectID) ([]Invite, error) {
	return r.find(ctx, bson.M{"group": groupID, "for": userID})
}

func (r *InviteRepositoryImpl) FindPendingFor(ctx context.Context, userID primitive.ObjectID) ([]Invite, error) {
	return r.find(ctx, bson.M{"for": userID, "status": InviteStatusPending},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
}

func (r *InviteRepositoryImpl) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]Invite, error) {
	cursor, err := r.Collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	invites := []Invite{}
	if err := cursor.All(ctx, &invites); err != nil {
		return nil, err
	}
	return invites, nil
}

func (r *InviteRepositoryImpl) Resolve(ctx context.Context, id primitive.ObjectID, status InviteStatus, at time.Time) error {
	result, err := r.Collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": InviteStatusPending},
		bson.M{"$set": bson.M{"status": status, "updated_at": at}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrAlreadyHandled
	}
	return nil
}

func (r *InviteRepositoryImpl) Reopen(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	result, err := r.Collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": InviteStatusAccepted},
		bson.M{"$set": bson.M{"status": InviteStatusPending, "updated_at": at}},
	)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicatePending
	}
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrInviteNotFound
	}
	return nil
}

func (r *InviteRepositoryImpl) DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.Collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	return err
}

func (r *InviteRepositoryImpl) DeleteByGroup(ctx context.Context, groupID primitive.ObjectID) error {
	_, err := r.Collection.DeleteMany(ctx, bson.M{"group": groupID})
	return err
}

func (r *InviteRepositoryImpl) PurgeResolvedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.Collection.DeleteMany(ctx, bson.M{
		"status":     bson.M{"$ne": InviteStatusPending},
		"updated_at": bson.M{"$lt": cutoff},
	})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func (r *InviteRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "group", Value: 1}, {Key: "for", Value: 1}},
			Options: options.Index().
				SetName("pending_invite_unique").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": InviteStatusPending}),
		},
		{
			Keys:    bson.D{{Key: "for", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("for_status"),
		},
	})
	return err
}
