package user

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserService interface {
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*User, error)
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
	// Summaries resolves ids to display summaries; unknown ids are left out.
	Summaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]Summary, error)
	DisplayNames(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error)
}

type UserServiceImpl struct {
	UserRepo UserRepository
}

func NewUserService(userRepo UserRepository) UserService {
	return &UserServiceImpl{UserRepo: userRepo}
}

func (s *UserServiceImpl) GetUserByID(ctx context.Context, id primitive.ObjectID) (*User, error) {
	return s.UserRepo.FindByID(ctx, id)
}

func (s *UserServiceImpl) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	_, err := s.UserRepo.FindByID(ctx, id)
	switch err {
	case nil:
		return true, nil
	case ErrUserNotFound:
		return false, nil
	default:
		return false, err
	}
}

func (s *UserServiceImpl) Summaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]Summary, error) {
	unique := make([]primitive.ObjectID, 0, len(ids))
	seen := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	users, err := s.UserRepo.FindByIDs(ctx, unique)
	if err != nil {
		return nil, err
	}

	out := make(map[primitive.ObjectID]Summary, len(users))
	for i := range users {
		out[users[i].ID] = users[i].Summary()
	}
	return out, nil
}

func (s *UserServiceImpl) DisplayNames(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	summaries, err := s.Summaries(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[primitive.ObjectID]string, len(summaries))
	for id, summary := range summaries {
		names[id] = summary.FullName
	}
	return names, nil
}
