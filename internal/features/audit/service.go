package audit

import (
	"context"
	"time"

	common_models "langlink-api/internal/common/models"
	"langlink-api/pkg/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserFinder resolves actor display names.
type UserFinder interface {
	DisplayNames(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error)
}

type AuditService interface {
	LogChange(ctx context.Context, action common_models.AuditAction, module string, recordID string, changes map[string]common_models.Change) error
	ListLogs(ctx context.Context, module, recordID string, page, limit int64) ([]common_models.AuditLog, error)
}

type AuditServiceImpl struct {
	Repo     AuditRepository
	UserRepo UserFinder
}

func NewAuditService(repo AuditRepository, userRepo UserFinder) AuditService {
	return &AuditServiceImpl{
		Repo:     repo,
		UserRepo: userRepo,
	}
}

func (s *AuditServiceImpl) LogChange(ctx context.Context, action common_models.AuditAction, module string, recordID string, changes map[string]common_models.Change) error {
	actorID := "system"
	if claims, ok := utils.ClaimsFromContext(ctx); ok {
		actorID = claims.UserID
	}

	log := common_models.AuditLog{
		ID:        primitive.NewObjectID(),
		Action:    action,
		Module:    module,
		RecordID:  recordID,
		ActorID:   actorID,
		Changes:   changes,
		Timestamp: time.Now(),
	}

	return s.Repo.Create(ctx, log)
}

func (s *AuditServiceImpl) ListLogs(ctx context.Context, module, recordID string, page, limit int64) ([]common_models.AuditLog, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	logs, err := s.Repo.List(ctx, module, recordID, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	actorIDs := make([]primitive.ObjectID, 0, len(logs))
	for _, log := range logs {
		if oid, err := primitive.ObjectIDFromHex(log.ActorID); err == nil {
			actorIDs = append(actorIDs, oid)
		}
	}

	names := map[primitive.ObjectID]string{}
	if len(actorIDs) > 0 {
		if resolved, err := s.UserRepo.DisplayNames(ctx, actorIDs); err == nil {
			names = resolved
		}
	}

	for i, log := range logs {
		oid, err := primitive.ObjectIDFromHex(log.ActorID)
		switch {
		case err != nil:
			logs[i].ActorName = "System"
		case names[oid] != "":
			logs[i].ActorName = names[oid]
		default:
			logs[i].ActorName = "Unknown User"
		}
	}

	return logs, nil
}
