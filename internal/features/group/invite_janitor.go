package group

import (
	"context"
	"time"

	"langlink-api/internal/config"

	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// InviteJanitor periodically deletes accepted and declined invites past retention.
// Pending invites are never touched.
type InviteJanitor struct {
	service GroupService
	config  *config.Config
	log     *zap.Logger
	cron    *cron.Cron
}

func NewInviteJanitor(service GroupService, cfg *config.Config, log *zap.Logger) *InviteJanitor {
	return &InviteJanitor{
		service: service,
		config:  cfg,
		log:     log.Named("invite-janitor"),
		cron:    cron.New(),
	}
}

// RegisterInviteJanitor schedules the janitor for the lifetime of the app.
func RegisterInviteJanitor(lc fx.Lifecycle, janitor *InviteJanitor) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return janitor.Start()
		},
		OnStop: func(ctx context.Context) error {
			janitor.Stop(ctx)
			return nil
		},
	})
}

func (j *InviteJanitor) Start() error {
	if _, err := j.cron.AddFunc(j.config.InviteJanitorSchedule, j.Run); err != nil {
		return err
	}
	j.cron.Start()
	j.log.Info("invite janitor scheduled", zap.String("schedule", j.config.InviteJanitorSchedule))
	return nil
}

func (j *InviteJanitor) Stop(ctx context.Context) {
	select {
	case <-j.cron.Stop().Done():
	case <-ctx.Done():
	}
}

func (j *InviteJanitor) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	deleted, err := j.service.PurgeResolvedInvites(ctx, j.config.InviteRetention)
	if err != nil {
		j.log.Error("failed to purge resolved invites", zap.Error(err))
		return
	}
	if deleted > 0 {
		j.log.Info("purged resolved invites", zap.Int64("count", deleted))
	}
}
