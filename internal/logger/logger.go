package logger

import (
	"langlink-api/internal/config"
	"langlink-api/internal/database"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewLogger builds the console logger and tees warnings and above into the logs collection.
func NewLogger(lc fx.Lifecycle, cfg *config.Config, mongodb *database.MongodbDB) (*zap.Logger, error) {
	var zapConfig zap.Config
	if cfg.IsProduction() {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	// Caller function name ends up in the persisted record
	zapConfig.EncoderConfig.FunctionKey = "func"

	baseLogger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}

	dbWriter := NewDBLogWriter(NewMongoLogSink(mongodb.DB.Collection("logs")), cfg.AppId, 1000)
	lc.Append(fx.StopHook(func() {
		dbWriter.Close()
		_ = baseLogger.Sync()
	}))

	core := NewDBCore(baseLogger.Core(), dbWriter, zap.WarnLevel)
	return zap.New(core, zap.AddCaller()).With(zap.String("app", cfg.AppId)), nil
}
