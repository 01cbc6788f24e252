package main

import (
	"log"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"oilcycle-platform/pkg/config"
	"oilcycle-platform/pkg/db"
	"oilcycle-platform/pkg/logger"
	"oilcycle-platform/pkg/minio"
	"oilcycle-platform/pkg/redis"
	"oilcycle-platform/pkg/server"
	"oilcycle-platform/services/center"
	"oilcycle-platform/services/disposal"
	"oilcycle-platform/services/identity"
	"oilcycle-platform/services/ledger"
	"oilcycle-platform/services/redemption"
	"oilcycle-platform/services/reward"
	"oilcycle-platform/services/upload"
)

func main() {
	opts := []fx.Option{
		config.Module,
		logger.Module,
		db.Module,
		redis.Module,
		minio.Client,
		fx.Provide(provideSnowflakeNode),
		fx.Invoke(autoMigrate),
		server.ProvideHTTPServer,
		identity.Module,
		center.Module,
		disposal.Module,
		reward.Module,
		ledger.Module,
		redemption.Module,
		upload.Module,
		fxLogger,
	}

	if err := fx.ValidateApp(opts...); err != nil {
		log.Fatalf("fx validation failed: %v", err)
	}

	app := fx.New(opts...)

	app.Run()
}

var fxLogger = fx.WithLogger(func(cfg *config.Config, logger *zap.Logger) fxevent.Logger {
	return fxevent.NopLogger
})

func provideSnowflakeNode() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&identity.User{},
		&center.DisposalCenter{},
		&disposal.Disposal{},
		&reward.Reward{},
		&redemption.Redemption{},
	)
}
