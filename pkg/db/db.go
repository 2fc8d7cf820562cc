package db

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/settleline/internal/config"
	engine "github.com/smallbiznis/settleline/internal/engine/domain"
	invoicedomain "github.com/smallbiznis/settleline/internal/invoice/domain"
	journaldomain "github.com/smallbiznis/settleline/internal/journal/domain"
	recondomain "github.com/smallbiznis/settleline/internal/recon/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Module opens the run store and migrates its schema on startup.
var Module = fx.Options(
	fx.Provide(Open),
	fx.Invoke(Migrate),
)

// Dialect selects the gorm dialector for the configured database type.
// sqlite is the out-of-the-box default; postgres for shared deployments.
func Dialect(cfg config.Config) (gorm.Dialector, error) {
	switch cfg.DBType {
	case "sqlite":
		return sqlite.Open(cfg.DBPath), nil
	case "postgres":
		return postgres.Open(fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
			cfg.DBHost,
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBName,
			cfg.DBPort,
			cfg.DBSSLMode,
		)), nil
	default:
		return nil, fmt.Errorf("unsupported %s type", cfg.DBType)
	}
}

// Open connects to the configured run store.
func Open(cfg config.Config, log *zap.Logger) (*gorm.DB, error) {
	dialector, err := Dialect(cfg)
	if err != nil {
		return nil, err
	}
	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.DBType, err)
	}
	log.Named("db").Info("run store opened", zap.String("type", cfg.DBType))
	return conn, nil
}

// Migrate creates the run-store schema for every persisted domain model.
func Migrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&engine.Run{},
		&journaldomain.Line{},
		&invoicedomain.Line{},
		&invoicedomain.Payment{},
		&recondomain.SettlementFact{},
	)
}
