package db

import (
	"fmt"
	"log/slog"
	"time"

	"storefront/internal/config"
	"storefront/internal/domain/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect はDBに接続して *gorm.DB を返す。
func Connect(cfg config.Config) (*gorm.DB, error) {
	gcfg := &gorm.Config{NowFunc: func() time.Time { return time.Now().UTC() }}
	if cfg.IsProd() {
		gcfg.Logger = logger.Default.LogMode(logger.Warn)
	}

	gormDB, err := gorm.Open(postgres.Open(cfg.DSN()), gcfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return gormDB, nil
}

// Migrate は注文まわりのテーブルを作る。
func Migrate(gormDB *gorm.DB) error {
	if err := gormDB.AutoMigrate(
		&model.Order{},
		&model.OrderItem{},
		&model.AuditLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	slog.Info("database migrated")
	return nil
}
