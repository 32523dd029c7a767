package database

import (
	"fmt"
	"time"

	"github.com/zfogg/cadence/internal/config"
	"github.com/zfogg/cadence/internal/logger"
	"github.com/zfogg/cadence/internal/models"
	"github.com/zfogg/cadence/internal/telemetry"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB holds the database connection
var DB *gorm.DB

// Open opens a gorm connection for driver ("postgres" or "sqlite")
func Open(driver, dsn string, logMode gormlogger.LogLevel) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(logMode),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Initialize creates and configures the database connection
func Initialize(cfg config.Database, development bool) error {
	logMode := gormlogger.Warn
	if development {
		logMode = gormlogger.Info
	}

	dsn := cfg.URL
	if cfg.Driver == "sqlite" {
		dsn = cfg.Path
	}

	db, err := Open(cfg.Driver, dsn, logMode)
	if err != nil {
		return err
	}

	if err := db.Use(telemetry.GORMTracingPlugin()); err != nil {
		return fmt.Errorf("failed to register tracing plugin: %w", err)
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if cfg.Driver == "sqlite" {
		// sqlite serializes writers
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	DB = db
	logger.Log.Info("Database connected", zap.String("driver", cfg.Driver))

	return nil
}

// Migrate runs auto-migration for all models on db
func Migrate(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database not initialized")
	}

	err := db.AutoMigrate(
		&models.User{},
		&models.Song{},
		&models.SongView{},
		&models.SongLike{},
		&models.PlaylistEntry{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	logger.Log.Info("Database migrations completed")
	return nil
}

// createIndexes creates performance indexes gorm tags cannot express
func createIndexes(db *gorm.DB) error {
	stmts := []string{
		// Snapshot scan order
		"CREATE INDEX IF NOT EXISTS idx_songs_created_id ON songs (created_at, id)",
		// Recent history lookups
		"CREATE INDEX IF NOT EXISTS idx_song_views_user_recent ON song_views (user_id, id DESC)",
		"CREATE INDEX IF NOT EXISTS idx_playlist_entries_user_position ON playlist_entries (user_id, position)",
	}
	if db.Dialector.Name() == "postgres" {
		stmts = append(stmts, "CREATE INDEX IF NOT EXISTS idx_songs_genre ON songs USING GIN (genre)")
	}

	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database connection
func Close() error {
	if DB == nil {
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

// Health checks database connectivity
func Health() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Ping()
}
