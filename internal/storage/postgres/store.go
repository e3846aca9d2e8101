package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/mcoot/hintrush-go/internal/model"
	"github.com/mcoot/hintrush-go/internal/storage"
)

// Config holds PostgreSQL connection settings
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DefaultConfig returns sensible defaults for local development
func DefaultConfig() Config {
	return Config{
		Host:    "localhost",
		Port:    5432,
		User:    "hintrush",
		DBName:  "hintrush",
		SSLMode: "disable",
	}
}

// playerStatsRow is the GORM model for the global stats table
type playerStatsRow struct {
	ID          uint   `gorm:"primaryKey"`
	PlayerID    string `gorm:"uniqueIndex;not null;column:player_id"`
	DisplayName string `gorm:"not null"`
	RoundWins   int    `gorm:"not null;default:0"`
	MatchWins   int    `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (playerStatsRow) TableName() string {
	return "global_player_stats"
}

// Store is the PostgreSQL-backed durable stats store
type Store struct {
	db *gorm.DB
}

// New opens a connection, configures pooling, and migrates the schema
func New(cfg Config) (*Store, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&playerStatsRow{}); err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

// NewWithDB wraps an existing gorm handle (for testing)
func NewWithDB(db *gorm.DB) *Store {
	return &Store{db: db}
}

var _ storage.Store = (*Store)(nil)

// ApplyMatchDeltas upserts each player's increments inside a single
// transaction. The conflict clause adds to the stored counters rather
// than overwriting, so concurrent flushes from other rooms or processes
// cannot lose wins.
func (s *Store) ApplyMatchDeltas(ctx context.Context, deltas map[model.PlayerID]model.MatchDelta, names map[model.PlayerID]string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for id, d := range deltas {
			if d.IsZero() {
				continue
			}
			name := names[id]
			if name == "" {
				name = "Unknown"
			}
			row := playerStatsRow{
				PlayerID:    string(id),
				DisplayName: name,
				RoundWins:   d.RoundWins,
				MatchWins:   d.MatchWins,
			}
			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "player_id"}},
				DoUpdates: clause.Assignments(map[string]any{
					"round_wins":   gorm.Expr("global_player_stats.round_wins + ?", d.RoundWins),
					"match_wins":   gorm.Expr("global_player_stats.match_wins + ?", d.MatchWins),
					"display_name": name,
					"updated_at":   gorm.Expr("NOW()"),
				}),
			}).Create(&row).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) GetPlayerStats(ctx context.Context, id model.PlayerID) (*model.GlobalPlayerStats, error) {
	var row playerStatsRow
	err := s.db.WithContext(ctx).Where("player_id = ?", string(id)).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &model.GlobalPlayerStats{PlayerID: id}, nil
		}
		return nil, err
	}
	return &model.GlobalPlayerStats{
		PlayerID:    model.PlayerID(row.PlayerID),
		DisplayName: row.DisplayName,
		RoundWins:   row.RoundWins,
		MatchWins:   row.MatchWins,
	}, nil
}

func (s *Store) GetGlobalLeaderboard(ctx context.Context) ([]model.GlobalPlayerStats, error) {
	var rows []playerStatsRow
	err := s.db.WithContext(ctx).
		Order("match_wins DESC, round_wins DESC, display_name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := make([]model.GlobalPlayerStats, len(rows))
	for i, row := range rows {
		stats[i] = model.GlobalPlayerStats{
			PlayerID:    model.PlayerID(row.PlayerID),
			DisplayName: row.DisplayName,
			RoundWins:   row.RoundWins,
			MatchWins:   row.MatchWins,
		}
	}
	return stats, nil
}

// Close closes the underlying connection pool
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
