package repo

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/greenacre/farmcore/action"
	"github.com/greenacre/farmcore/farmstate"
	"github.com/greenacre/farmcore/save"
)

// FarmRecord is the GORM model backing a persisted farm document.
type FarmRecord struct {
	ID        int64     `gorm:"primaryKey"`
	Address   string    `gorm:"type:varchar(42);index;not null"`
	Session   string    `gorm:"type:char(64);not null;comment:hex-encoded 32-byte CAS token"`
	GameState string    `gorm:"type:json;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (FarmRecord) TableName() string { return "farms" }

// EventRecord is one appended action batch for a farm.
type EventRecord struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	FarmID    int64     `gorm:"index;not null"`
	Session   string    `gorm:"type:char(64);not null"`
	Actions   string    `gorm:"type:json;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (EventRecord) TableName() string { return "farm_events" }

// MySQLRepository implements save.Repository using GORM and MySQL. Session
// compare-and-swap is done with a conditional UPDATE ... WHERE so the
// check-and-write stays a single round trip instead of a separate SELECT.
type MySQLRepository struct {
	db *gorm.DB
}

// NewMySQLRepository opens a MySQL connection and migrates the farms table.
// dsn format: "user:password@tcp(host:port)/dbname?charset=utf8mb4&parseTime=True&loc=Local"
func NewMySQLRepository(dsn string) (*MySQLRepository, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("repo: connect mysql: %w", err)
	}
	if err := db.AutoMigrate(&FarmRecord{}); err != nil {
		return nil, fmt.Errorf("repo: migrate farms table: %w", err)
	}
	return &MySQLRepository{db: db}, nil
}

func (r *MySQLRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("repo: underlying db handle: %w", err)
	}
	return sqlDB.Close()
}

func (r *MySQLRepository) GetFarmByID(ctx context.Context, id int64) (*save.FarmDocument, error) {
	var rec FarmRecord
	result := r.db.WithContext(ctx).First(&rec, "id = ?", id)
	if result.Error == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if result.Error != nil {
		return nil, fmt.Errorf("repo: get farm %d: %w", id, result.Error)
	}
	var gameState farmstate.Document
	if err := json.Unmarshal([]byte(rec.GameState), &gameState); err != nil {
		return nil, fmt.Errorf("repo: decode farm %d game state: %w", id, err)
	}
	session, err := sessionFromHex(rec.Session)
	if err != nil {
		return nil, fmt.Errorf("repo: decode farm %d session: %w", id, err)
	}
	return &save.FarmDocument{
		ID:        rec.ID,
		Address:   common.HexToAddress(rec.Address),
		Session:   session,
		GameState: gameState,
	}, nil
}

func (r *MySQLRepository) UpdateGameState(ctx context.Context, doc save.FarmDocument, oldSession, newSession [32]byte) error {
	gameStateJSON, err := json.Marshal(doc.GameState)
	if err != nil {
		return fmt.Errorf("repo: encode farm %d game state: %w", doc.ID, err)
	}

	result := r.db.WithContext(ctx).Model(&FarmRecord{}).
		Where("id = ? AND session = ?", doc.ID, sessionToHex(oldSession)).
		Updates(map[string]any{
			"address":    doc.Address.Hex(),
			"session":    sessionToHex(newSession),
			"game_state": string(gameStateJSON),
		})
	if result.Error != nil {
		return fmt.Errorf("repo: update farm %d: %w", doc.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		exists := r.db.WithContext(ctx).Where("id = ?", doc.ID).First(&FarmRecord{}).Error == nil
		if !exists {
			rec := FarmRecord{ID: doc.ID, Address: doc.Address.Hex(), Session: sessionToHex(newSession), GameState: string(gameStateJSON)}
			if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
				return fmt.Errorf("repo: create farm %d: %w", doc.ID, err)
			}
			return nil
		}
		return save.ErrSessionConflict
	}
	return nil
}

// MySQLEventStore implements save.EventStore using GORM and MySQL.
type MySQLEventStore struct {
	db *gorm.DB
}

// NewMySQLEventStore opens a MySQL connection and migrates the farm_events
// table. It may share a DSN with NewMySQLRepository against the same
// database, or point at a dedicated audit database.
func NewMySQLEventStore(dsn string) (*MySQLEventStore, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("repo: connect mysql: %w", err)
	}
	if err := db.AutoMigrate(&EventRecord{}); err != nil {
		return nil, fmt.Errorf("repo: migrate farm_events table: %w", err)
	}
	return &MySQLEventStore{db: db}, nil
}

func (e *MySQLEventStore) Close() error {
	sqlDB, err := e.db.DB()
	if err != nil {
		return fmt.Errorf("repo: underlying db handle: %w", err)
	}
	return sqlDB.Close()
}

func (e *MySQLEventStore) Append(ctx context.Context, farmID int64, session [32]byte, actions []action.Action) error {
	data, err := json.Marshal(actions)
	if err != nil {
		return fmt.Errorf("repo: encode event batch for farm %d: %w", farmID, err)
	}
	rec := EventRecord{FarmID: farmID, Session: sessionToHex(session), Actions: string(data)}
	if err := e.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("repo: append event batch for farm %d: %w", farmID, err)
	}
	return nil
}

func sessionToHex(s [32]byte) string {
	return hex.EncodeToString(s[:])
}

func sessionFromHex(s string) ([32]byte, error) {
	var out [32]byte
	if s == "" {
		return out, nil
	}
	decoded, err := hex.DecodeString(s)
	if err != nil || len(decoded) != 32 {
		return out, fmt.Errorf("malformed session hex %q", s)
	}
	copy(out[:], decoded)
	return out, nil
}
