package sqlite

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"kudanforge/internal/store"
	"kudanforge/internal/store/model"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SqliteStore implements store.Store on a single sqlite file. WAL mode keeps
// dashboard reads safe while a cycle is appending to the ledgers.
type SqliteStore struct {
	db *gorm.DB
}

var _ store.Store = (*SqliteStore)(nil)

func NewSqliteStore(path string) (*SqliteStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, err
	}
	return newSqliteStore(db)
}

// NewSqliteStoreFromDB wraps an existing gorm handle (tests).
func NewSqliteStoreFromDB(db *gorm.DB) (*SqliteStore, error) {
	if db == nil {
		return nil, fmt.Errorf("gorm db cannot be nil")
	}
	return newSqliteStore(db)
}

func newSqliteStore(db *gorm.DB) (*SqliteStore, error) {
	models := []interface{}{
		&model.StateModel{},
		&model.StrategyModel{},
		&model.RunModel{},
		&model.OrderModel{},
		&model.RiskEventModel{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		return nil, err
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(2)
		sqlDB.SetMaxIdleConns(2)
	}
	s := &SqliteStore{db: db}
	if err := s.seedDefaults(); err != nil {
		return nil, err
	}
	return s, nil
}

// seedDefaults installs the control flags and the stock strategy roster on
// first boot. Existing rows are left untouched.
func (s *SqliteStore) seedDefaults() error {
	now := time.Now().UTC()
	defaults := map[string]string{
		model.KeyArmedLive:      "false",
		model.KeyKillSwitch:     "false",
		model.KeyPaused:         "false",
		model.KeyPeakEquity:     "100000",
		model.KeyDayStartEquity: "100000",
	}
	for key, value := range defaults {
		row := model.StateModel{Key: key, Value: value, UpdatedAt: now}
		if err := s.db.Where(model.StateModel{Key: key}).FirstOrCreate(&row).Error; err != nil {
			return err
		}
	}

	var count int64
	if err := s.db.Model(&model.StrategyModel{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	params := datatypes.JSON([]byte(`{"symbols":["BTCUSD","ETHUSD"]}`))
	seed := []model.StrategyModel{
		{Name: "momentum", Params: params, Enabled: true, Mode: model.ModePaper, Version: "v1"},
		{Name: "mean_reversion", Params: params, Enabled: true, Mode: model.ModePaper, Version: "v1"},
	}
	return s.db.Create(&seed).Error
}

func (s *SqliteStore) State() store.StateRepository          { return &stateRepo{db: s.db} }
func (s *SqliteStore) Strategies() store.StrategyRepository  { return &strategyRepo{db: s.db} }
func (s *SqliteStore) Runs() store.RunRepository             { return &runRepo{db: s.db} }
func (s *SqliteStore) Orders() store.OrderRepository         { return &orderRepo{db: s.db} }
func (s *SqliteStore) RiskEvents() store.RiskEventRepository { return &riskEventRepo{db: s.db} }

func (s *SqliteStore) Close() error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
