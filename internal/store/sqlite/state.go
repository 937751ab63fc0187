package sqlite

import (
	"context"
	"errors"
	"time"

	"kudanforge/internal/store/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type stateRepo struct {
	db *gorm.DB
}

func (r *stateRepo) Get(ctx context.Context, key, def string) (string, error) {
	var row model.StateModel
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return def, nil
	}
	if err != nil {
		return def, err
	}
	return row.Value, nil
}

func (r *stateRepo) Set(ctx context.Context, key, value string) error {
	row := model.StateModel{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		UpdateAll: true,
	}).Create(&row).Error
}
