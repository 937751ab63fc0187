package sqlite

import (
	"context"
	"errors"

	"kudanforge/internal/store/model"

	"gorm.io/gorm"
)

type strategyRepo struct {
	db *gorm.DB
}

func (r *strategyRepo) List(ctx context.Context) ([]model.StrategyModel, error) {
	var rows []model.StrategyModel
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *strategyRepo) FindByID(ctx context.Context, id int64) (*model.StrategyModel, error) {
	var row model.StrategyModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *strategyRepo) UpdateMode(ctx context.Context, id int64, mode string) error {
	return r.db.WithContext(ctx).Model(&model.StrategyModel{}).
		Where("id = ?", id).
		Update("mode", mode).Error
}

func (r *strategyRepo) SetEnabled(ctx context.Context, id int64, enabled bool) error {
	return r.db.WithContext(ctx).Model(&model.StrategyModel{}).
		Where("id = ?", id).
		Update("enabled", enabled).Error
}
