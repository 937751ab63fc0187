package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"kudanforge/internal/store/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func marshalJSON(v any) (datatypes.JSON, error) {
	if v == nil {
		return datatypes.JSON([]byte("null")), nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

type runRepo struct {
	db *gorm.DB
}

func (r *runRepo) Append(ctx context.Context, status, summary string, details any) (int64, error) {
	raw, err := marshalJSON(details)
	if err != nil {
		return 0, err
	}
	row := model.RunModel{
		CreatedAt: time.Now().UTC(),
		Status:    status,
		Summary:   summary,
		Details:   raw,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return 0, err
	}
	return row.ID, nil
}

func (r *runRepo) ListRecent(ctx context.Context, limit int) ([]model.RunModel, error) {
	var rows []model.RunModel
	if limit <= 0 {
		limit = 50
	}
	if err := r.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

type orderRepo struct {
	db *gorm.DB
}

func (r *orderRepo) Append(ctx context.Context, rec *model.OrderModel) error {
	if rec == nil {
		return errors.New("order record cannot be nil")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *orderRepo) ListRecent(ctx context.Context, limit int) ([]model.OrderModel, error) {
	var rows []model.OrderModel
	if limit <= 0 {
		limit = 100
	}
	if err := r.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *orderRepo) CountSince(ctx context.Context, window time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-window)
	var count int64
	err := r.db.WithContext(ctx).Model(&model.OrderModel{}).
		Where("created_at >= ?", cutoff).
		Count(&count).Error
	return int(count), err
}

type riskEventRepo struct {
	db *gorm.DB
}

func (r *riskEventRepo) Append(ctx context.Context, level, reason string, eventContext any) error {
	raw, err := marshalJSON(eventContext)
	if err != nil {
		return err
	}
	row := model.RiskEventModel{
		CreatedAt: time.Now().UTC(),
		Level:     level,
		Reason:    reason,
		Context:   raw,
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *riskEventRepo) ListRecent(ctx context.Context, limit int) ([]model.RiskEventModel, error) {
	var rows []model.RiskEventModel
	if limit <= 0 {
		limit = 50
	}
	if err := r.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
