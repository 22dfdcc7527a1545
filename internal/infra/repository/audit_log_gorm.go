package repository

import (
	"context"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type auditLogGormRepository struct {
	db *gorm.DB
}

func NewAuditLogGormRepository(db *gorm.DB) repo.AuditLogRepository {
	return &auditLogGormRepository{db: db}
}

func (r *auditLogGormRepository) Create(ctx context.Context, log model.AuditLog) error {
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}
	if log.ResourceType == "" {
		log.ResourceType = model.AuditResourceOrder
	}
	return r.db.WithContext(ctx).Create(&log).Error
}

func (r *auditLogGormRepository) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	q := r.db.WithContext(ctx).Model(&model.AuditLog{})

	conds := []struct {
		ok    bool
		query string
		arg   any
	}{
		{filter.Action != nil, "action = ?", deref(filter.Action)},
		{filter.ResourceType != nil, "resource_type = ?", deref(filter.ResourceType)},
		{filter.ResourceID != nil, "resource_id = ?", deref(filter.ResourceID)},
		{filter.CreatedFrom != nil, "created_at >= ?", deref(filter.CreatedFrom)},
		{filter.CreatedTo != nil, "created_at <= ?", deref(filter.CreatedTo)},
	}
	for _, c := range conds {
		if c.ok {
			q = q.Where(c.query, c.arg)
		}
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	//新しい順
	logs := []model.AuditLog{}
	if err := q.Order("id DESC").Limit(limit).Offset(offset).Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
