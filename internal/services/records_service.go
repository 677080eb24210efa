package services

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"radiator-erp/internal/apperr"
	"radiator-erp/internal/cache"
	"radiator-erp/internal/models"
	"radiator-erp/internal/repository"
)

// recordListCap bounds the unified list per entity type.
const recordListCap = 50

// recordHistoryLimit bounds the movement history in a detail drawer.
const recordHistoryLimit = 20

// RecordsService serves the reference-record screens. Table reads go through
// the redis cache; writes invalidate the touched type.
type RecordsService interface {
	ListAll(ctx context.Context) ([]*models.RecordListItem, error)
	Dashboard(ctx context.Context) (*models.Dashboard, error)
	ListByType(ctx context.Context, recordType string) ([]map[string]any, error)
	Create(ctx context.Context, recordType string, fields map[string]any) (int, error)
	Update(ctx context.Context, recordType string, id int, fields map[string]any) error
	Delete(ctx context.Context, recordType string, id int) error
	Detail(ctx context.Context, recordType string, id int) (*models.RecordDetail, error)
}

type recordsService struct {
	records  repository.RecordsRepository
	refCache *cache.ReferenceCache
	logger   *zap.Logger
}

func NewRecordsService(records repository.RecordsRepository, refCache *cache.ReferenceCache, logger *zap.Logger) RecordsService {
	return &recordsService{records: records, refCache: refCache, logger: logger}
}

func (s *recordsService) ListAll(ctx context.Context) ([]*models.RecordListItem, error) {
	items, err := s.records.ListAll(ctx, recordListCap)
	if err != nil {
		return nil, apperr.Internal("failed to list records", err)
	}
	return items, nil
}

func (s *recordsService) Dashboard(ctx context.Context) (*models.Dashboard, error) {
	dashboard, err := s.records.Dashboard(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to load dashboard", err)
	}
	return dashboard, nil
}

func (s *recordsService) ListByType(ctx context.Context, recordType string) ([]map[string]any, error) {
	if !repository.RecordTypeExists(recordType) {
		return nil, apperr.Validation("unknown record type %q", recordType)
	}

	var cached []map[string]any
	if s.refCache.Get(ctx, recordType, &cached) {
		return cached, nil
	}

	rows, err := s.records.ListByType(ctx, recordType)
	if err != nil {
		return nil, apperr.Internal("failed to list records", err)
	}
	s.refCache.Set(ctx, recordType, rows)
	return rows, nil
}

func (s *recordsService) Create(ctx context.Context, recordType string, fields map[string]any) (int, error) {
	if !repository.RecordTypeExists(recordType) {
		return 0, apperr.Validation("unknown record type %q", recordType)
	}

	id, err := s.records.Create(ctx, recordType, fields)
	if err != nil {
		return 0, apperr.Internal("failed to create record", err)
	}

	s.refCache.Invalidate(ctx, recordType)
	s.logger.Info("✅ record created",
		zap.String("operation", "create_record"),
		zap.String("type", recordType), zap.Int("id", id))
	return id, nil
}

func (s *recordsService) Update(ctx context.Context, recordType string, id int, fields map[string]any) error {
	if !repository.RecordTypeExists(recordType) {
		return apperr.Validation("unknown record type %q", recordType)
	}

	if err := s.records.Update(ctx, recordType, id, fields); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("%s record %d not found", recordType, id)
		}
		return apperr.Internal("failed to update record", err)
	}

	s.refCache.Invalidate(ctx, recordType)
	s.logger.Info("✅ record updated",
		zap.String("operation", "update_record"),
		zap.String("type", recordType), zap.Int("id", id))
	return nil
}

func (s *recordsService) Delete(ctx context.Context, recordType string, id int) error {
	if !repository.RecordTypeExists(recordType) {
		return apperr.Validation("unknown record type %q", recordType)
	}

	if err := s.records.Delete(ctx, recordType, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("%s record %d not found", recordType, id)
		}
		return apperr.Internal("failed to delete record", err)
	}

	s.refCache.Invalidate(ctx, recordType)
	s.logger.Info("✅ record deleted",
		zap.String("operation", "delete_record"),
		zap.String("type", recordType), zap.Int("id", id))
	return nil
}

func (s *recordsService) Detail(ctx context.Context, recordType string, id int) (*models.RecordDetail, error) {
	if !repository.RecordTypeExists(recordType) {
		return nil, apperr.Validation("unknown record type %q", recordType)
	}

	detail, err := s.records.Detail(ctx, recordType, id, recordHistoryLimit)
	if err != nil {
		return nil, apperr.Internal("failed to load record", err)
	}
	if detail == nil {
		return nil, apperr.NotFound("%s record %d not found", recordType, id)
	}
	return detail, nil
}
