package models

import (
	"context"

	"gorm.io/gorm"
)

// RecordStore is the persistence collaborator for records and matches. The
// reconciliation core (Reconcile, Summarize, BuildExportRows) never touches
// it; handlers orchestrate reads and writes around the pure functions, which
// keeps the core testable without a live database.
type RecordStore interface {
	ReplaceAllOfType(ctx context.Context, recordType RecordType, records []*GSTRecord) error
	FetchAllOfType(ctx context.Context, recordType RecordType) ([]*GSTRecord, error)
	CountOfType(ctx context.Context, recordType RecordType) (int64, error)
	DeleteAllOfType(ctx context.Context, recordType RecordType) (int64, error)
	CreateRecord(ctx context.Context, record *GSTRecord) error
	FetchAllRecords(ctx context.Context) ([]*GSTRecord, error)
	FetchRecordsByIds(ctx context.Context, ids []int) (map[int]*GSTRecord, error)
	DeleteAllRecords(ctx context.Context) (int64, error)

	ReplaceAllMatches(ctx context.Context, matches []*ReconciliationMatch) error
	FetchAllMatches(ctx context.Context, status *MatchStatus) ([]*ReconciliationMatch, error)
	CountByStatus(ctx context.Context, status MatchStatus) (int64, error)
	DeleteAllMatches(ctx context.Context) (int64, error)
}

const insertBatchSize = 500

type gormStore struct {
	db *gorm.DB
}

// NewGormStore wraps a gorm handle in the RecordStore contract.
func NewGormStore(db *gorm.DB) RecordStore {
	return &gormStore{db: db}
}

// ReplaceAllOfType implements the delete-then-insert upload semantics in one
// transaction so a failed upload never leaves a half-replaced record set.
func (s *gormStore) ReplaceAllOfType(ctx context.Context, recordType RecordType, records []*GSTRecord) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("record_type = ?", recordType).Delete(&GSTRecord{}).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		return tx.CreateInBatches(records, insertBatchSize).Error
	})
}

func (s *gormStore) FetchAllOfType(ctx context.Context, recordType RecordType) ([]*GSTRecord, error) {
	var records []*GSTRecord
	if err := s.db.WithContext(ctx).
		Where("record_type = ?", recordType).
		Order("id").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (s *gormStore) CountOfType(ctx context.Context, recordType RecordType) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&GSTRecord{}).
		Where("record_type = ?", recordType).Count(&count).Error
	return count, err
}

func (s *gormStore) DeleteAllOfType(ctx context.Context, recordType RecordType) (int64, error) {
	result := s.db.WithContext(ctx).Where("record_type = ?", recordType).Delete(&GSTRecord{})
	return result.RowsAffected, result.Error
}

func (s *gormStore) CreateRecord(ctx context.Context, record *GSTRecord) error {
	return s.db.WithContext(ctx).Create(record).Error
}

func (s *gormStore) FetchAllRecords(ctx context.Context) ([]*GSTRecord, error) {
	var records []*GSTRecord
	if err := s.db.WithContext(ctx).Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (s *gormStore) FetchRecordsByIds(ctx context.Context, ids []int) (map[int]*GSTRecord, error) {
	byId := make(map[int]*GSTRecord, len(ids))
	if len(ids) == 0 {
		return byId, nil
	}
	var records []*GSTRecord
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&records).Error; err != nil {
		return nil, err
	}
	for _, r := range records {
		byId[r.ID] = r
	}
	return byId, nil
}

func (s *gormStore) DeleteAllRecords(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).Where("1 = 1").Delete(&GSTRecord{})
	return result.RowsAffected, result.Error
}

// ReplaceAllMatches atomically swaps the persisted match set for the output of
// a reconciliation run.
func (s *gormStore) ReplaceAllMatches(ctx context.Context, matches []*ReconciliationMatch) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&ReconciliationMatch{}).Error; err != nil {
			return err
		}
		if len(matches) == 0 {
			return nil
		}
		return tx.CreateInBatches(matches, insertBatchSize).Error
	})
}

func (s *gormStore) FetchAllMatches(ctx context.Context, status *MatchStatus) ([]*ReconciliationMatch, error) {
	dbCtx := s.db.WithContext(ctx).Order("id")
	if status != nil {
		dbCtx = dbCtx.Where("status = ?", *status)
	}
	var matches []*ReconciliationMatch
	if err := dbCtx.Find(&matches).Error; err != nil {
		return nil, err
	}
	return matches, nil
}

func (s *gormStore) CountByStatus(ctx context.Context, status MatchStatus) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&ReconciliationMatch{}).
		Where("status = ?", status).Count(&count).Error
	return count, err
}

func (s *gormStore) DeleteAllMatches(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).Where("1 = 1").Delete(&ReconciliationMatch{})
	return result.RowsAffected, result.Error
}
