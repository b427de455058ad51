package persistence

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/erp/storefront/internal/domain/shared"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KVEntry is one row of the kv_entries table
type KVEntry struct {
	Key       string     `gorm:"column:entry_key;primaryKey;size:255"`
	Value     []byte     `gorm:"not null"`
	ExpiresAt *time.Time `gorm:"index"`
	UpdatedAt time.Time
}

// TableName implements gorm's Tabler
func (KVEntry) TableName() string {
	return "kv_entries"
}

// KVStore implements shared.KVStore on a SQL table.
// Expired rows are invisible to Get and removed by PurgeExpired.
// Timestamps are stored in UTC so sqlite's text comparison stays ordered.
type KVStore struct {
	db        *Database
	keyPrefix string
	now       func() time.Time
	logger    *zap.Logger
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewKVStore migrates the kv_entries table and returns the store.
// A positive purgeInterval starts a background PurgeExpired loop that Close stops.
func NewKVStore(db *Database, keyPrefix string, purgeInterval time.Duration, logger *zap.Logger) (*KVStore, error) {
	if err := db.DB.AutoMigrate(&KVEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate kv_entries: %w", err)
	}

	s := &KVStore{
		db:        db,
		keyPrefix: keyPrefix,
		now:       time.Now,
		logger:    logger,
		stopChan:  make(chan struct{}),
	}
	if purgeInterval > 0 {
		s.wg.Add(1)
		go s.purgeLoop(purgeInterval)
	}
	return s, nil
}

func (s *KVStore) purgeLoop(interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			n, err := s.PurgeExpired(ctx)
			cancel()
			if err != nil {
				s.logger.Warn("failed to purge expired kv entries", zap.Error(err))
			} else if n > 0 {
				s.logger.Debug("purged expired kv entries", zap.Int64("count", n))
			}
		}
	}
}

func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	var entry KVEntry
	err := s.db.DB.WithContext(ctx).
		Where("entry_key = ?", s.keyPrefix+key).
		Where("expires_at IS NULL OR expires_at > ?", s.now().UTC()).
		Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("kv get %s: %w", key, err)
	}
	return entry.Value, nil
}

func (s *KVStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	now := s.now().UTC()
	entry := KVEntry{Key: s.keyPrefix + key, Value: value, UpdatedAt: now}
	if ttl > 0 {
		expires := now.Add(ttl)
		entry.ExpiresAt = &expires
	}

	err := s.db.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("kv set %s: %w", key, err)
	}
	return nil
}

func (s *KVStore) Delete(ctx context.Context, key string) error {
	err := s.db.DB.WithContext(ctx).Where("entry_key = ?", s.keyPrefix+key).Delete(&KVEntry{}).Error
	if err != nil {
		return fmt.Errorf("kv delete %s: %w", key, err)
	}
	return nil
}

// PurgeExpired deletes expired rows and returns how many were removed
func (s *KVStore) PurgeExpired(ctx context.Context) (int64, error) {
	res := s.db.DB.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", s.now().UTC()).
		Delete(&KVEntry{})
	return res.RowsAffected, res.Error
}

func (s *KVStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close stops the purge loop and closes the connection. Safe to call multiple times.
func (s *KVStore) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

var _ shared.KVStore = (*KVStore)(nil)
