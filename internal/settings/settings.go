// Package settings persists key→JSON configuration values in the database.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/zulandar/ensemble/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Persisted keys.
const (
	KeyAgents      = "ai-friends-agents"
	KeyMessages    = "ai-friends-messages"
	KeyUserProfile = "ai-friends-user-profile"
	KeyAPIKey      = "ai-friends-api-key"
)

// Store reads and writes Setting rows.
type Store struct {
	db  *gorm.DB
	log zerolog.Logger
}

// Opts holds parameters for creating a Store.
type Opts struct {
	DB     *gorm.DB
	Logger *zerolog.Logger // optional; defaults to a no-op logger
}

// New creates a Store.
func New(opts Opts) (*Store, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("settings: db is required")
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	return &Store{db: opts.DB, log: log}, nil
}

// Get loads key into v. It returns false when the key is absent.
func (s *Store) Get(ctx context.Context, key string, v any) (bool, error) {
	raw, ok, err := s.Raw(ctx, key)
	if err != nil || !ok {
		return ok, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("settings: decode %s: %w", key, err)
	}
	return true, nil
}

// Raw returns the stored JSON for key.
func (s *Store) Raw(ctx context.Context, key string) ([]byte, bool, error) {
	var row models.Setting
	err := s.db.WithContext(ctx).Where("`key` = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("settings: get %s: %w", key, err)
	}
	return []byte(row.Value), true, nil
}

// Put writes v as the JSON value for key, replacing any existing value.
func (s *Store) Put(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("settings: encode %s: %w", key, err)
	}
	return s.PutRaw(ctx, key, data)
}

// PutRaw writes raw JSON for key without re-encoding it.
func (s *Store) PutRaw(ctx context.Context, key string, data []byte) error {
	row := models.Setting{Key: key, Value: datatypes.JSON(data)}
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row)
	if result.Error != nil {
		return fmt.Errorf("settings: put %s: %w", key, result.Error)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where("`key` = ?", key).Delete(&models.Setting{}).Error; err != nil {
		return fmt.Errorf("settings: delete %s: %w", key, err)
	}
	return nil
}

// Keys lists all stored keys in order.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	if err := s.db.WithContext(ctx).Model(&models.Setting{}).Order("`key`").Pluck("key", &keys).Error; err != nil {
		return nil, fmt.Errorf("settings: list keys: %w", err)
	}
	return keys, nil
}

// LoadOrInit reads key into a T. When the key is absent or its value does
// not parse, def is returned and immediately written back.
func LoadOrInit[T any](ctx context.Context, s *Store, key string, def T) (T, error) {
	raw, ok, err := s.Raw(ctx, key)
	if err != nil {
		return def, err
	}
	if ok {
		var v T
		err := json.Unmarshal(raw, &v)
		if err == nil {
			return v, nil
		}
		s.log.Warn().Err(err).Str("key", key).Msg("stored value unparsable, resetting to default")
	}
	if err := s.Put(ctx, key, def); err != nil {
		return def, err
	}
	return def, nil
}
