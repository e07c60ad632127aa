package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MegaGrindStone/insighta-web-ui/internal/models"
	bolt "go.etcd.io/bbolt"
)

var (
	settingsBucket = []byte("settings")
	settingsKey    = []byte("current")
)

// BoltDB persists the user's chat settings in a BoltDB file so the sidebar survives a restart of
// the server. The transcript is not stored.
type BoltDB struct {
	db *bolt.DB
}

// NewBoltDB opens the database at path, creating the file with 0600 permissions and the settings
// bucket when they don't exist yet.
func NewBoltDB(path string) (BoltDB, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return BoltDB{}, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(settingsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return BoltDB{}, fmt.Errorf("failed to create settings bucket: %w", err)
	}

	return BoltDB{db: db}, nil
}

// Settings returns the stored settings, or models.ErrNoSettings if none were saved.
func (b BoltDB) Settings(context.Context) (models.ChatSettings, error) {
	var settings models.ChatSettings
	err := b.db.View(func(tx *bolt.Tx) error {
		bk := tx.Bucket(settingsBucket)
		if bk == nil {
			return models.ErrNoSettings
		}

		v := bk.Get(settingsKey)
		if v == nil {
			return models.ErrNoSettings
		}

		if err := json.Unmarshal(v, &settings); err != nil {
			return fmt.Errorf("failed to unmarshal settings: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.ChatSettings{}, err
	}
	return settings, nil
}

// SaveSettings validates settings and replaces the stored value.
func (b BoltDB) SaveSettings(_ context.Context, settings models.ChatSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	v, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bk, err := tx.CreateBucketIfNotExists(settingsBucket)
		if err != nil {
			return err
		}
		return bk.Put(settingsKey, v)
	})
}

// Close releases the database file.
func (b BoltDB) Close() error {
	return b.db.Close()
}
