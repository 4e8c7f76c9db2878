package store

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/pthm/talui/lib/encoding"
	"github.com/pthm/talui/lib/model"
)

// ErrClosed is returned by a Bolt store after Close.
var ErrClosed = errors.New("store: closed")

// Bolt persists the values of persistent attributes in a bbolt database, one
// bucket per layer and one msgpack-encoded key per attribute.
//
// Values are read when a model first touches a layer and written back when
// the model is flushed. Attributes of any other lifecycle are never written.
type Bolt struct {
	db     *bolt.DB
	logger *slog.Logger
}

// OpenBolt opens or creates the database at path.
func OpenBolt(path string, opts ...Option) (*Bolt, error) {
	o := newOptions(opts)
	db, err := bolt.Open(path, 0o644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	return &Bolt{db: db, logger: o.logger}, nil
}

// Close closes the database.
func (s *Bolt) Close() error {
	return s.db.Close()
}

// ModelAttributes loads the stored values of cfg's persistent attributes.
func (s *Bolt) ModelAttributes(cfg *model.Configuration) (map[string]any, error) {
	raw := make(map[string]any)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(cfg.Name()))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			decoded, err := encoding.Unmarshal(v)
			if err != nil {
				return fmt.Errorf("layer %q key %q: %w", cfg.Name(), k, err)
			}
			raw[string(k)] = decoded
			return nil
		})
	})
	if err != nil {
		return nil, s.wrap(err)
	}
	values := restore(cfg, raw, s.logger)
	s.logger.Debug("layer loaded", "layer", cfg.Name(), "count", len(values))
	return values, nil
}

// SaveModelAttributes writes the persistent attributes of cfg. Persistent
// attributes without a value are deleted.
func (s *Bolt) SaveModelAttributes(cfg *model.Configuration, values map[string]any) error {
	keep := persistent(cfg, values)
	err := s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(cfg.Name()))
		if err != nil {
			return err
		}
		for _, attr := range cfg.Attributes() {
			if attr.Lifecycle() != model.LifecyclePersist {
				continue
			}
			key := []byte(attr.Name())
			v, ok := keep[attr.Name()]
			if !ok {
				if err := b.Delete(key); err != nil {
					return err
				}
				continue
			}
			packed, err := encoding.Marshal(v)
			if err != nil {
				return fmt.Errorf("layer %q attribute %q: %w", cfg.Name(), attr.Name(), err)
			}
			if err := b.Put(key, packed); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return s.wrap(err)
	}
	s.logger.Debug("layer saved", "layer", cfg.Name(), "count", len(keep))
	return nil
}

// Layers returns the names of the stored layers.
func (s *Bolt) Layers() ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
			names = append(names, string(name))
			return nil
		})
	})
	return names, s.wrap(err)
}

// DeleteLayer removes everything stored for the named layer.
func (s *Bolt) DeleteLayer(name string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		err := tx.DeleteBucket([]byte(name))
		if errors.Is(err, bolt.ErrBucketNotFound) {
			return nil
		}
		return err
	})
	return s.wrap(err)
}

func (s *Bolt) wrap(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bolt.ErrDatabaseNotOpen):
		return ErrClosed
	default:
		return fmt.Errorf("store: %w", err)
	}
}
