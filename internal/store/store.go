package store

import (
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/newsdesk-hq/daily-clipper/internal/domain"
)

var (
	bucketRuns = []byte("runs")
	bucketMeta = []byte("meta")

	keyLastReport = []byte("last_report")
)

// Store persists run history and the latest report path so downloads
// keep working across restarts.
type Store struct {
	db    *bolt.DB
	limit int
}

// Open opens (or creates) the store file. limit caps how many run
// snapshots are kept.
func Open(path string, limit int) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketRuns); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketMeta)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init store buckets: %w", err)
	}

	if limit <= 0 {
		limit = 30
	}
	return &Store{db: db, limit: limit}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// SaveRun stores a finished run snapshot keyed by start time and run id,
// pruning the oldest entries past the limit.
func (s *Store) SaveRun(snap domain.RunSnapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal run snapshot: %w", err)
	}
	key := []byte(snap.StartedAt.UTC().Format(time.RFC3339Nano) + "/" + snap.RunID)

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRuns)
		if err := b.Put(key, raw); err != nil {
			return err
		}

		// prune oldest beyond the limit; keys sort chronologically
		total := 0
		c := b.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			total++
		}
		excess := total - s.limit
		if excess <= 0 {
			return nil
		}
		for k, _ := c.First(); k != nil && excess > 0; k, _ = c.Next() {
			if err := c.Delete(); err != nil {
				return err
			}
			excess--
		}
		return nil
	})
}

// Runs returns stored snapshots, most recent first.
func (s *Store) Runs() ([]domain.RunSnapshot, error) {
	var out []domain.RunSnapshot

	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketRuns).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var snap domain.RunSnapshot
			if err := json.Unmarshal(v, &snap); err != nil {
				continue
			}
			out = append(out, snap)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read runs: %w", err)
	}
	return out, nil
}

// SetLastReport records the path of the most recent report file.
func (s *Store) SetLastReport(path string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMeta).Put(keyLastReport, []byte(path))
	})
}

// LastReport returns the most recent report path, or "" when none is
// recorded.
func (s *Store) LastReport() (string, error) {
	var path string
	err := s.db.View(func(tx *bolt.Tx) error {
		path = string(tx.Bucket(bucketMeta).Get(keyLastReport))
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("read last report: %w", err)
	}
	return path, nil
}
