// Package storage provides an optional persistent audit log of served
// predictions, backed by BoltDB. It is only active when a data path is
// configured; the default deployment keeps no state on disk beyond the
// model parameter file.
package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"go.etcd.io/bbolt"
)

const predictionsBucket = "predictions"

// PredictionRecord is one served prediction.
type PredictionRecord struct {
	Timestamp   time.Time `json:"timestamp"`
	Features    []float64 `json:"features"`
	Prediction  int       `json:"prediction"`
	Probability float64   `json:"probability"`
}

// Store persists prediction records. Safe for concurrent use; BoltDB
// serializes writers internally.
type Store struct {
	db *bbolt.DB
}

// New opens the prediction log under dataPath, creating the database and
// bucket as needed.
func New(dataPath string) (*Store, error) {
	dbPath := filepath.Join(dataPath, "riskserve-data.db")

	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(predictionsBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create predictions bucket: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// StorePrediction appends one record, keyed by nanosecond timestamp so
// range scans come back in chronological order.
func (s *Store) StorePrediction(record PredictionRecord) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(predictionsBucket))

		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshal prediction record: %w", err)
		}

		key := fmt.Sprintf("%020d", record.Timestamp.UnixNano())
		return b.Put([]byte(key), data)
	})
}

// GetPredictionsInRange returns records with timestamps in [start, end].
func (s *Store) GetPredictionsInRange(start, end time.Time) ([]PredictionRecord, error) {
	var records []PredictionRecord

	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(predictionsBucket)).Cursor()

		startKey := []byte(fmt.Sprintf("%020d", start.UnixNano()))
		endKey := []byte(fmt.Sprintf("%020d", end.UnixNano()))

		for k, v := c.Seek(startKey); k != nil && bytes.Compare(k, endKey) <= 0; k, v = c.Next() {
			var record PredictionRecord
			if err := json.Unmarshal(v, &record); err != nil {
				continue // skip malformed records
			}
			records = append(records, record)
		}
		return nil
	})

	return records, err
}

// RecordPrediction implements the api.PredictionRecorder interface. Audit
// writes never fail a request; errors are logged and dropped.
func (s *Store) RecordPrediction(features []float64, class int, probability float64) {
	record := PredictionRecord{
		Timestamp:   time.Now(),
		Features:    features,
		Prediction:  class,
		Probability: probability,
	}
	if err := s.StorePrediction(record); err != nil {
		log.Warn().Err(err).Msg("failed to persist prediction record")
	}
}
