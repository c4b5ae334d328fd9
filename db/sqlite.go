// Package db keeps the SQLite audit trail of training runs and served
// predictions.
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"medicare/predictor"
)

var ErrClosed = errors.New("database not initialized")

const schema = `
CREATE TABLE IF NOT EXISTS training_log (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    disease VARCHAR(20) NOT NULL,
    model_name VARCHAR(50) NOT NULL,
    accuracy REAL,
    precision REAL,
    recall REAL,
    selected INTEGER DEFAULT 0,
    train_samples INTEGER,
    test_samples INTEGER,
    trained_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_training_log_disease ON training_log(disease, trained_at);
CREATE TABLE IF NOT EXISTS predictions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    disease VARCHAR(20) NOT NULL,
    features TEXT NOT NULL,
    predicted_label INTEGER NOT NULL,
    prediction VARCHAR(50),
    model_name VARCHAR(50),
    cached INTEGER DEFAULT 0,
    created_at DATETIME NOT NULL
);
`

type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates the database file and its tables if needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}

	conn, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database failed: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("create tables failed: %w", err)
	}
	return &Store{db: conn, now: time.Now}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

type TrainingLog struct {
	Disease      string    `json:"disease"`
	ModelName    string    `json:"model_name"`
	Accuracy     float64   `json:"accuracy"`
	Precision    float64   `json:"precision"`
	Recall       float64   `json:"recall"`
	Selected     bool      `json:"selected"`
	TrainSamples int       `json:"train_samples"`
	TestSamples  int       `json:"test_samples"`
	TrainedAt    time.Time `json:"trained_at"`
}

// SaveTrainingRun writes one row per candidate of a finished training.
func (s *Store) SaveTrainingRun(ctx context.Context, m *predictor.Model) error {
	if s == nil || s.db == nil {
		return ErrClosed
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO training_log (
            disease, model_name, accuracy, precision, recall, selected,
            train_samples, test_samples, trained_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, c := range m.Candidates {
		_, err := stmt.ExecContext(ctx, m.Disease.Key, c.Name, c.Accuracy, c.Precision, c.Recall,
			c.Name == m.Name, m.TrainSamples, m.TestSamples, m.TrainedAt)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("insert %s: %w", c.Name, err)
		}
	}
	return tx.Commit()
}

// LoadTrainingLog returns the newest rows first. An empty disease matches all.
func (s *Store) LoadTrainingLog(ctx context.Context, disease string, limit int) ([]TrainingLog, error) {
	if s == nil || s.db == nil {
		return nil, ErrClosed
	}
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT disease, model_name, accuracy, precision, recall, selected,
               train_samples, test_samples, trained_at
        FROM training_log
        WHERE (? = '' OR disease = ?)
        ORDER BY trained_at DESC, id DESC
        LIMIT ?`, disease, disease, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]TrainingLog, 0)
	for rows.Next() {
		var l TrainingLog
		if err := rows.Scan(&l.Disease, &l.ModelName, &l.Accuracy, &l.Precision, &l.Recall, &l.Selected,
			&l.TrainSamples, &l.TestSamples, &l.TrainedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// RecordPrediction stores a served prediction with its input vector as JSON.
func (s *Store) RecordPrediction(ctx context.Context, disease string, features []float64, p predictor.Prediction) error {
	if s == nil || s.db == nil {
		return ErrClosed
	}
	encoded, err := json.Marshal(features)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO predictions (disease, features, predicted_label, prediction, model_name, cached, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		disease, string(encoded), p.Label, p.Text, p.ModelName, p.Cached, s.now().UTC())
	return err
}

func (s *Store) CountPredictions(ctx context.Context, disease string) (int, error) {
	if s == nil || s.db == nil {
		return 0, ErrClosed
	}
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM predictions WHERE (? = '' OR disease = ?)`,
		disease, disease).Scan(&n)
	return n, err
}

type PredictionLog struct {
	Disease    string    `json:"disease"`
	Features   []float64 `json:"features"`
	Label      int       `json:"risk"`
	Prediction string    `json:"prediction"`
	ModelName  string    `json:"model_used"`
	Cached     bool      `json:"cached"`
	CreatedAt  time.Time `json:"created_at"`
}

// LoadPredictions returns the newest predictions first. An empty disease matches all.
func (s *Store) LoadPredictions(ctx context.Context, disease string, limit int) ([]PredictionLog, error) {
	if s == nil || s.db == nil {
		return nil, ErrClosed
	}
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT disease, features, predicted_label, prediction, model_name, cached, created_at
        FROM predictions
        WHERE (? = '' OR disease = ?)
        ORDER BY created_at DESC, id DESC
        LIMIT ?`, disease, disease, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]PredictionLog, 0)
	for rows.Next() {
		var (
			l       PredictionLog
			encoded string
		)
		if err := rows.Scan(&l.Disease, &encoded, &l.Label, &l.Prediction, &l.ModelName, &l.Cached, &l.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(encoded), &l.Features); err != nil {
			return nil, fmt.Errorf("decode features: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
