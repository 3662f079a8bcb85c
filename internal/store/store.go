// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/typecert/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Store wraps SQLite access for results and certificates.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS results (
			id INTEGER PRIMARY KEY,
			session_id TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			lang TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			lesson_title TEXT NOT NULL,
			reason TEXT NOT NULL,
			time_limit INTEGER NOT NULL,
			time_taken INTEGER NOT NULL,
			typed_chars INTEGER NOT NULL,
			mistakes INTEGER NOT NULL,
			wpm INTEGER NOT NULL,
			accuracy INTEGER NOT NULL,
			eligible INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS result_char_stats (
			result_id INTEGER NOT NULL,
			char TEXT NOT NULL,
			correct INTEGER NOT NULL,
			incorrect INTEGER NOT NULL,
			PRIMARY KEY (result_id, char)
		);`,
		`CREATE TABLE IF NOT EXISTS certificates (
			id TEXT PRIMARY KEY,
			result_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			address TEXT NOT NULL,
			photo_path TEXT NOT NULL,
			signature_path TEXT NOT NULL,
			issued_at TEXT NOT NULL,
			path TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_results_ended_at ON results(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_result_char_stats_char ON result_char_stats(char);`,
		`CREATE INDEX IF NOT EXISTS idx_certificates_result ON certificates(result_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

const resultColumns = `id, session_id, started_at, ended_at, lang, difficulty, lesson_title, reason,
	time_limit, time_taken, typed_chars, mistakes, wpm, accuracy, eligible`

// InsertResult stores a finalized result and its per-character stats.
func (s *Store) InsertResult(ctx context.Context, rec model.ResultRecord, chars []model.CharStats) (id int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO results (session_id, started_at, ended_at, lang, difficulty, lesson_title, reason,
			time_limit, time_taken, typed_chars, mistakes, wpm, accuracy, eligible)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.SessionID,
		rec.StartedAt.Format(time.RFC3339Nano),
		rec.EndedAt.Format(time.RFC3339Nano),
		rec.Lang,
		rec.Difficulty,
		rec.LessonTitle,
		rec.Reason,
		rec.TimeLimit,
		rec.TimeTaken,
		rec.TypedChars,
		rec.Mistakes,
		rec.WPM,
		rec.Accuracy,
		rec.Eligible,
	)
	if err != nil {
		return 0, err
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(chars) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO result_char_stats (result_id, char, correct, incorrect) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return 0, err
		}
		defer func() {
			_ = stmt.Close()
		}()
		for _, cs := range chars {
			if _, err := stmt.ExecContext(ctx, id, cs.Char, cs.Correct, cs.Incorrect); err != nil {
				return 0, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// GetResult returns one result by id.
func (s *Store) GetResult(ctx context.Context, id int64) (model.ResultRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+resultColumns+` FROM results WHERE id = ?`, id)
	rec, err := scanResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ResultRecord{}, fmt.Errorf("result %d: %w", id, ErrNotFound)
	}
	return rec, err
}

// HasSession reports whether a result with the given session id is stored.
func (s *Store) HasSession(ctx context.Context, sessionID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM results WHERE session_id = ?`, sessionID).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListResults returns results filtered by stats config, oldest first.
func (s *Store) ListResults(ctx context.Context, cfg model.StatsConfig) ([]model.ResultRecord, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Lang != "" {
		clauses = append(clauses, "lang = ?")
		args = append(args, cfg.Lang)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT %s FROM results WHERE %s ORDER BY ended_at ASC, id ASC`,
		resultColumns, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var results []model.ResultRecord
	for rows.Next() {
		rec, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if cfg.Last > 0 && len(results) > cfg.Last {
		results = results[len(results)-cfg.Last:]
	}
	return results, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResult(row scanner) (model.ResultRecord, error) {
	var rec model.ResultRecord
	var startedAt, endedAt string
	if err := row.Scan(&rec.ID, &rec.SessionID, &startedAt, &endedAt, &rec.Lang, &rec.Difficulty,
		&rec.LessonTitle, &rec.Reason, &rec.TimeLimit, &rec.TimeTaken, &rec.TypedChars,
		&rec.Mistakes, &rec.WPM, &rec.Accuracy, &rec.Eligible); err != nil {
		return model.ResultRecord{}, err
	}
	var err error
	if rec.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
		return model.ResultRecord{}, err
	}
	if rec.EndedAt, err = time.Parse(time.RFC3339Nano, endedAt); err != nil {
		return model.ResultRecord{}, err
	}
	return rec, nil
}

// GetWeakChars aggregates character stats over the most recent results.
func (s *Store) GetWeakChars(ctx context.Context, window int, lang string) ([]model.CharAggregate, error) {
	if window <= 0 {
		return nil, nil
	}
	query := `WITH recent AS (
		SELECT id FROM results
		WHERE (? = '' OR lang = ?)
		ORDER BY ended_at DESC
		LIMIT ?
	)
	SELECT cs.char, SUM(cs.correct), SUM(cs.incorrect)
	FROM result_char_stats cs
	JOIN recent r ON r.id = cs.result_id
	GROUP BY cs.char`
	rows, err := s.db.QueryContext(ctx, query, lang, lang, window)
	if err != nil {
		return nil, err
	}
	return scanAggregates(rows)
}

// ListCharAggregates aggregates per-character stats across results.
func (s *Store) ListCharAggregates(ctx context.Context, resultIDs []int64) ([]model.CharAggregate, error) {
	if len(resultIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(resultIDs))
	args := make([]any, len(resultIDs))
	for i, id := range resultIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT char, SUM(correct), SUM(incorrect)
		FROM result_char_stats
		WHERE result_id IN (%s)
		GROUP BY char`, strings.Join(placeholders, ","))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanAggregates(rows)
}

func scanAggregates(rows *sql.Rows) ([]model.CharAggregate, error) {
	defer func() {
		_ = rows.Close()
	}()
	var result []model.CharAggregate
	for rows.Next() {
		var agg model.CharAggregate
		if err := rows.Scan(&agg.Char, &agg.Correct, &agg.Incorrect); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// InsertCertificate records an issued certificate.
func (s *Store) InsertCertificate(ctx context.Context, rec model.CertificateRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO certificates (id, result_id, name, address, photo_path, signature_path, issued_at, path)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.ResultID,
		rec.Name,
		rec.Address,
		rec.PhotoPath,
		rec.SignaturePath,
		rec.IssuedAt.Format(time.RFC3339Nano),
		rec.Path,
	)
	return err
}

// ListCertificates returns issued certificates, oldest first.
func (s *Store) ListCertificates(ctx context.Context) ([]model.CertificateRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, result_id, name, address, photo_path, signature_path, issued_at, path
		 FROM certificates ORDER BY issued_at ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()
	var certs []model.CertificateRecord
	for rows.Next() {
		var rec model.CertificateRecord
		var issuedAt string
		if err := rows.Scan(&rec.ID, &rec.ResultID, &rec.Name, &rec.Address, &rec.PhotoPath,
			&rec.SignaturePath, &issuedAt, &rec.Path); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, issuedAt)
		if err != nil {
			return nil, err
		}
		rec.IssuedAt = parsed
		certs = append(certs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return certs, nil
}
