/*
Package sqlite is the experience-extract store, the ingestion collaborator
in front of the projection engine.

PURPOSE:
  Monthly experience arrives as periodic extracts from the transactional
  source system, keyed by raw feed keys. This store persists each extract,
  serves the latest one with the key translation applied, and certifies
  completeness: retained rows plus dropped rows must equal the extract's
  total row count, or the run halts before the engine sees anything.

KEY TABLES:
  extracts:            One row per ingested extract, newest wins
  monthly_experience:  (extract, raw key, month) rows with nullable
                       numeric columns - NULL means absent, never zero

DECIMAL STORAGE:
  Amounts are stored as TEXT and parsed with shopspring/decimal so values
  round-trip exactly; REAL columns would reintroduce float drift in data
  the reconciliation checks depend on.

WAL MODE:
  SQLite is opened with WAL so concurrent readers (the HTTP surface) do
  not block the batch loader.

USAGE:
  store, err := sqlite.New("./data/experience.db")
  ...
  rows, stats, err := store.LoadLatest(ctx, translation)
  if errors.Is(err, sqlite.ErrIncompleteExtract) {
      // extract is unusable, halt before the engine runs
  }
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/treaty-engine/treaty"
)

// ErrIncompleteExtract is returned when the row-count identity
// (retained + dropped = total) fails for the latest extract.
var ErrIncompleteExtract = errors.New("experience extract failed completeness check")

// ErrNoExtract is returned when no extract has been ingested yet.
var ErrNoExtract = errors.New("no experience extract available")

// IncompleteExtractError carries the failing counts.
type IncompleteExtractError struct {
	ExtractID string
	Total     int
	Retained  int
	Dropped   int
}

func (e *IncompleteExtractError) Error() string {
	return fmt.Sprintf("extract %s: retained %d + dropped %d != total %d",
		e.ExtractID, e.Retained, e.Dropped, e.Total)
}

func (e *IncompleteExtractError) Unwrap() error { return ErrIncompleteExtract }

// =============================================================================
// STORE
// =============================================================================

// Store persists experience extracts in SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// RawRow is one experience row as it arrives from the feed, before key
// translation.
type RawRow struct {
	RawKey string
	Month  treaty.Month

	WrittenPremium  decimal.NullDecimal
	EarnedPremium   decimal.NullDecimal
	PaidLossNet     decimal.NullDecimal
	PaidALAE        decimal.NullDecimal
	CaseReserveLoss decimal.NullDecimal
}

// LoadStats reports the completeness accounting of a load.
type LoadStats struct {
	ExtractID string
	Total     int
	Retained  int
	Dropped   int
}

// New opens (or creates) the store. Use ":memory:" for tests.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS extracts (
		id TEXT PRIMARY KEY,
		loaded_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS monthly_experience (
		extract_id TEXT NOT NULL REFERENCES extracts(id),
		raw_key TEXT NOT NULL,
		month INTEGER NOT NULL,
		written_premium TEXT,
		earned_premium TEXT,
		paid_loss_net TEXT,
		paid_alae TEXT,
		case_reserve_loss TEXT,
		PRIMARY KEY (extract_id, raw_key, month)
	);

	CREATE INDEX IF NOT EXISTS idx_experience_extract
		ON monthly_experience(extract_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// INGESTION
// =============================================================================

// IngestExtract stores a complete extract atomically. An extract with the
// same ID is rejected; re-ingestion requires a new extract ID.
func (s *Store) IngestExtract(ctx context.Context, extractID string, rows []RawRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO extracts (id, loaded_at) VALUES (?, ?)`,
		extractID, time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("extract %s: %w", extractID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO monthly_experience
			(extract_id, raw_key, month, written_premium, earned_premium,
			 paid_loss_net, paid_alae, case_reserve_loss)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx,
			extractID, row.RawKey, row.Month.YYYYMM(),
			nullText(row.WrittenPremium), nullText(row.EarnedPremium),
			nullText(row.PaidLossNet), nullText(row.PaidALAE),
			nullText(row.CaseReserveLoss)); err != nil {
			return fmt.Errorf("extract %s, key %s, month %s: %w", extractID, row.RawKey, row.Month, err)
		}
	}

	return tx.Commit()
}

// =============================================================================
// SERVING
// =============================================================================

// LatestExtractID returns the most recently ingested extract.
func (s *Store) LatestExtractID(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM extracts ORDER BY loaded_at DESC, id DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoExtract
	}
	return id, err
}

// LoadLatest serves the latest extract with the key translation applied.
// Rows whose raw key has no translation are dropped and counted; the
// row-count identity retained + dropped = total must hold, else the load
// fails with ErrIncompleteExtract and the engine must not run.
func (s *Store) LoadLatest(ctx context.Context, translation map[string]treaty.TreatyID) ([]treaty.ExperienceRow, *LoadStats, error) {
	extractID, err := s.LatestExtractID(ctx)
	if err != nil {
		return nil, nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM monthly_experience WHERE extract_id = ?`, extractID).Scan(&total); err != nil {
		return nil, nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT raw_key, month, written_premium, earned_premium,
		       paid_loss_net, paid_alae, case_reserve_loss
		FROM monthly_experience
		WHERE extract_id = ?
		ORDER BY raw_key, month`, extractID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	stats := &LoadStats{ExtractID: extractID, Total: total}
	var out []treaty.ExperienceRow

	for rows.Next() {
		var (
			rawKey                                       string
			monthV                                       int
			written, earned, paidLoss, paidALAE, caseRes sql.NullString
		)
		if err := rows.Scan(&rawKey, &monthV, &written, &earned, &paidLoss, &paidALAE, &caseRes); err != nil {
			return nil, nil, err
		}

		id, ok := translation[rawKey]
		if !ok {
			stats.Dropped++
			continue
		}

		month, err := treaty.ParseYYYYMM(monthV)
		if err != nil {
			return nil, nil, fmt.Errorf("extract %s, key %s: %w", extractID, rawKey, err)
		}

		row := treaty.ExperienceRow{TreatyID: id, Month: month}
		fields := []struct {
			dst *decimal.NullDecimal
			src sql.NullString
		}{
			{&row.WrittenPremium, written},
			{&row.EarnedPremium, earned},
			{&row.PaidLossNet, paidLoss},
			{&row.PaidALAE, paidALAE},
			{&row.CaseReserveLoss, caseRes},
		}
		for _, f := range fields {
			v, err := textNull(f.src)
			if err != nil {
				return nil, nil, fmt.Errorf("extract %s, key %s, month %s: %w", extractID, rawKey, month, err)
			}
			*f.dst = v
		}

		out = append(out, row)
		stats.Retained++
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	if stats.Retained+stats.Dropped != stats.Total {
		return nil, nil, &IncompleteExtractError{
			ExtractID: extractID,
			Total:     stats.Total,
			Retained:  stats.Retained,
			Dropped:   stats.Dropped,
		}
	}

	return out, stats, nil
}

// =============================================================================
// NULL <-> TEXT CONVERSION
// =============================================================================

func nullText(v decimal.NullDecimal) any {
	if !v.Valid {
		return nil
	}
	return v.Decimal.String()
}

func textNull(v sql.NullString) (decimal.NullDecimal, error) {
	if !v.Valid {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(v.String)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}, nil
}
