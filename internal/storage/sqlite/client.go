package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/patternlog/backend/internal/storage/models"
	"github.com/patternlog/backend/pkg/logger"
)

// ErrStorage marks failures of the underlying database.
var ErrStorage = errors.New("storage failure")

type Client struct {
	db  *sql.DB
	now func() time.Time
}

// NewClient opens the database at dbPath, creating the file if absent.
// Writers take SQLite's reserved lock up front (_txlock=immediate) and wait
// up to busyTimeout for it, so inserts from several processes serialize.
func NewClient(dbPath string, busyTimeout time.Duration) (*Client, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d&_txlock=immediate", dbPath, busyTimeout.Milliseconds())

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %w", ErrStorage, err)
	}

	// every connection to :memory: is its own database
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	_, err = db.Exec("PRAGMA journal_mode = WAL")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to enable WAL mode: %w", ErrStorage, err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db, now: time.Now}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

// SetClock replaces the clock used to stamp new interactions.
func (c *Client) SetClock(now func() time.Time) {
	c.now = now
}

func (c *Client) Ping(ctx context.Context) error {
	if err := c.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: ping: %w", ErrStorage, err)
	}
	return nil
}

// InitSchema creates the interactions table when missing. Existing rows are
// left untouched.
func (c *Client) InitSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS interactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		question TEXT NOT NULL,
		answer TEXT NOT NULL,
		timestamp INTEGER NOT NULL DEFAULT (CAST((julianday('now') - 2440587.5) * 86400000 AS INTEGER))
	);
	`

	_, err := c.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("%w: failed to initialize schema: %w", ErrStorage, err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

// InsertInteraction persists the question and answer of in, then sets its
// ID and Timestamp. The row is committed whole or not at all.
func (c *Client) InsertInteraction(ctx context.Context, in *models.Interaction) error {
	ts := c.now().UTC().Truncate(time.Millisecond)

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to begin insert: %w", ErrStorage, err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO interactions (question, answer, timestamp) VALUES (?, ?, ?)`,
		in.Question,
		in.Answer,
		ts.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("%w: failed to insert interaction: %w", ErrStorage, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("%w: failed to read interaction id: %w", ErrStorage, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit interaction: %w", ErrStorage, err)
	}

	in.ID = id
	in.Timestamp = ts

	logger.Debug("Interaction inserted", zap.Int64("interaction_id", id))
	return nil
}

// ListInteractions returns every stored interaction ordered by id.
func (c *Client) ListInteractions(ctx context.Context) ([]models.Interaction, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT id, question, answer, timestamp FROM interactions ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list interactions: %w", ErrStorage, err)
	}
	defer rows.Close()

	interactions := make([]models.Interaction, 0)
	for rows.Next() {
		var in models.Interaction
		var ts int64

		if err := rows.Scan(&in.ID, &in.Question, &in.Answer, &ts); err != nil {
			return nil, fmt.Errorf("%w: failed to scan row: %w", ErrStorage, err)
		}

		in.Timestamp = time.UnixMilli(ts).UTC()
		interactions = append(interactions, in)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to iterate interactions: %w", ErrStorage, err)
	}

	return interactions, nil
}

func (c *Client) CountInteractions(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM interactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: failed to count interactions: %w", ErrStorage, err)
	}
	return n, nil
}

// LatestInteractionID returns the highest assigned id, or 0 for an empty store.
func (c *Client) LatestInteractionID(ctx context.Context) (int64, error) {
	var id sql.NullInt64
	if err := c.db.QueryRowContext(ctx, `SELECT MAX(id) FROM interactions`).Scan(&id); err != nil {
		return 0, fmt.Errorf("%w: failed to read latest id: %w", ErrStorage, err)
	}
	return id.Int64, nil
}
