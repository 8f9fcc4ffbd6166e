package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/warcsift/internal/model"
)

// FileName is the name of the database file inside the database directory.
const FileName = "webpage_analysis.db"

// WebpageDB stores pages, similarity edges and run history.
// It owns a single SQLite connection and is safe for concurrent use.
//
// Design decision: The URL is the natural key of a page and the row ID is
// its identity. Re-ingesting a URL updates the row in place and keeps the ID,
// so similarity edges written by earlier runs keep pointing at the same page.
// Edges are stored once per unordered pair, with webpage1_id < webpage2_id
// enforced by a CHECK constraint, and neighbour queries look at both columns.
type WebpageDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures WebpageDB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file when missing.
	// Read-only commands leave it false so that a typo in --db-dir is reported.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the options used by ingestion.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the database in dbDir.
// If CreateIfNotExists is false and the database file does not exist,
// ErrDatabaseNotFound is returned instead of creating an empty store.
//
// Design decision: The pool is limited to one connection. SQLite allows a
// single writer anyway, and per-connection pragmas such as foreign_keys must
// hold for every statement.
func Open(dbDir string, opts Options) (*WebpageDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if opts.CreateIfNotExists {
		if err := os.MkdirAll(dbDir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	} else if _, err := os.Stat(dbPath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrDatabaseNotFound, dbPath)
		}
		return nil, fmt.Errorf("failed to check database path: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite has a single writer; one connection also keeps per-connection
	// pragmas in effect for every statement.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	wdb := newWithDB(db)
	wdb.dbPath = dbPath

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := wdb.createTables(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return wdb, nil
}

func newWithDB(db *sql.DB) *WebpageDB {
	return &WebpageDB{db: db}
}

// Close closes the database connection.
func (w *WebpageDB) Close() error {
	return w.db.Close()
}

// Path returns the database file path.
func (w *WebpageDB) Path() string {
	return w.dbPath
}

func (w *WebpageDB) createTables(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS webpages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT UNIQUE NOT NULL,
		title TEXT,
		content_type TEXT,
		language_score REAL,
		cleaned_text TEXT,
		summary TEXT,
		keywords TEXT,
		named_entities TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_webpages_url ON webpages(url);

	CREATE TABLE IF NOT EXISTS webpage_similarities (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		webpage1_id INTEGER REFERENCES webpages(id),
		webpage2_id INTEGER REFERENCES webpages(id),
		similarity_score REAL,
		UNIQUE(webpage1_id, webpage2_id),
		CHECK(webpage1_id < webpage2_id)
	);

	CREATE INDEX IF NOT EXISTS idx_similarities_page2 ON webpage_similarities(webpage2_id);

	-- Ingestion history
	CREATE TABLE IF NOT EXISTS ingest_runs (
		id TEXT PRIMARY KEY,
		archive_path TEXT NOT NULL,
		archive_digest TEXT,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		summary_json TEXT NOT NULL
	);
	`
	_, err := w.db.ExecContext(ctx, schema)
	return err
}

// withTx runs fn in a transaction, committing on success and rolling back
// on any error.
func (w *WebpageDB) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback failed: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// AddWebpage inserts page, or updates the row with the same URL in place,
// and returns the row ID. The ID of an existing URL never changes.
func (w *WebpageDB) AddWebpage(ctx context.Context, page *model.Page) (int64, error) {
	if err := page.Validate(); err != nil {
		return 0, err
	}

	keywords := page.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	keywordsJSON, err := json.Marshal(keywords)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize keywords: %w", err)
	}
	entitiesJSON, err := json.Marshal(page.NamedEntities)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize named entities: %w", err)
	}

	query := `
	INSERT INTO webpages (url, title, content_type, language_score, cleaned_text, summary, keywords, named_entities)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(url) DO UPDATE SET
		title = excluded.title,
		content_type = excluded.content_type,
		language_score = excluded.language_score,
		cleaned_text = excluded.cleaned_text,
		summary = excluded.summary,
		keywords = excluded.keywords,
		named_entities = excluded.named_entities
	`

	var id int64
	err = w.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, query,
			page.URL,
			page.Title,
			string(page.ContentType),
			page.LanguageScore,
			page.CleanedText,
			page.Summary,
			string(keywordsJSON),
			string(entitiesJSON),
		); err != nil {
			return fmt.Errorf("failed to upsert webpage %s: %w", page.URL, err)
		}
		// LastInsertId is unreliable for the update branch of an upsert.
		if err := tx.QueryRowContext(ctx, "SELECT id FROM webpages WHERE url = ?", page.URL).Scan(&id); err != nil {
			return fmt.Errorf("failed to read id of webpage %s: %w", page.URL, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

const pageColumns = `w.id, w.url, w.title, w.content_type, w.language_score, w.cleaned_text, w.summary, w.keywords, w.named_entities`

type rowScanner interface {
	Scan(dest ...any) error
}

// scanPage reads pageColumns plus any extra destinations.
func scanPage(row rowScanner, extra ...any) (*model.Page, error) {
	var (
		p                                    model.Page
		title, contentType, cleaned, summary sql.NullString
		keywordsJSON, entitiesJSON           sql.NullString
		score                                sql.NullFloat64
	)
	dest := []any{&p.ID, &p.URL, &title, &contentType, &score, &cleaned, &summary, &keywordsJSON, &entitiesJSON}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	p.Title = title.String
	p.ContentType = model.ContentType(contentType.String)
	p.LanguageScore = score.Float64
	p.CleanedText = cleaned.String
	p.Summary = summary.String

	p.Keywords = []string{}
	if keywordsJSON.String != "" {
		if err := json.Unmarshal([]byte(keywordsJSON.String), &p.Keywords); err != nil {
			return nil, fmt.Errorf("failed to parse keywords of webpage %d: %w", p.ID, err)
		}
	}
	p.NamedEntities = model.Entities{}
	if entitiesJSON.String != "" {
		if err := json.Unmarshal([]byte(entitiesJSON.String), &p.NamedEntities); err != nil {
			return nil, fmt.Errorf("failed to parse named entities of webpage %d: %w", p.ID, err)
		}
	}
	return &p, nil
}

// GetWebpageMetadata returns the page with the given ID, or nil when absent.
func (w *WebpageDB) GetWebpageMetadata(ctx context.Context, id int64) (*model.Page, error) {
	query := `SELECT ` + pageColumns + ` FROM webpages w WHERE w.id = ?`
	page, err := scanPage(w.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get webpage %d: %w", id, err)
	}
	return page, nil
}

// GetWebpageByURL returns the page stored for url, or nil when absent.
func (w *WebpageDB) GetWebpageByURL(ctx context.Context, url string) (*model.Page, error) {
	query := `SELECT ` + pageColumns + ` FROM webpages w WHERE w.url = ?`
	page, err := scanPage(w.db.QueryRowContext(ctx, query, url))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get webpage %s: %w", url, err)
	}
	return page, nil
}

// CountWebpages returns the number of stored pages.
func (w *WebpageDB) CountWebpages(ctx context.Context) (int, error) {
	var n int
	if err := w.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM webpages").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count webpages: %w", err)
	}
	return n, nil
}
