// Package sqlite implements catalog.Store on a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"book-chatter/internal/catalog"
)

//go:embed schema.sql
var schemaSQL string

// bookColumns is the ordered column list for book queries; must match the
// scan order in scanBook.
const bookColumns = `id, title, author, category, position, summary, created_at`

type Store struct {
	db *sql.DB
}

// Open creates (if needed) and opens the catalog database at path, applying
// pragmas and the embedded schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to ensure db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Add counts the category and inserts the new row inside one transaction,
// so the shelf position derived from the count cannot be raced by a
// concurrent addition.
func (s *Store) Add(ctx context.Context, title, author, category string, allocate catalog.AllocateFunc) (catalog.Book, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return catalog.Book{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM books WHERE title = ? AND author = ?`, title, author).Scan(&exists)
	if err != nil {
		return catalog.Book{}, fmt.Errorf("check duplicate: %w", err)
	}
	if exists > 0 {
		return catalog.Book{}, catalog.ErrDuplicate
	}

	var count int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM books WHERE category = ?`, category).Scan(&count)
	if err != nil {
		return catalog.Book{}, fmt.Errorf("count category: %w", err)
	}

	book := catalog.Book{
		Title:     title,
		Author:    author,
		Category:  category,
		Position:  allocate(count),
		CreatedAt: time.Now().UTC(),
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO books (title, author, category, position, summary, created_at)
		VALUES (?, ?, ?, ?, '', ?)`,
		book.Title, book.Author, book.Category, book.Position, book.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return catalog.Book{}, catalog.ErrDuplicate
		}
		return catalog.Book{}, fmt.Errorf("insert book: %w", err)
	}
	book.ID, err = res.LastInsertId()
	if err != nil {
		return catalog.Book{}, fmt.Errorf("last insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return catalog.Book{}, fmt.Errorf("commit: %w", err)
	}
	return book, nil
}

func (s *Store) DeleteByTitleAuthor(ctx context.Context, title, author string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM books WHERE title = ? AND author = ?`, title, author)
	if err != nil {
		return 0, fmt.Errorf("delete book: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func (s *Store) CountByCategory(ctx context.Context, category string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM books WHERE category = ?`, category).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count category: %w", err)
	}
	return n, nil
}

func (s *Store) FindByShelfCode(ctx context.Context, code string) (*catalog.Book, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE position = ? COLLATE NOCASE ORDER BY id LIMIT 1`, code)
	b, err := scanBook(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find by shelf code: %w", err)
	}
	return b, nil
}

func (s *Store) ListAll(ctx context.Context) ([]catalog.Book, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+bookColumns+` FROM books ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()
	return collectBooks(rows)
}

func (s *Store) FindByKeyword(ctx context.Context, text string) ([]catalog.Book, error) {
	words := catalog.Keywords(text)
	if len(words) == 0 {
		return nil, nil
	}

	var clauses []string
	var args []any
	for _, w := range words {
		clauses = append(clauses, `(title LIKE ? OR author LIKE ? OR category LIKE ?)`)
		pat := "%" + w + "%"
		args = append(args, pat, pat, pat)
	}
	query := `SELECT ` + bookColumns + ` FROM books WHERE ` +
		strings.Join(clauses, " OR ") + ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find by keyword: %w", err)
	}
	defer rows.Close()
	return collectBooks(rows)
}

func scanBook(scanner interface{ Scan(dest ...any) error }) (*catalog.Book, error) {
	var b catalog.Book
	var createdAt string
	err := scanner.Scan(&b.ID, &b.Title, &b.Author, &b.Category, &b.Position, &b.Summary, &createdAt)
	if err != nil {
		return nil, err
	}
	b.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	return &b, nil
}

func collectBooks(rows *sql.Rows) ([]catalog.Book, error) {
	var out []catalog.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
