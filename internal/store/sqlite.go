package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/me/nekohub/pkg/model"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and returns a Store.
// Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	// Every connection to ":memory:" is a separate database, and SQLite
	// allows a single writer anyway.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger.With("component", "store"),
	}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate creates all required tables and indexes.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	s.logger.Debug("sql", "op", "migrate")
	return migrate(ctx, s.db)
}

const postColumns = `id, title, content, is_published, created_at, updated_at, author`

// sortColumns maps API sort fields to columns.
var sortColumns = map[string]string{
	"title":     "title COLLATE NOCASE",
	"createdat": "created_at",
	"updatedat": "updated_at",
}

func (s *SQLiteStore) ListPosts(ctx context.Context, q Query) ([]model.Post, error) {
	s.logger.Debug("sql", "op", "list", "table", "posts", "sort_by", q.SortBy, "sort_order", q.SortOrder)

	var where []string
	var args []any
	if q.IsPublished != nil {
		where = append(where, "is_published = ?")
		args = append(args, boolToInt(*q.IsPublished))
	}
	if kw := strings.ToLower(strings.TrimSpace(q.Keyword)); kw != "" {
		where = append(where, "(instr(lower(title), ?) > 0 OR instr(lower(content), ?) > 0)")
		args = append(args, kw, kw)
	}

	col, ok := sortColumns[strings.ToLower(q.SortBy)]
	if !ok {
		col = sortColumns["updatedat"]
	}
	dir := "DESC"
	if strings.EqualFold(q.SortOrder, "asc") {
		dir = "ASC"
	}

	query := `SELECT ` + postColumns + ` FROM posts`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += fmt.Sprintf(` ORDER BY %s %s, id %s`, col, dir, dir)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []model.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

func (s *SQLiteStore) GetPost(ctx context.Context, id int) (*model.Post, error) {
	s.logger.Debug("sql", "op", "select", "table", "posts", "id", id)

	p, err := scanPost(s.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *SQLiteStore) CreatePost(ctx context.Context, p *model.Post) error {
	s.logger.Debug("sql", "op", "insert", "table", "posts")

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO posts (title, content, is_published, created_at, updated_at, author)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.Title, p.Content, boolToInt(p.IsPublished),
		p.CreatedAt.UnixNano(), p.UpdatedAt.UnixNano(), p.Author,
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	p.ID = int(id)
	return nil
}

func (s *SQLiteStore) UpdatePost(ctx context.Context, p *model.Post) error {
	s.logger.Debug("sql", "op", "update", "table", "posts", "id", p.ID)

	result, err := s.db.ExecContext(ctx,
		`UPDATE posts SET title=?, content=?, is_published=?, created_at=?, updated_at=?, author=? WHERE id=?`,
		p.Title, p.Content, boolToInt(p.IsPublished),
		p.CreatedAt.UnixNano(), p.UpdatedAt.UnixNano(), p.Author, p.ID,
	)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("update post %d: %w", p.ID, ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) DeletePost(ctx context.Context, id int) error {
	s.logger.Debug("sql", "op", "delete", "table", "posts", "id", id)

	result, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("delete post %d: %w", id, ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) PostStats(ctx context.Context) (model.PostStats, error) {
	s.logger.Debug("sql", "op", "stats", "table", "posts")

	var st model.PostStats
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(is_published), 0) FROM posts`,
	).Scan(&st.Total, &st.Published)
	if err != nil {
		return st, err
	}
	st.Drafts = st.Total - st.Published
	return st, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(row scanner) (*model.Post, error) {
	var p model.Post
	var published int
	var createdAt, updatedAt int64
	var author sql.NullString

	if err := row.Scan(&p.ID, &p.Title, &p.Content, &published, &createdAt, &updatedAt, &author); err != nil {
		return nil, err
	}
	p.IsPublished = published != 0
	p.CreatedAt = time.Unix(0, createdAt).UTC()
	p.UpdatedAt = time.Unix(0, updatedAt).UTC()
	if author.Valid {
		p.Author = &author.String
	}
	return &p, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
