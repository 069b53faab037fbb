package book

import (
	"context"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"bookcatalog/internal/apperr"
)

const (
	tableBooks       = "books"
	colID            = "id"
	colTitle         = "title"
	colAuthor        = "author"
	colPublisher     = "publisher"
	colPublishedDate = "published_date"
	colPageCount     = "page_count"
	colLanguage      = "language"
	colCreatedAt     = "created_at"
	colUpdatedAt     = "updated_at"
)

var (
	dialect     = goqu.Dialect("postgres")
	bookColumns = []any{
		colID, colTitle, colAuthor, colPublisher, colPublishedDate,
		colPageCount, colLanguage, colCreatedAt, colUpdatedAt,
	}
)

// DBTX is the subset of pgx shared by pools, pooled connections and transactions.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepo stores books in the books table.
type PostgresRepo struct {
	db      DBTX
	timeout time.Duration
}

func NewPostgresRepo(db DBTX, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresRepo) List(ctx context.Context) ([]Book, error) {
	query, args, err := dialect.From(tableBooks).
		Select(bookColumns...).
		Order(goqu.C(colCreatedAt).Desc(), goqu.C(colID).Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, apperr.Persistence("build list query", err)
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, query, args...)
	if err != nil {
		return nil, apperr.Persistence("list books", err)
	}
	defer rows.Close()

	var out []Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, apperr.Persistence("scan book", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("list books", err)
	}
	return out, nil
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (Book, bool, error) {
	if !validID(id) {
		return Book{}, false, nil
	}
	query, args, err := dialect.From(tableBooks).
		Select(bookColumns...).
		Where(goqu.C(colID).Eq(id)).
		Limit(1).
		Prepared(true).
		ToSQL()
	if err != nil {
		return Book{}, false, apperr.Persistence("build get query", err)
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	b, err := scanBook(r.db.QueryRow(timeoutCtx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, false, nil
		}
		return Book{}, false, apperr.Persistence("get book", err)
	}
	return b, true, nil
}

func (r *PostgresRepo) Create(ctx context.Context, in CreateInput) (Book, error) {
	query, args, err := dialect.Insert(tableBooks).
		Rows(goqu.Record{
			colID:            uuid.NewString(),
			colTitle:         in.Title,
			colAuthor:        in.Author,
			colPublisher:     in.Publisher,
			colPublishedDate: in.PublishedDate,
			colPageCount:     in.PageCount,
			colLanguage:      in.Language,
			colCreatedAt:     goqu.L("NOW()"),
			colUpdatedAt:     goqu.L("NOW()"),
		}).
		Returning(bookColumns...).
		Prepared(true).
		ToSQL()
	if err != nil {
		return Book{}, apperr.Persistence("build insert query", err)
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	b, err := scanBook(r.db.QueryRow(timeoutCtx, query, args...))
	if err != nil {
		return Book{}, apperr.Persistence("create book", err)
	}
	return b, nil
}

func (r *PostgresRepo) Update(ctx context.Context, id string, p Patch) (Book, bool, error) {
	if !validID(id) {
		return Book{}, false, nil
	}
	if p.IsEmpty() {
		return r.Get(ctx, id)
	}

	set := goqu.Record{colUpdatedAt: goqu.L("GREATEST(NOW(), created_at)")}
	if p.Title != nil {
		set[colTitle] = *p.Title
	}
	if p.Author != nil {
		set[colAuthor] = *p.Author
	}
	if p.Publisher != nil {
		set[colPublisher] = *p.Publisher
	}
	if p.PublishedDate != nil {
		set[colPublishedDate] = *p.PublishedDate
	}
	if p.PageCount != nil {
		set[colPageCount] = *p.PageCount
	}
	if p.Language != nil {
		set[colLanguage] = *p.Language
	}

	query, args, err := dialect.Update(tableBooks).
		Set(set).
		Where(goqu.C(colID).Eq(id)).
		Returning(bookColumns...).
		Prepared(true).
		ToSQL()
	if err != nil {
		return Book{}, false, apperr.Persistence("build update query", err)
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	b, err := scanBook(r.db.QueryRow(timeoutCtx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, false, nil
		}
		return Book{}, false, apperr.Persistence("update book", err)
	}
	return b, true, nil
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	query, args, err := dialect.Delete(tableBooks).
		Where(goqu.C(colID).Eq(id)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return false, apperr.Persistence("build delete query", err)
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, query, args...)
	if err != nil {
		return false, apperr.Persistence("delete book", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanBook(row pgx.Row) (Book, error) {
	var b Book
	err := row.Scan(
		&b.ID, &b.Title, &b.Author, &b.Publisher, &b.PublishedDate,
		&b.PageCount, &b.Language, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return Book{}, err
	}
	b.CreatedAt = b.CreatedAt.UTC()
	b.UpdatedAt = b.UpdatedAt.UTC()
	return b, nil
}

// Identifiers are UUIDs; anything else cannot match a row.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// PoolScope acquires one pooled connection per request.
type PoolScope struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

func NewPoolScope(pool *pgxpool.Pool, timeout time.Duration) *PoolScope {
	return &PoolScope{pool: pool, timeout: timeout}
}

// Open binds a Service to a freshly acquired connection. The release func
// returns the connection to the pool.
func (s *PoolScope) Open(ctx context.Context) (*Service, func(), error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, nil, apperr.Persistence("acquire connection", err)
	}
	return NewService(NewPostgresRepo(conn, s.timeout)), conn.Release, nil
}
