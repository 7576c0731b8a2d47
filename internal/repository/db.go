package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/golang-module/carbon/v2"

	"github.com/debemdeboas/the-blog/internal/db"
	"github.com/debemdeboas/the-blog/internal/model"
	"github.com/debemdeboas/the-blog/internal/util/compression"
)

const (
	postsTable = "posts"

	colID        = "id"
	colTitle     = "title"
	colAuthor    = "author"
	colContent   = "content"
	colPermalink = "permalink"
	colTags      = "tags"
	colCreatedAt = "created_at"
)

// The UNIQUE constraint on permalink is what rejects duplicate titles; there
// is no read-before-write.
const sqlCreatePostsTable = `
CREATE TABLE IF NOT EXISTS posts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL CHECK (length(title) > 0),
    author TEXT NOT NULL DEFAULT '',
    content BLOB,
    permalink TEXT NOT NULL UNIQUE,
    tags TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL
);`

var postColumns = []any{colID, colTitle, colAuthor, colContent, colPermalink, colTags, colCreatedAt}

var dialect = goqu.Dialect("sqlite3")

type DBPostRepository struct { // implements PostRepository
	db         db.DB
	compressor compression.Compressor
}

func NewDBPostRepository(db db.DB) *DBPostRepository {
	return &DBPostRepository{
		db: db,

		compressor: compression.ZstdCompressor{},
	}
}

func (r *DBPostRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, sqlCreatePostsTable); err != nil {
		return fmt.Errorf("error creating posts table: %w", err)
	}
	repoLogger.Debug().Str("table", postsTable).Msg("Posts table ready")
	return nil
}

func (r *DBPostRepository) Insert(ctx context.Context, post *model.Post) error {
	if strings.TrimSpace(post.Title) == "" {
		return ErrEmptyTitle
	}

	post.Permalink = model.Permalink(post.Title)
	createdAt := carbon.Now(carbon.UTC).ToDateTimeString()

	compressed, err := r.compressor.Compress([]byte(post.Content))
	if err != nil {
		return fmt.Errorf("error compressing content: %w", err)
	}

	query, args, err := dialect.Insert(postsTable).
		Prepared(true).
		Rows(goqu.Record{
			colTitle:     post.Title,
			colAuthor:    post.Author,
			colContent:   compressed,
			colPermalink: post.Permalink,
			colTags:      post.Tags,
			colCreatedAt: createdAt,
		}).
		ToSQL()
	if err != nil {
		return fmt.Errorf("error building insert: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrDuplicatePermalink, post.Permalink)
		}
		return fmt.Errorf("error saving post: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("error reading new post id: %w", err)
	}

	post.ID = model.PostID(id)
	post.CreatedAt = createdAt

	repoLogger.Debug().Int64("id", id).Str("permalink", post.Permalink).Msg("Post saved")
	return nil
}

func (r *DBPostRepository) Count(ctx context.Context) (int, error) {
	query, args, err := dialect.From(postsTable).
		Prepared(true).
		Select(goqu.COUNT(goqu.Star())).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("error building count: %w", err)
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting posts: %w", err)
	}
	return count, nil
}

func (r *DBPostRepository) Find(ctx context.Context, permalink string) (*model.Post, error) {
	query, args, err := dialect.From(postsTable).
		Prepared(true).
		Select(postColumns...).
		Where(goqu.C(colPermalink).Eq(permalink)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("error building find: %w", err)
	}

	post, err := r.scanPost(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrPostNotFound, permalink)
	}
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (r *DBPostRepository) Random(ctx context.Context) (*model.Post, error) {
	query, args, err := dialect.From(postsTable).
		Select(postColumns...).
		Order(goqu.Func("RANDOM").Asc()).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("error building random: %w", err)
	}

	post, err := r.scanPost(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (r *DBPostRepository) Paginated(ctx context.Context, page, size int) ([]model.Post, error) {
	posts := make([]model.Post, 0, max(size, 0))

	if page < 1 || size < 1 || page-1 > math.MaxInt/size {
		return posts, nil
	}

	// Limit and offset are rendered inline; the query takes no user strings.
	query, args, err := dialect.From(postsTable).
		Select(postColumns...).
		Order(goqu.C(colID).Asc()).
		Limit(uint(size)).
		Offset(uint((page - 1) * size)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("error building page query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying posts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		post, err := r.scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posts: %w", err)
	}

	return posts, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *DBPostRepository) scanPost(row scanner) (*model.Post, error) {
	var post model.Post
	var compressed []byte

	err := row.Scan(&post.ID, &post.Title, &post.Author, &compressed, &post.Permalink, &post.Tags, &post.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("error scanning post: %w", err)
	}

	content, err := r.compressor.Decompress(compressed)
	if err != nil {
		return nil, fmt.Errorf("error decompressing content: %w", err)
	}
	post.Content = string(content)

	return &post, nil
}
