// Package repository is the post store: the only component that reads or
// writes persisted posts.
package repository

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/the-blog/internal/model"
)

var (
	ErrPostNotFound       = errors.New("post not found")
	ErrDuplicatePermalink = errors.New("a post with this permalink already exists")
	ErrEmptyTitle         = errors.New("post title is empty")
)

type PostRepository interface {
	// Init creates the posts table when it does not exist yet.
	Init(ctx context.Context) error

	// Insert stores a new post, deriving its permalink from the title and
	// filling in ID and CreatedAt. It returns ErrDuplicatePermalink when
	// another post already owns the permalink.
	Insert(ctx context.Context, post *model.Post) error

	Count(ctx context.Context) (int, error)

	// Find returns ErrPostNotFound when no post has exactly this permalink.
	Find(ctx context.Context, permalink string) (*model.Post, error)

	// Random returns ErrPostNotFound when there are no posts.
	Random(ctx context.Context) (*model.Post, error)

	// Paginated returns the 1-based page of posts in insertion order. Pages
	// outside [1, last] come back empty.
	Paginated(ctx context.Context, page, size int) ([]model.Post, error)
}

var repoLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	repoLogger = l
}
