package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/the-blog/internal/db"
	"github.com/debemdeboas/the-blog/internal/model"
)

func init() {
	SetLogger(zerolog.New(os.Stdout).Level(zerolog.ErrorLevel))
	db.SetLogger(zerolog.New(os.Stdout).Level(zerolog.ErrorLevel))
}

// forEachDriver runs fn against a fresh in-memory store for every supported
// SQLite driver.
func forEachDriver(t *testing.T, fn func(t *testing.T, ctx context.Context, repo *DBPostRepository)) {
	t.Helper()
	for _, driver := range []string{db.DriverCGo, db.DriverPure} {
		t.Run(driver, func(t *testing.T) {
			ctx := context.Background()
			sqlite := db.NewSQLite(driver, db.MemoryPath)
			if err := sqlite.InitDB(ctx); err != nil {
				t.Fatalf("Failed to initialize database: %v", err)
			}
			t.Cleanup(func() { sqlite.Close() })

			repo := NewDBPostRepository(sqlite)
			if err := repo.Init(ctx); err != nil {
				t.Fatalf("Failed to initialize repository: %v", err)
			}
			fn(t, ctx, repo)
		})
	}
}

func insertN(t *testing.T, ctx context.Context, repo *DBPostRepository, n int) []*model.Post {
	t.Helper()
	posts := make([]*model.Post, 0, n)
	for i := 1; i <= n; i++ {
		post := model.NewPost(fmt.Sprintf("Post %d", i), "tester", fmt.Sprintf("content %d", i), "t")
		if err := repo.Insert(ctx, post); err != nil {
			t.Fatalf("Failed to insert post %d: %v", i, err)
		}
		posts = append(posts, post)
	}
	return posts
}

func TestInitIsIdempotent(t *testing.T) {
	forEachDriver(t, func(t *testing.T, ctx context.Context, repo *DBPostRepository) {
		insertN(t, ctx, repo, 1)
		if err := repo.Init(ctx); err != nil {
			t.Fatalf("Second Init failed: %v", err)
		}
		count, err := repo.Count(ctx)
		if err != nil {
			t.Fatalf("Count failed: %v", err)
		}
		if count != 1 {
			t.Errorf("Expected Init to keep existing posts, got count %d", count)
		}
	})
}

func TestPostsSchemaMatchesReadColumns(t *testing.T) {
	forEachDriver(t, func(t *testing.T, ctx context.Context, repo *DBPostRepository) {
		rows, err := repo.db.QueryContext(ctx, `SELECT name FROM pragma_table_info('posts')`)
		if err != nil {
			t.Fatalf("Failed to read schema: %v", err)
		}
		defer rows.Close()

		var columns []any
		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				t.Fatalf("Failed to scan column: %v", err)
			}
			columns = append(columns, name)
		}
		if err := rows.Err(); err != nil {
			t.Fatalf("Failed to iterate columns: %v", err)
		}

		if fmt.Sprint(columns) != fmt.Sprint(postColumns) {
			t.Errorf("Expected stored columns %v, got %v", postColumns, columns)
		}
	})
}

func TestInsertThenFind(t *testing.T) {
	forEachDriver(t, func(t *testing.T, ctx context.Context, repo *DBPostRepository) {
		content := strings.Repeat("long content ", 2000)
		post := model.NewPost("Hello World", "Ann", content, "go, sql")
		if err := repo.Insert(ctx, post); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}

		if post.ID == 0 {
			t.Error("Expected Insert to assign an ID")
		}
		if post.CreatedAt == "" {
			t.Error("Expected Insert to set CreatedAt")
		}
		if post.Permalink != "Hello-World" {
			t.Errorf("Expected permalink %q, got %q", "Hello-World", post.Permalink)
		}

		found, err := repo.Find(ctx, "Hello-World")
		if err != nil {
			t.Fatalf("Find failed: %v", err)
		}
		if *found != *post {
			t.Errorf("Expected found post %+v to equal inserted post %+v", *found, *post)
		}
	})
}

func TestInsertDerivesPermalinkFromTitle(t *testing.T) {
	forEachDriver(t, func(t *testing.T, ctx context.Context, repo *DBPostRepository) {
		post := &model.Post{Title: "A B  C", Permalink: "ignored"}
		if err := repo.Insert(ctx, post); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
		if post.Permalink != "A-B--C" {
			t.Errorf("Expected permalink %q, got %q", "A-B--C", post.Permalink)
		}
	})
}

func TestInsertRejectsEmptyTitle(t *testing.T) {
	forEachDriver(t, func(t *testing.T, ctx context.Context, repo *DBPostRepository) {
		for _, title := range []string{"", "   "} {
			err := repo.Insert(ctx, model.NewPost(title, "a", "b", "c"))
			if !errors.Is(err, ErrEmptyTitle) {
				t.Errorf("Expected ErrEmptyTitle for %q, got %v", title, err)
			}
		}
	})
}

func TestFindMissing(t *testing.T) {
	forEachDriver(t, func(t *testing.T, ctx context.Context, repo *DBPostRepository) {
		insertN(t, ctx, repo, 1)

		for _, permalink := range []string{"nonexistent-slug", "post-1", "Post-1 ", ""} {
			_, err := repo.Find(ctx, permalink)
			if !errors.Is(err, ErrPostNotFound) {
				t.Errorf("Expected ErrPostNotFound for %q, got %v", permalink, err)
			}
		}
	})
}

func TestCount(t *testing.T) {
	forEachDriver(t, func(t *testing.T, ctx context.Context, repo *DBPostRepository) {
		count, err := repo.Count(ctx)
		if err != nil {
			t.Fatalf("Count failed: %v", err)
		}
		if count != 0 {
			t.Errorf("Expected empty store, got %d", count)
		}

		insertN(t, ctx, repo, 5)

		count, err = repo.Count(ctx)
		if err != nil {
			t.Fatalf("Count failed: %v", err)
		}
		if count != 5 {
			t.Errorf("Expected 5 posts, got %d", count)
		}
	})
}

func TestDuplicatePermalink(t *testing.T) {
	forEachDriver(t, func(t *testing.T, ctx context.Context, repo *DBPostRepository) {
		first := model.NewPost("Hello World", "Ann", "first", "")
		if err := repo.Insert(ctx, first); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}

		second := model.NewPost("Hello World", "Bob", "second", "")
		err := repo.Insert(ctx, second)
		if !errors.Is(err, ErrDuplicatePermalink) {
			t.Fatalf("Expected ErrDuplicatePermalink, got %v", err)
		}

		count, err := repo.Count(ctx)
		if err != nil {
			t.Fatalf("Count failed: %v", err)
		}
		if count != 1 {
			t.Errorf("Expected count to stay at 1, got %d", count)
		}

		found, err := repo.Find(ctx, "Hello-World")
		if err != nil {
			t.Fatalf("Find failed: %v", err)
		}
		if found.Content != "first" {
			t.Errorf("Expected the original post to survive, got content %q", found.Content)
		}
	})
}

func TestPaginated(t *testing.T) {
	forEachDriver(t, func(t *testing.T, ctx context.Context, repo *DBPostRepository) {
		posts := insertN(t, ctx, repo, 7)
		const size = 3

		t.Run("pages follow insertion order", func(t *testing.T) {
			tests := []struct {
				page  int
				wants []string
			}{
				{1, []string{"Post-1", "Post-2", "Post-3"}},
				{2, []string{"Post-4", "Post-5", "Post-6"}},
				{3, []string{"Post-7"}},
			}

			for _, tt := range tests {
				got, err := repo.Paginated(ctx, tt.page, size)
				if err != nil {
					t.Fatalf("Paginated(%d) failed: %v", tt.page, err)
				}
				if len(got) != len(tt.wants) {
					t.Fatalf("Page %d: expected %d posts, got %d", tt.page, len(tt.wants), len(got))
				}
				for i, want := range tt.wants {
					if got[i].Permalink != want {
						t.Errorf("Page %d[%d]: expected %q, got %q", tt.page, i, want, got[i].Permalink)
					}
				}
			}
		})

		t.Run("page sizes sum to total", func(t *testing.T) {
			total := 0
			page := 1
			for ; ; page++ {
				got, err := repo.Paginated(ctx, page, size)
				if err != nil {
					t.Fatalf("Paginated(%d) failed: %v", page, err)
				}
				if len(got) == 0 {
					break
				}
				total += len(got)
			}
			if total != len(posts) {
				t.Errorf("Expected pages to cover %d posts, got %d", len(posts), total)
			}
			if page != model.PageCount(len(posts), size)+1 {
				t.Errorf("Expected first empty page to be %d, got %d", model.PageCount(len(posts), size)+1, page)
			}
		})

		t.Run("out of range pages are empty", func(t *testing.T) {
			for _, page := range []int{0, -1, 4, 100, int(^uint(0) >> 1)} {
				got, err := repo.Paginated(ctx, page, size)
				if err != nil {
					t.Fatalf("Paginated(%d) failed: %v", page, err)
				}
				if got == nil || len(got) != 0 {
					t.Errorf("Page %d: expected an empty, non-nil slice, got %v", page, got)
				}
			}
		})

		t.Run("non-positive size is empty", func(t *testing.T) {
			got, err := repo.Paginated(ctx, 1, 0)
			if err != nil {
				t.Fatalf("Paginated failed: %v", err)
			}
			if len(got) != 0 {
				t.Errorf("Expected no posts, got %d", len(got))
			}
		})
	})
}

func TestRandom(t *testing.T) {
	forEachDriver(t, func(t *testing.T, ctx context.Context, repo *DBPostRepository) {
		if _, err := repo.Random(ctx); !errors.Is(err, ErrPostNotFound) {
			t.Fatalf("Expected ErrPostNotFound on empty store, got %v", err)
		}

		only := insertN(t, ctx, repo, 1)[0]
		for range 5 {
			got, err := repo.Random(ctx)
			if err != nil {
				t.Fatalf("Random failed: %v", err)
			}
			if got.Permalink != only.Permalink {
				t.Errorf("Expected %q, got %q", only.Permalink, got.Permalink)
			}
		}

		more := []*model.Post{
			model.NewPost("Second", "a", "b", ""),
			model.NewPost("Third", "a", "b", ""),
		}
		for _, p := range more {
			if err := repo.Insert(ctx, p); err != nil {
				t.Fatalf("Insert failed: %v", err)
			}
		}
		valid := map[string]bool{only.Permalink: true, "Second": true, "Third": true}
		for range 10 {
			got, err := repo.Random(ctx)
			if err != nil {
				t.Fatalf("Random failed: %v", err)
			}
			if !valid[got.Permalink] {
				t.Errorf("Random returned unknown post %q", got.Permalink)
			}
		}
	})
}

func TestIsUniqueViolation(t *testing.T) {
	if isUniqueViolation(nil) {
		t.Error("nil is not a unique violation")
	}
	if isUniqueViolation(errors.New("disk I/O error")) {
		t.Error("Unrelated error reported as unique violation")
	}
	if !isUniqueViolation(fmt.Errorf("wrapped: %w", errors.New("UNIQUE constraint failed: posts.permalink"))) {
		t.Error("Expected constraint message to be recognised")
	}
}
