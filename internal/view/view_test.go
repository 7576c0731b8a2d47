package view

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/debemdeboas/the-blog/internal/config"
)

func testFS() fstest.MapFS {
	fsys := fstest.MapFS{
		"templates/layout.html": {Data: []byte(`<main>{{template "content" .}}</main>`)},
	}
	for _, page := range pages {
		fsys["templates/"+page] = &fstest.MapFile{Data: []byte(`{{define "content"}}` + page + `:{{.}}{{end}}`)}
	}
	return fsys
}

func TestRender(t *testing.T) {
	r, err := New(testFS())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	rec := httptest.NewRecorder()
	if err := r.Render(rec, http.StatusNotFound, config.TemplateNotFound, "<x>"); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
	if got := rec.Header().Get(config.HCType); got != config.CTypeHTML {
		t.Errorf("Expected content type %q, got %q", config.CTypeHTML, got)
	}
	if rec.Header().Get(config.HETag) == "" {
		t.Error("Expected an ETag")
	}
	if body := rec.Body.String(); body != "<main>404.html:&lt;x&gt;</main>" {
		t.Errorf("Unexpected body %q", body)
	}
}

func TestRenderPagesAreIndependent(t *testing.T) {
	r, err := New(testFS())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	rec := httptest.NewRecorder()
	if err := r.Render(rec, http.StatusOK, config.TemplateIndex, 1); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "index.html:1") {
		t.Errorf("Expected index content, got %q", rec.Body.String())
	}
}

func TestRenderErrors(t *testing.T) {
	t.Run("missing template", func(t *testing.T) {
		fsys := testFS()
		delete(fsys, "templates/"+config.TemplateWelcome)
		if _, err := New(fsys); err == nil {
			t.Error("Expected an error for a missing page")
		}
	})

	t.Run("unknown page", func(t *testing.T) {
		r, err := New(testFS())
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		rec := httptest.NewRecorder()
		if err := r.Render(rec, http.StatusOK, "nope.html", nil); err == nil {
			t.Error("Expected an error for an unknown page")
		}
		if rec.Body.Len() != 0 {
			t.Error("Expected nothing to be written")
		}
	})

	t.Run("execution error writes nothing", func(t *testing.T) {
		fsys := testFS()
		fsys["templates/"+config.TemplateError] = &fstest.MapFile{Data: []byte(`{{define "content"}}{{.Missing}}{{end}}`)}
		r, err := New(fsys)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		rec := httptest.NewRecorder()
		if err := r.Render(rec, http.StatusOK, config.TemplateError, 42); err == nil {
			t.Error("Expected an execution error")
		}
		if rec.Body.Len() != 0 {
			t.Error("Expected nothing to be written")
		}
	})
}
