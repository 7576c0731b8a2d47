package gate

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/debemdeboas/the-blog/internal/config"
)

type fakeState struct {
	ack bool
	err error
}

func (f fakeState) Acknowledged(*http.Request) (bool, error) {
	return f.ack, f.err
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("content"))
}

func TestGate(t *testing.T) {
	tests := []struct {
		name         string
		state        fakeState
		enabled      bool
		target       string
		wantStatus   int
		wantLocation string
		wantRedirect bool
	}{
		{"unacknowledged root", fakeState{}, true, "/", http.StatusFound, "/welcome", true},
		{"unacknowledged keeps query", fakeState{}, true, "/?page=2", http.StatusFound, "/welcome?next=%2F%3Fpage%3D2", true},
		{"unacknowledged detail", fakeState{}, true, "/Hello-World", http.StatusFound, "/welcome?next=%2FHello-World", true},
		{"acknowledged", fakeState{ack: true}, true, "/", http.StatusOK, "", false},
		{"disabled", fakeState{}, false, "/", http.StatusOK, "", false},
		{"state error", fakeState{err: errors.New("boom")}, true, "/", http.StatusInternalServerError, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(tt.state, tt.enabled)
			redirected := false
			g.OnRedirect = func() { redirected = true }

			rec := httptest.NewRecorder()
			g.Wrap(okHandler)(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if loc := rec.Header().Get(config.HLocation); loc != tt.wantLocation {
				t.Errorf("Expected Location %q, got %q", tt.wantLocation, loc)
			}
			if redirected != tt.wantRedirect {
				t.Errorf("Expected OnRedirect called = %v, got %v", tt.wantRedirect, redirected)
			}
		})
	}
}
