// Package gate keeps unacknowledged visitors on the welcome screen.
package gate

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/the-blog/internal/config"
	"github.com/debemdeboas/the-blog/internal/routes"
)

// VisitorState answers whether the visitor behind a request has seen the
// welcome screen.
type VisitorState interface {
	Acknowledged(r *http.Request) (bool, error)
}

type Gate struct {
	state   VisitorState
	enabled bool

	// OnRedirect is called every time a visitor is sent to the welcome screen.
	OnRedirect func()
}

func New(state VisitorState, enabled bool) *Gate {
	return &Gate{state: state, enabled: enabled}
}

// Wrap returns next guarded by the welcome screen. Unacknowledged visitors
// are redirected to it with the original path and query kept as "next".
func (g *Gate) Wrap(next http.HandlerFunc) http.HandlerFunc {
	if !g.enabled {
		return next
	}

	return func(w http.ResponseWriter, r *http.Request) {
		l := zerolog.Ctx(r.Context())

		ack, err := g.state.Acknowledged(r)
		if err != nil {
			l.Error().Err(err).Msg("Failed to read visitor state")
			http.Error(w, config.ErrInternalServerError, http.StatusInternalServerError)
			return
		}

		if !ack {
			l.Debug().Str("next", r.URL.RequestURI()).Msg("Redirecting visitor to welcome")
			if g.OnRedirect != nil {
				g.OnRedirect()
			}
			http.Redirect(w, r, routes.WelcomePath(r.URL.RequestURI()), http.StatusFound)
			return
		}

		next(w, r)
	}
}
