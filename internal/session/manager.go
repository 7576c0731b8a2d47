// Package session identifies visitors with a signed cookie and carries their
// welcome-screen state and one-shot flash notices.
package session

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/debemdeboas/the-blog/internal/config"
	"github.com/debemdeboas/the-blog/internal/model"
)

var sessionLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	sessionLogger = l
}

var ErrNoVisitor = errors.New("no visitor token in context")

type Manager struct {
	signer *Signer
	store  Store

	visitorCookie string
	flashCookie   string
	maxAge        time.Duration
}

func NewManager(cfg config.SessionConfig, secret []byte, store Store) *Manager {
	return &Manager{
		signer: NewSigner(secret),
		store:  store,

		visitorCookie: cfg.VisitorCookie,
		flashCookie:   cfg.FlashCookie,
		maxAge:        time.Duration(cfg.MaxAgeDays) * 24 * time.Hour,
	}
}

// WithVisitor returns middleware that puts the visitor token in the request
// context, issuing a fresh one when the cookie is missing or tampered with.
func (m *Manager) WithVisitor() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := m.visitorFromCookie(r)
			if err != nil {
				if !errors.Is(err, http.ErrNoCookie) {
					zerolog.Ctx(r.Context()).Warn().Err(err).Msg("Discarding visitor cookie")
				}

				token = uuid.NewString()
				m.setCookie(w, r, m.visitorCookie, m.signer.Sign(token), int(m.maxAge.Seconds()))
			}

			next.ServeHTTP(w, r.WithContext(ContextWithVisitor(r.Context(), token)))
		})
	}
}

func (m *Manager) visitorFromCookie(r *http.Request) (string, error) {
	cookie, err := r.Cookie(m.visitorCookie)
	if err != nil {
		return "", err
	}

	token, err := m.signer.Verify(cookie.Value)
	if err != nil {
		return "", err
	}
	if err := uuid.Validate(token); err != nil {
		return "", fmt.Errorf("malformed visitor token: %w", err)
	}
	return token, nil
}

// Acknowledged reports whether the visitor of r has seen the welcome screen.
func (m *Manager) Acknowledged(r *http.Request) (bool, error) {
	token, ok := VisitorFromContext(r.Context())
	if !ok {
		return false, ErrNoVisitor
	}
	return m.store.Acknowledged(r.Context(), token)
}

func (m *Manager) Acknowledge(r *http.Request) error {
	token, ok := VisitorFromContext(r.Context())
	if !ok {
		return ErrNoVisitor
	}
	if err := m.store.Acknowledge(r.Context(), token); err != nil {
		return err
	}
	sessionLogger.Debug().Str("visitor", token).Msg("Visitor acknowledged welcome")
	return nil
}

// SetFlash stores a notice to be shown by the next rendered page.
func (m *Manager) SetFlash(w http.ResponseWriter, r *http.Request, category, message string) {
	data, err := json.Marshal(model.Flash{Category: category, Message: message})
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Failed to encode flash")
		return
	}

	value := m.signer.Sign(base64.RawURLEncoding.EncodeToString(data))
	m.setCookie(w, r, m.flashCookie, value, 0)
}

// PopFlash returns the pending notice, if any, and clears it.
func (m *Manager) PopFlash(w http.ResponseWriter, r *http.Request) *model.Flash {
	cookie, err := r.Cookie(m.flashCookie)
	if err != nil {
		return nil
	}
	m.setCookie(w, r, m.flashCookie, "", -1)

	encoded, err := m.signer.Verify(cookie.Value)
	if err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("Discarding flash cookie")
		return nil
	}

	data, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil
	}

	var flash model.Flash
	if err := json.Unmarshal(data, &flash); err != nil || flash.Message == "" {
		return nil
	}
	return &flash
}

func (m *Manager) setCookie(w http.ResponseWriter, r *http.Request, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
		MaxAge:   maxAge,
	})
}
