// Package server maps the blog's routes to the post store, the welcome gate
// and the views.
package server

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/debemdeboas/the-blog/internal/cache"
	"github.com/debemdeboas/the-blog/internal/config"
	"github.com/debemdeboas/the-blog/internal/db"
	"github.com/debemdeboas/the-blog/internal/gate"
	"github.com/debemdeboas/the-blog/internal/metrics"
	"github.com/debemdeboas/the-blog/internal/repository"
	"github.com/debemdeboas/the-blog/internal/routes"
	"github.com/debemdeboas/the-blog/internal/session"
	"github.com/debemdeboas/the-blog/internal/util"
	"github.com/debemdeboas/the-blog/internal/view"
)

type Options struct {
	Config   *config.Config
	Logger   zerolog.Logger
	DB       db.DB
	Posts    repository.PostRepository
	Sessions *session.Manager

	// Metrics and Gatherer are nil when metrics are disabled.
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer

	// Content holds the static and templates directories.
	Content fs.FS
}

type Server struct {
	cfg      *config.Config
	logger   zerolog.Logger
	db       db.DB
	posts    repository.PostRepository
	sessions *session.Manager
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer

	view     *view.Renderer
	gate     *gate.Gate
	validate *validator.Validate
	static   fs.FS
}

func New(opts Options) (*Server, error) {
	if opts.Config == nil || opts.Posts == nil || opts.Sessions == nil || opts.Content == nil {
		return nil, errors.New("server: config, posts, sessions and content are required")
	}

	renderer, err := view.New(opts.Content)
	if err != nil {
		return nil, err
	}

	static, err := fs.Sub(opts.Content, config.StaticLocalDir)
	if err != nil {
		return nil, fmt.Errorf("error opening static content: %w", err)
	}
	if err := hashStatic(static); err != nil {
		return nil, err
	}

	s := &Server{
		cfg:      opts.Config,
		logger:   opts.Logger,
		db:       opts.DB,
		posts:    opts.Posts,
		sessions: opts.Sessions,
		metrics:  opts.Metrics,
		gatherer: opts.Gatherer,

		view:     renderer,
		gate:     gate.New(opts.Sessions, opts.Config.Features.WelcomeGate.Enabled),
		validate: newValidator(),
		static:   static,
	}
	if s.metrics != nil {
		s.gate.OnRedirect = s.metrics.WelcomeRedirectsTotal.Inc
	}

	return s, nil
}

// hashStatic records the ETag of every static file by its URL path.
func hashStatic(static fs.FS) error {
	hashes := make(map[string]string)
	err := fs.WalkDir(static, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := fs.ReadFile(static, path)
		if err != nil {
			return err
		}
		hashes[config.StaticUrlPath+path] = util.ETag(data)
		return nil
	})
	if err != nil {
		return fmt.Errorf("error hashing static content: %w", err)
	}
	cache.SetStaticHashes(hashes)
	return nil
}

// Mux registers every route. List and detail sit behind the welcome gate.
func (s *Server) Mux() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc(routes.PatternIndex, s.gate.Wrap(s.serveIndex))
	mux.HandleFunc(routes.PatternPost, s.gate.Wrap(s.servePost))

	mux.HandleFunc(routes.PatternWelcome, s.serveWelcome)
	mux.HandleFunc(routes.PatternWelcomeAck, s.serveWelcomeAck)
	mux.HandleFunc(routes.PatternRandom, s.serveRandom)
	mux.HandleFunc(routes.PatternNewPostForm, s.serveNewPostForm)
	mux.HandleFunc(routes.PatternNewPost, s.serveNewPost)

	mux.Handle(routes.PatternStatic, http.StripPrefix(config.StaticUrlPath, http.FileServer(http.FS(s.static))))
	mux.HandleFunc(routes.PatternRobots, serveRobots)
	mux.HandleFunc(routes.PatternHealthz, s.serveHealthz)
	if s.gatherer != nil && s.cfg.Features.Metrics.Enabled {
		mux.Handle(routes.PatternMetrics, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	mux.HandleFunc(routes.PatternNotFound, s.serveNotFound)

	return mux
}

// Handler is the mux wrapped in the logging, caching, security, visitor
// and metrics middleware.
func (s *Server) Handler() http.Handler {
	mux := s.Mux()

	var h http.Handler = mux
	if s.metrics != nil {
		h = s.metrics.Middleware(mux)
	}

	h = s.sessions.WithVisitor()(h)
	h = secureHeaders(h)
	h = cacheIt(h)

	h = hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("Request")
	})(h)
	h = hlog.RemoteAddrHandler("ip")(h)
	h = hlog.RequestIDHandler("req_id", "X-Request-Id")(h)
	h = hlog.NewHandler(s.logger)(h)

	return h
}

func cacheIt(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(config.HCacheControl, "no-cache")
		w.Header().Set("Vary", "Cookie")

		// Add etag header to response if it's a static file
		if hash, ok := cache.GetStaticHash(r.URL.Path); ok {
			w.Header().Set(config.HCacheControl, "public, max-age=3600")
			w.Header().Set(config.HETag, hash)
		}

		h.ServeHTTP(w, r)
	})
}

func secureHeaders(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "deny")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "same-origin")

		h.ServeHTTP(w, r)
	})
}
