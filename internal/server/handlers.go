package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/the-blog/internal/config"
	"github.com/debemdeboas/the-blog/internal/model"
	"github.com/debemdeboas/the-blog/internal/repository"
	"github.com/debemdeboas/the-blog/internal/routes"
)

func (s *Server) pageData(w http.ResponseWriter, r *http.Request) *model.PageData {
	return model.NewPageData(s.cfg, r, s.sessions.PopFlash(w, r))
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	if err := s.view.Render(w, status, page, data); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("template", page).Msg("Failed to render template")
		http.Error(w, config.ErrInternalServerError, http.StatusInternalServerError)
	}
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
	s.render(w, r, http.StatusInternalServerError, config.TemplateError, struct {
		*model.PageData
	}{
		PageData: model.NewPageData(s.cfg, r, nil),
	})
}

// parsePage reads the 1-based page number. Anything that is not an integer
// means the first page; other values are passed through unchanged.
func parsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil {
		return 1
	}
	return page
}

func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	perPage := s.cfg.Content.PostsPerPage
	page := parsePage(r.URL.Query().Get(routes.PageParam))

	total, err := s.posts.Count(ctx)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	posts, err := s.posts.Paginated(ctx, page, perPage)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	data := struct {
		*model.PageData
		model.Pagination
		Posts []model.Post
	}{
		PageData:   s.pageData(w, r),
		Pagination: model.NewPagination(page, total, perPage),
		Posts:      posts,
	}

	s.render(w, r, http.StatusOK, config.TemplateIndex, data)
}

func (s *Server) servePost(w http.ResponseWriter, r *http.Request) {
	permalink := r.PathValue(routes.PostParam)

	post, err := s.posts.Find(r.Context(), permalink)
	if errors.Is(err, repository.ErrPostNotFound) {
		s.serveNotFound(w, r)
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	data := struct {
		*model.PageData
		Post *model.Post
	}{
		PageData: s.pageData(w, r),
		Post:     post,
	}

	s.render(w, r, http.StatusOK, config.TemplatePost, data)
}

func (s *Server) serveRandom(w http.ResponseWriter, r *http.Request) {
	post, err := s.posts.Random(r.Context())
	if errors.Is(err, repository.ErrPostNotFound) {
		s.sessions.SetFlash(w, r, config.FlashInfo, config.MsgNoPostsYet)
		http.Redirect(w, r, routes.Root, http.StatusFound)
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	http.Redirect(w, r, post.Path(), http.StatusFound)
}

func (s *Server) serveNotFound(w http.ResponseWriter, r *http.Request) {
	data := struct {
		*model.PageData
		Path string
	}{
		PageData: s.pageData(w, r),
		Path:     r.URL.Path,
	}

	s.render(w, r, http.StatusNotFound, config.TemplateNotFound, data)
}

func (s *Server) serveWelcome(w http.ResponseWriter, r *http.Request) {
	data := struct {
		*model.PageData
		Next string
	}{
		PageData: s.pageData(w, r),
		Next:     routes.SafeNext(r.URL.Query().Get(config.FormNext)),
	}

	s.render(w, r, http.StatusOK, config.TemplateWelcome, data)
}

func (s *Server) serveWelcomeAck(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, config.ErrBadRequest, http.StatusBadRequest)
		return
	}

	if err := s.sessions.Acknowledge(r); err != nil {
		s.serverError(w, r, err)
		return
	}

	http.Redirect(w, r, routes.SafeNext(r.PostForm.Get(config.FormNext)), http.StatusSeeOther)
}

func serveRobots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(config.HCType, config.CTypePlain)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("User-agent: *\nDisallow: " + routes.NewPost + "\n"))
}

func (s *Server) serveHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(config.HCType, config.CTypePlain)

	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("Health check failed")
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintln(w, "unavailable")
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}
