package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/debemdeboas/the-blog/internal/config"
	"github.com/debemdeboas/the-blog/internal/model"
	"github.com/debemdeboas/the-blog/internal/repository"
	"github.com/debemdeboas/the-blog/internal/routes"
)

// postForm is the new-post submission. Only the title is constrained: it
// must yield a permalink that a route can serve.
type postForm struct {
	Title   string `validate:"required,permalink"`
	Author  string
	Content string
	Tags    string
}

var formFields = []string{config.FormPostTitle, config.FormPostAuthor, config.FormPostContent, config.FormPostTags}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("permalink", validatePermalink)
	return v
}

// validatePermalink rejects blank titles and titles whose permalink would be
// shadowed by a fixed route or cleaned away from the request path.
func validatePermalink(fl validator.FieldLevel) bool {
	title := fl.Field().String()
	if strings.TrimSpace(title) == "" {
		return false
	}

	permalink := model.Permalink(title)
	return permalink != "." && permalink != ".." && !routes.Reserved(permalink)
}

func (s *Server) renderForm(w http.ResponseWriter, r *http.Request, status int, form postForm, flash *model.Flash) {
	pageData := s.pageData(w, r)
	if flash != nil {
		pageData.Flash = flash
	}

	data := struct {
		*model.PageData
		Form postForm
	}{
		PageData: pageData,
		Form:     form,
	}

	s.render(w, r, status, config.TemplateNewPost, data)
}

func (s *Server) serveNewPostForm(w http.ResponseWriter, r *http.Request) {
	s.renderForm(w, r, http.StatusOK, postForm{}, nil)
}

func (s *Server) serveNewPost(w http.ResponseWriter, r *http.Request) {
	l := zerolog.Ctx(r.Context())

	if err := r.ParseForm(); err != nil {
		http.Error(w, config.ErrBadRequest, http.StatusBadRequest)
		return
	}

	for _, field := range formFields {
		if _, ok := r.PostForm[field]; !ok {
			l.Debug().Str("field", field).Msg("Missing form field")
			http.Error(w, fmt.Sprintf(config.ErrMissingFormFieldFmt, field), http.StatusBadRequest)
			return
		}
	}

	form := postForm{
		Title:   r.PostForm.Get(config.FormPostTitle),
		Author:  r.PostForm.Get(config.FormPostAuthor),
		Content: r.PostForm.Get(config.FormPostContent),
		Tags:    r.PostForm.Get(config.FormPostTags),
	}

	if err := s.validate.Struct(form); err != nil {
		l.Debug().Err(err).Str("title", form.Title).Msg("Invalid post")
		s.renderForm(w, r, http.StatusBadRequest, form, &model.Flash{Category: config.FlashError, Message: config.MsgInvalidPost})
		return
	}

	post := model.NewPost(form.Title, form.Author, form.Content, form.Tags)
	err := s.posts.Insert(r.Context(), post)
	switch {
	case errors.Is(err, repository.ErrDuplicatePermalink):
		l.Warn().Str("permalink", post.Permalink).Msg("Duplicate post submitted")
		if s.metrics != nil {
			s.metrics.DuplicatePostsTotal.Inc()
		}
		s.renderForm(w, r, http.StatusConflict, form, &model.Flash{Category: config.FlashError, Message: config.MsgDuplicatePost})
		return
	case errors.Is(err, repository.ErrEmptyTitle):
		s.renderForm(w, r, http.StatusBadRequest, form, &model.Flash{Category: config.FlashError, Message: config.MsgInvalidPost})
		return
	case err != nil:
		s.serverError(w, r, err)
		return
	}

	l.Info().
		Int64("id", int64(post.ID)).
		Str("permalink", post.Permalink).
		Str("author", post.Author).
		Msg("Post published")
	if s.metrics != nil {
		s.metrics.PostsCreatedTotal.Inc()
	}

	s.sessions.SetFlash(w, r, config.FlashSuccess, config.MsgPostPublished)
	http.Redirect(w, r, post.Path(), http.StatusSeeOther)
}
