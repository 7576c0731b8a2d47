package model

import (
	"net/http"

	"github.com/debemdeboas/the-blog/internal/config"
)

// Flash is a one-shot notice shown on the next rendered page.
type Flash struct {
	Category string `json:"c"`
	Message  string `json:"m"`
}

type PageData struct {
	SiteName string
	Tagline  string

	PageURL string

	Flash *Flash
}

func NewPageData(cfg *config.Config, r *http.Request, flash *Flash) *PageData {
	return &PageData{
		SiteName: cfg.Site.Name,
		Tagline:  cfg.Site.Tagline,
		PageURL:  r.URL.Path,
		Flash:    flash,
	}
}
