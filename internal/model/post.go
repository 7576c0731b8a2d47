// Package model defines core data structures and types for the blog application.
package model

import (
	"strings"

	"github.com/golang-module/carbon/v2"
	"github.com/samber/lo"

	"github.com/debemdeboas/the-blog/internal/routes"
)

type PostID int64

type Post struct {
	// ID is assigned by the store in insertion order and is the pagination key.
	ID PostID

	Title     string
	Author    string
	Content   string
	Permalink string

	// Free-form, stored exactly as submitted.
	Tags string

	// UTC "YYYY-MM-DD hh:mm:ss", set by the store on insert.
	CreatedAt string
}

// Permalink derives the URL slug of a post from its title.
func Permalink(title string) string {
	return strings.ReplaceAll(title, " ", "-")
}

func NewPost(title, author, content, tags string) *Post {
	return &Post{
		Title:     title,
		Author:    author,
		Content:   content,
		Permalink: Permalink(title),
		Tags:      tags,
	}
}

func (p *Post) Path() string {
	return routes.PostPath(p.Permalink)
}

// TagList splits the free-form tags on commas for display.
func (p *Post) TagList() []string {
	return lo.Compact(lo.Map(strings.Split(p.Tags, ","), func(tag string, _ int) string {
		return strings.TrimSpace(tag)
	}))
}

// Age is the human readable time since the post was created, or "" when the
// timestamp is missing.
func (p *Post) Age() string {
	if p.CreatedAt == "" {
		return ""
	}
	c := carbon.Parse(p.CreatedAt, carbon.UTC)
	if c.IsInvalid() {
		return ""
	}
	return c.DiffForHumans()
}
