package config

const (
	//? These paths must match the paths in the embed directive

	StaticLocalDir = "static"
	StaticUrlPath  = "/" + StaticLocalDir + "/"

	TemplatesLocalDir = "templates"

	TemplateLayout   = "layout.html"
	TemplateIndex    = "index.html"
	TemplatePost     = "post.html"
	TemplateNewPost  = "newpost.html"
	TemplateWelcome  = "welcome.html"
	TemplateNotFound = "404.html"
	TemplateError    = "error.html"
)
