package config

const (
	HCType        = "Content-Type"
	HETag         = "ETag"
	HCacheControl = "Cache-Control"
	HLocation     = "Location"

	CTypeHTML  = "text/html; charset=utf-8"
	CTypePlain = "text/plain; charset=utf-8"
)

// Form fields of the new-post submission.
const (
	FormPostTitle   = "post-title"
	FormPostAuthor  = "post-author"
	FormPostContent = "post-content"
	FormPostTags    = "post-tags"
	FormNext        = "next"
)

// SecretKeyEnv names the environment variable holding the cookie signing key.
const SecretKeyEnv = "SECRET_KEY"
