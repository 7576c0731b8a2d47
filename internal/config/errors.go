package config

const (
	// Database errors
	ErrInitializeDatabaseFmt = "Failed to initialize database: %v"
	ErrInitializePosts       = "Failed to initialize posts table"
	ErrInitializeSessions    = "Failed to initialize visitor sessions"

	// Request errors
	ErrInternalServerError = "Internal server error"
	ErrBadRequest          = "Bad request"
	ErrMissingFormFieldFmt = "Missing form field: %s"
)

// User-facing notices.
const (
	MsgPostPublished = "Congratulations on publishing another blog post."
	MsgDuplicatePost = "There's already a similar post, maybe use a different title"
	MsgInvalidPost   = "Please give your post a title that can be used as a link"
	MsgNoPostsYet    = "There are no posts yet. Why not write the first one?"
)

// Flash categories.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)
