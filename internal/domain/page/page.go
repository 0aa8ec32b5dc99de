package page

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// Request is a 1-based page request.
type Request struct {
	Page  int
	Limit int
}

// Normalize clamps the request into range, falling back to defaultLimit
// (or DefaultLimit when that is out of range too).
func (r Request) Normalize(defaultLimit int) Request {
	if defaultLimit < 1 || defaultLimit > MaxLimit {
		defaultLimit = DefaultLimit
	}
	if r.Page < 1 {
		r.Page = DefaultPage
	}
	if r.Limit < 1 {
		r.Limit = defaultLimit
	}
	if r.Limit > MaxLimit {
		r.Limit = MaxLimit
	}
	return r
}

func (r Request) Offset() int {
	if r.Page < 1 {
		return 0
	}
	return (r.Page - 1) * r.Limit
}

type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

func NewMeta(r Request, total int64) Meta {
	pages := 0
	if r.Limit > 0 {
		pages = int((total + int64(r.Limit) - 1) / int64(r.Limit))
	}
	return Meta{Total: total, Page: r.Page, Limit: r.Limit, TotalPages: pages}
}

// Result is one page of items plus its metadata.
type Result[T any] struct {
	Items []T
	Meta  Meta
}
