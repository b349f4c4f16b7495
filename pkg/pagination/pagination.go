package pagination

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 25
	// MaxLimit caps how many items a single page may carry.
	MaxLimit = 100
)

// Page is the visible slice of a list plus the metadata needed to render a pager.
type Page[T any] struct {
	Items      []T
	Number     int
	Size       int
	TotalItems int
	TotalPages int
}

// NormalizeLimit enforces the default and maximum limits.
func NormalizeLimit(limit int) int {
	return NormalizeLimitWith(limit, DefaultLimit, MaxLimit)
}

// NormalizeLimitWith is NormalizeLimit with caller-supplied bounds.
func NormalizeLimitWith(limit, defaultLimit, maxLimit int) int {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	if maxLimit < defaultLimit {
		maxLimit = defaultLimit
	}
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

// TotalPages is ceil(total/size), and 0 for an empty list.
func TotalPages(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// Resolve returns the page number to render. Page numbers past the last page, or below
// the first, fall back to page 1 so a shrinking result set never renders an empty page.
// The second return value reports whether the requested page was reset.
func Resolve(total, page, size int) (int, bool) {
	pages := TotalPages(total, size)
	if page < 1 {
		return 1, page != 0
	}
	if pages > 0 && page > pages {
		return 1, true
	}
	if pages == 0 && page > 1 {
		return 1, true
	}
	return page, false
}

// Paginate slices items without copying them. Out-of-range pages yield an empty slice.
func Paginate[T any](items []T, page, size int) Page[T] {
	total := len(items)
	out := Page[T]{
		Items:      []T{},
		Number:     page,
		Size:       size,
		TotalItems: total,
		TotalPages: TotalPages(total, size),
	}
	if size <= 0 || page < 1 {
		return out
	}
	start := (page - 1) * size
	if start >= total {
		return out
	}
	end := start + size
	if end > total {
		end = total
	}
	out.Items = items[start:end]
	return out
}
