package common

// Page はオフセットページング指定
type Page struct {
	Number  int // 1-based
	PerPage int // 0 以下は実装側デフォルト
}

// PageResult はページング結果
type PageResult[T any] struct {
	Items      []T
	TotalCount int
	TotalPages int
	Page       int
	PerPage    int
}

const (
	DefaultPerPage = 50
	MaxPerPage     = 200
)

// NormalizePage fills defaults and clamps PerPage.
func NormalizePage(p Page) (page, limit, offset int) {
	page = p.Number
	if page <= 0 {
		page = 1
	}
	limit = p.PerPage
	if limit <= 0 {
		limit = DefaultPerPage
	}
	if limit > MaxPerPage {
		limit = MaxPerPage
	}
	offset = (page - 1) * limit
	return
}

// ComputeTotalPages は合計件数と1ページあたり件数から総ページ数を計算します。
func ComputeTotalPages(total, perPage int) int {
	if perPage <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

// NewPageResult assembles a result for an already sliced item set.
func NewPageResult[T any](items []T, total int, p Page) PageResult[T] {
	page, limit, _ := NormalizePage(p)
	if items == nil {
		items = []T{}
	}
	return PageResult[T]{
		Items:      items,
		TotalCount: total,
		TotalPages: ComputeTotalPages(total, limit),
		Page:       page,
		PerPage:    limit,
	}
}

// Paginate slices an in-memory list. Used by non-SQL backends.
func Paginate[T any](all []T, p Page) PageResult[T] {
	_, limit, offset := NormalizePage(p)
	total := len(all)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	out := make([]T, end-offset)
	copy(out, all[offset:end])
	return NewPageResult(out, total, p)
}
