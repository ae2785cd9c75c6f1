package dto

// Pagination is embedded in list filters bound from the query string.
type Pagination struct {
	Page  int `form:"page,default=1"   validate:"min=1"`
	Limit int `form:"limit,default=50" validate:"min=1,max=200"`
}

// Offset returns the row offset for the current page.
func (p Pagination) Offset() int { return (p.Page - 1) * p.Limit }

// TotalPages rounds total/limit up.
func (p Pagination) TotalPages(total int64) int {
	if p.Limit <= 0 {
		return 0
	}
	return int((total + int64(p.Limit) - 1) / int64(p.Limit))
}

// SearchQuery is the optional free-text filter of catalog lists.
type SearchQuery struct {
	Search string `form:"search" validate:"max=100"`
}
