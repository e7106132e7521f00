package gallery

// Pagination is the page bookkeeping recomputed from the filtered length.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
	TotalItems int `json:"totalItems"`
}

// DefaultPageSize matches the gallery grid of the admin UI.
const DefaultPageSize = 20

// NewPagination computes the page counters for a filtered collection of
// totalItems records. TotalPages is never below 1 and the page index is
// clamped into range.
func NewPagination(totalItems, page, pageSize int) Pagination {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	totalPages := (totalItems + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	if page < 0 {
		page = 0
	}
	if page > totalPages-1 {
		page = totalPages - 1
	}

	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		TotalItems: totalItems,
	}
}

// slicePage returns the records of the current page.
func slicePage(images []Image, p Pagination) []Image {
	start := p.Page * p.PageSize
	if start >= len(images) {
		return []Image{}
	}
	end := start + p.PageSize
	if end > len(images) {
		end = len(images)
	}
	return images[start:end]
}
