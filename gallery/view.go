package gallery

import "time"

// DeriveView recomputes the gallery listing from the full image collection
// and the current options. The input slice is never mutated; same inputs
// always produce the same view.
func DeriveView(images []Image, opts Options) View {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	chain := NewChain(
		searchFilter{query: opts.Search},
		dateFilter{dateRange: opts.Date, now: now},
		sizeFilter{bucket: opts.Size},
		compressionFilter{state: opts.Compression},
	)

	filtered := make([]Image, len(images))
	copy(filtered, images)
	filtered = chain.ApplyAll(filtered)

	sortImages(filtered, opts.Sort, opts.Order)

	pagination := NewPagination(len(filtered), opts.Page, opts.PageSize)

	return View{
		Items:      slicePage(filtered, pagination),
		Groups:     groupDerivatives(filtered),
		Pagination: pagination,
	}
}
