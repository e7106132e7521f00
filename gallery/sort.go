package gallery

import "sort"

// sortImages orders the slice in place by the selected key. Ties are broken
// by ascending id so the ordering is stable across recomputations: the
// source left tie order up to collection iteration, which has no stable
// equivalent here.
func sortImages(images []Image, key SortKey, order SortOrder) {
	less := lessFunc(key)
	desc := order == OrderDesc

	sort.Slice(images, func(i, j int) bool {
		a, b := images[i], images[j]
		if desc {
			a, b = b, a
		}
		switch {
		case less(a, b):
			return true
		case less(b, a):
			return false
		default:
			return images[i].ID < images[j].ID
		}
	})
}

func lessFunc(key SortKey) func(a, b Image) bool {
	switch key {
	case SortViews:
		return func(a, b Image) bool { return a.ViewCount < b.ViewCount }
	case SortDownloads:
		return func(a, b Image) bool { return a.DownloadCount < b.DownloadCount }
	case SortPopularity:
		return func(a, b Image) bool { return a.Popularity() < b.Popularity() }
	case SortSize:
		return func(a, b Image) bool { return a.Size < b.Size }
	default:
		return func(a, b Image) bool { return a.UploadedAt.Before(b.UploadedAt) }
	}
}
