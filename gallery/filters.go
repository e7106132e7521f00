package gallery

import (
	"strings"
	"time"
)

// Size bucket boundaries in bytes.
const (
	sizeTinyMax   = 100 * 1024
	sizeSmallMax  = 500 * 1024
	sizeMediumMax = 1024 * 1024
	sizeLargeMax  = 5 * 1024 * 1024
)

// searchFilter keeps images whose filename, content type or id contains the
// query, case-insensitively. An image matches if any field matches.
type searchFilter struct {
	query string
}

func (f searchFilter) String() string { return "search" }

func (f searchFilter) Apply(images []Image) []Image {
	query := strings.ToLower(strings.TrimSpace(f.query))
	if query == "" {
		return images
	}

	matched := make([]Image, 0, len(images))
	for _, img := range images {
		if strings.Contains(strings.ToLower(img.OriginalFilename), query) ||
			strings.Contains(strings.ToLower(img.ContentType), query) ||
			strings.Contains(strings.ToLower(img.ID), query) {
			matched = append(matched, img)
		}
	}
	return matched
}

// dateFilter keeps images uploaded within the selected range, anchored at
// now. "today" means since local midnight, the other ranges are rolling.
type dateFilter struct {
	dateRange DateRange
	now       time.Time
}

func (f dateFilter) String() string { return "date" }

func (f dateFilter) Apply(images []Image) []Image {
	var cutoff time.Time
	switch f.dateRange {
	case DateToday:
		y, m, d := f.now.Date()
		cutoff = time.Date(y, m, d, 0, 0, 0, 0, f.now.Location())
	case DateWeek:
		cutoff = f.now.AddDate(0, 0, -7)
	case DateMonth:
		cutoff = f.now.AddDate(0, -1, 0)
	case DateYear:
		cutoff = f.now.AddDate(-1, 0, 0)
	default:
		return images
	}

	matched := make([]Image, 0, len(images))
	for _, img := range images {
		if !img.UploadedAt.Before(cutoff) {
			matched = append(matched, img)
		}
	}
	return matched
}

// sizeFilter keeps images inside the selected size bucket.
type sizeFilter struct {
	bucket SizeBucket
}

func (f sizeFilter) String() string { return "size" }

func (f sizeFilter) Apply(images []Image) []Image {
	if f.bucket == SizeAny {
		return images
	}

	matched := make([]Image, 0, len(images))
	for _, img := range images {
		if sizeBucketOf(img.Size) == f.bucket {
			matched = append(matched, img)
		}
	}
	return matched
}

func sizeBucketOf(size int64) SizeBucket {
	switch {
	case size < sizeTinyMax:
		return SizeTiny
	case size < sizeSmallMax:
		return SizeSmall
	case size < sizeMediumMax:
		return SizeMedium
	case size < sizeLargeMax:
		return SizeLarge
	default:
		return SizeHuge
	}
}

// compressionFilter keeps originals or compressed derivatives.
type compressionFilter struct {
	state CompressionState
}

func (f compressionFilter) String() string { return "compression" }

func (f compressionFilter) Apply(images []Image) []Image {
	if f.state == CompressionAll {
		return images
	}

	matched := make([]Image, 0, len(images))
	for _, img := range images {
		switch f.state {
		case CompressionCompressed:
			if img.IsCompressed() {
				matched = append(matched, img)
			}
		case CompressionOriginal:
			if !img.IsCompressed() {
				matched = append(matched, img)
			}
		}
	}
	return matched
}
