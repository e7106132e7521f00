// Package gallery computes the derived image listing the admin UI renders:
// search, date/size/compression filtering, ordering, grouping of compressed
// derivatives under their source image and pagination bookkeeping.
//
// Everything in this package is a pure recomputation over in-memory records.
// DeriveView never mutates its input and performs no I/O.
package gallery

import "time"

// Image is the image record the view derivation operates on. Statistics
// fields are zero when the statistics backend was unavailable.
type Image struct {
	ID               string
	OriginalFilename string
	ContentType      string
	Size             int64
	CompressionLevel int
	// OriginalImageID references the source image when this record is a
	// compressed derivative. Empty for originals.
	OriginalImageID string
	UploadedAt      time.Time
	AccessCount     int64
	ViewCount       int64
	DownloadCount   int64
	// OriginalSize is the size of the source image before compression,
	// 0 when unknown.
	OriginalSize int64
}

// IsCompressed reports whether the image is a compressed derivative.
func (img Image) IsCompressed() bool {
	return img.CompressionLevel > 0 || img.OriginalImageID != ""
}

// Popularity is the ranking weight used by the popularity sort. Downloads
// weigh double because a download implies a deliberate choice.
func (img Image) Popularity() int64 {
	return img.ViewCount + 2*img.DownloadCount
}

// SortKey selects the ordering of the derived view.
type SortKey string

const (
	SortUploadedAt SortKey = "uploadedAt"
	SortViews      SortKey = "views"
	SortDownloads  SortKey = "downloads"
	SortPopularity SortKey = "popularity"
	SortSize       SortKey = "size"
)

// SortOrder selects the direction of the ordering.
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// DateRange restricts the view to recently uploaded images.
type DateRange string

const (
	DateAny   DateRange = ""
	DateToday DateRange = "today"
	DateWeek  DateRange = "week"
	DateMonth DateRange = "month"
	DateYear  DateRange = "year"
)

// SizeBucket restricts the view to a size class.
type SizeBucket string

const (
	SizeAny    SizeBucket = ""
	SizeTiny   SizeBucket = "tiny"   // < 100 KB
	SizeSmall  SizeBucket = "small"  // 100 KB - 500 KB
	SizeMedium SizeBucket = "medium" // 500 KB - 1 MB
	SizeLarge  SizeBucket = "large"  // 1 MB - 5 MB
	SizeHuge   SizeBucket = "huge"   // >= 5 MB
)

// CompressionState restricts the view to originals or derivatives.
type CompressionState string

const (
	CompressionAll        CompressionState = ""
	CompressionCompressed CompressionState = "compressed"
	CompressionOriginal   CompressionState = "original"
)

// Options are the derivation inputs collected from the listing request.
type Options struct {
	Search      string
	Sort        SortKey
	Order       SortOrder
	Date        DateRange
	Size        SizeBucket
	Compression CompressionState
	Page        int
	PageSize    int
	// Now anchors the date range filters. The zero value means time.Now().
	Now time.Time
}

// Group associates a source image with its compressed derivatives. A
// derivative whose source is absent from the collection becomes a group of
// its own.
type Group struct {
	Original    Image
	Derivatives []Image
}

// View is the derived listing: the current page of the ordered, filtered
// collection plus grouping and pagination bookkeeping.
type View struct {
	Items      []Image
	Groups     []Group
	Pagination Pagination
}
