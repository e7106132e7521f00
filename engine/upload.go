package engine

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/DarlingInSteam/compressrank-admin/imagesvc"
)

// UploadStatus is the per-file state of an upload queue entry.
type UploadStatus string

const (
	UploadStatusPending   UploadStatus = "pending"
	UploadStatusUploading UploadStatus = "uploading"
	UploadStatusSuccess   UploadStatus = "success"
	UploadStatusError     UploadStatus = "error"
)

// UploadFile is one file submitted for upload.
type UploadFile struct {
	Filename    string
	ContentType string
	Data        io.Reader
}

// UploadItem tracks the outcome of one file in an upload batch.
type UploadItem struct {
	ID       string       `json:"id"`
	Filename string       `json:"filename"`
	Status   UploadStatus `json:"status"`
	Progress int          `json:"progress"`
	ImageID  string       `json:"imageId,omitempty"`
	Error    string       `json:"error,omitempty"`
}

// UploadAll uploads a batch of files sequentially. A failing file is recorded
// on its queue entry and never stops the rest of the batch.
func (e *Engine) UploadAll(ctx context.Context, tok string, identity imagesvc.Identity, files []UploadFile) []UploadItem {
	items := make([]UploadItem, len(files))
	for i, file := range files {
		items[i] = UploadItem{
			ID:       uuid.NewString(),
			Filename: file.Filename,
			Status:   UploadStatusUploading,
		}

		image, err := e.images.Upload(ctx, tok, identity, file.Filename, file.ContentType, file.Data)
		if err != nil {
			log.Warn("Upload failed", "filename", file.Filename, "error", err)
			items[i].Status = UploadStatusError
			items[i].Error = err.Error()
			continue
		}

		items[i].Status = UploadStatusSuccess
		items[i].Progress = 100
		items[i].ImageID = image.ID
		log.Info("Uploaded image", "filename", file.Filename, "imageID", image.ID)
	}

	// Usage changed, drop the uploader's cached quota.
	e.invalidateQuota(ctx, identity.UserID)
	return items
}
