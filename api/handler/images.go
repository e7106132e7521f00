package handler

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/ccoveille/go-safecast"
	"github.com/gin-gonic/gin"

	"github.com/DarlingInSteam/compressrank-admin/api/models"
	"github.com/DarlingInSteam/compressrank-admin/engine"
	"github.com/DarlingInSteam/compressrank-admin/gallery"
	"github.com/DarlingInSteam/compressrank-admin/imagesvc"
)

// maxUploadFiles caps how many files one upload request may carry.
const maxUploadFiles = 20

// ListImages serves the derived gallery view.
func (h *Handler) ListImages(c *gin.Context) {
	opts, err := galleryOptions(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.engine.GalleryView(c.Request.Context(), bearerToken(c), opts)
	if err != nil {
		respondError(c, "list images", err)
		return
	}

	c.JSON(http.StatusOK, models.GalleryResponseFrom(view))
}

// galleryOptions collects the derivation inputs from the listing request.
// Invalid enum values fall back to their zero value, numeric parameters must
// parse.
func galleryOptions(c *gin.Context) (gallery.Options, error) {
	opts := gallery.Options{
		Search:      c.Query("search"),
		Sort:        gallery.SortKey(c.Query("sort")),
		Order:       gallery.SortOrder(c.Query("order")),
		Date:        gallery.DateRange(c.Query("date")),
		Size:        gallery.SizeBucket(c.Query("size")),
		Compression: gallery.CompressionState(c.Query("compression")),
		PageSize:    gallery.DefaultPageSize,
	}

	// Pages are zero-based, the way the grid requests them.
	if pageStr := c.Query("page"); pageStr != "" {
		p, err := strconv.ParseUint(pageStr, 10, 32)
		if err != nil {
			return opts, errInvalidParam("page")
		}
		opts.Page, err = safecast.ToInt(p)
		if err != nil {
			return opts, errInvalidParam("page")
		}
	}

	if pageSizeStr := c.Query("pageSize"); pageSizeStr != "" {
		ps, err := strconv.ParseUint(pageSizeStr, 10, 32)
		if err != nil || ps == 0 || ps > 100 {
			return opts, errInvalidParam("pageSize")
		}
		opts.PageSize, err = safecast.ToInt(ps)
		if err != nil {
			return opts, errInvalidParam("pageSize")
		}
	}

	return opts, nil
}

// Upload stores a batch of files and reports the per-file outcome.
func (h *Handler) Upload(c *gin.Context) {
	user := currentUser(c)

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form required"})
		return
	}
	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		fileHeaders = form.File["file"]
	}
	if len(fileHeaders) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files in request"})
		return
	}
	if len(fileHeaders) > maxUploadFiles {
		c.JSON(http.StatusBadRequest, gin.H{"error": "too many files"})
		return
	}

	files := make([]engine.UploadFile, 0, len(fileHeaders))
	openFiles := make([]multipart.File, 0, len(fileHeaders))
	defer func() {
		for _, f := range openFiles {
			f.Close() //nolint:errcheck
		}
	}()

	for _, header := range fileHeaders {
		file, err := header.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read uploaded file"})
			return
		}
		openFiles = append(openFiles, file)
		files = append(files, engine.UploadFile{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        file,
		})
	}

	identity := imagesvc.Identity{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	}
	items := h.engine.UploadAll(c.Request.Context(), bearerToken(c), identity, files)

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// DeleteImage deletes one image.
func (h *Handler) DeleteImage(c *gin.Context) {
	user := currentUser(c)
	id := c.Param("id")

	if err := h.engine.DeleteImage(c.Request.Context(), bearerToken(c), id, user.ID); err != nil {
		respondError(c, "delete image", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ImageMetadata serves the technical metadata of one image.
func (h *Handler) ImageMetadata(c *gin.Context) {
	meta, err := h.engine.ImageMetadata(c.Request.Context(), bearerToken(c), c.Param("id"))
	if err != nil {
		respondError(c, "image metadata", err)
		return
	}
	c.JSON(http.StatusOK, meta)
}

// ImagePreview serves the downscaled preview of one image.
func (h *Handler) ImagePreview(c *gin.Context) {
	if err := h.engine.ServePreview(c.Request.Context(), c.Param("id"), c.Writer, c.Request); err != nil {
		respondError(c, "image preview", err)
	}
}

// Quota serves the usage limits of the calling user, or of another user when
// an administrator asks with ?userId=.
func (h *Handler) Quota(c *gin.Context) {
	user := currentUser(c)

	userID := user.ID
	username := user.Username
	if userIDStr := c.Query("userId"); userIDStr != "" {
		if user.Role != "admin" {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		id, err := strconv.ParseInt(userIDStr, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidParam("userId").Error()})
			return
		}
		userID = id
		username = ""
	}

	quota, err := h.engine.Quota(c.Request.Context(), bearerToken(c), userID, username)
	if err != nil {
		respondError(c, "quota", err)
		return
	}
	c.JSON(http.StatusOK, models.QuotaViewFrom(quota))
}
