package handler

import (
	"errors"
	"net/http"
	"time"

	"roofline_backend/internal/leads/repository"
	"roofline_backend/internal/storage"
	"roofline_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxPhotoSizeBytes = 20 << 20

// PhotosHandler handles lead photo uploads and listings.
type PhotosHandler struct {
	repo   *repository.Repository
	photos *storage.PhotoStore
}

func NewPhotosHandler(repo *repository.Repository, photos *storage.PhotoStore) *PhotosHandler {
	return &PhotosHandler{repo: repo, photos: photos}
}

func (h *PhotosHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id/photos", h.List)
	rg.POST("/:id/photos", h.Upload)
	rg.GET("/:id/photos/:photoId/download", h.DownloadURL)
}

type photoResponse struct {
	ID        uuid.UUID `json:"id"`
	LeadID    uuid.UUID `json:"leadId"`
	FileName  string    `json:"fileName"`
	CreatedAt time.Time `json:"createdAt"`
}

func (h *PhotosHandler) Upload(c *gin.Context) {
	actor := httpkit.MustGetIdentity(c)
	if actor == nil {
		return
	}

	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	if _, err := h.repo.GetByID(c.Request.Context(), leadID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			httpkit.Error(c, http.StatusNotFound, "Lead not found")
			return
		}
		httpkit.Error(c, http.StatusInternalServerError, "could not load lead")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "file is required")
		return
	}
	if fileHeader.Size > maxPhotoSizeBytes {
		httpkit.Error(c, http.StatusBadRequest, "file too large")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	objectKey, err := h.photos.UploadObject(c.Request.Context(), leadID, fileHeader.Filename, contentType, file, fileHeader.Size)
	if err != nil {
		if errors.Is(err, storage.ErrStorageDisabled) {
			httpkit.Error(c, http.StatusServiceUnavailable, "photo storage not configured")
			return
		}
		httpkit.Error(c, http.StatusInternalServerError, "could not store photo")
		return
	}

	photo, err := h.repo.CreatePhoto(c.Request.Context(), repository.CreatePhotoParams{
		LeadID:     leadID,
		ObjectKey:  objectKey,
		FileName:   fileHeader.Filename,
		UploadedBy: actor.UserID(),
	})
	if err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "could not record photo")
		return
	}

	httpkit.JSON(c, http.StatusCreated, photoResponse{
		ID:        photo.ID,
		LeadID:    photo.LeadID,
		FileName:  photo.FileName,
		CreatedAt: photo.CreatedAt,
	})
}

func (h *PhotosHandler) List(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	photos, err := h.repo.ListPhotos(c.Request.Context(), leadID)
	if err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "could not list photos")
		return
	}

	items := make([]photoResponse, 0, len(photos))
	for _, photo := range photos {
		items = append(items, photoResponse{
			ID:        photo.ID,
			LeadID:    photo.LeadID,
			FileName:  photo.FileName,
			CreatedAt: photo.CreatedAt,
		})
	}
	httpkit.OK(c, gin.H{"items": items})
}

func (h *PhotosHandler) DownloadURL(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	photoID, err := uuid.Parse(c.Param("photoId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	photos, err := h.repo.ListPhotos(c.Request.Context(), leadID)
	if err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "could not list photos")
		return
	}

	for _, photo := range photos {
		if photo.ID != photoID {
			continue
		}
		url, err := h.photos.DownloadURL(c.Request.Context(), photo.ObjectKey)
		if err != nil {
			if errors.Is(err, storage.ErrStorageDisabled) {
				httpkit.Error(c, http.StatusServiceUnavailable, "photo storage not configured")
				return
			}
			httpkit.Error(c, http.StatusInternalServerError, "could not generate download URL")
			return
		}
		httpkit.OK(c, gin.H{"url": url})
		return
	}

	httpkit.Error(c, http.StatusNotFound, "Photo not found")
}
