package main

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"watchvault/models"
)

// Watch field limits. Over-long values are truncated, not rejected.
const (
	nameMaxLength      = 60
	brandMaxLength     = 40
	referenceMaxLength = 30
)

const (
	defaultTake = 10
	maxTake     = 50
)

const maxPhotoBytes = 5 * 1024 * 1024

type watchResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Brand     string `json:"brand"`
	Reference string `json:"reference"`
	UserID    string `json:"userId"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

func toWatchResponse(w models.Watch) watchResponse {
	return watchResponse{
		ID:        w.ID,
		Name:      w.Name,
		Brand:     w.Brand,
		Reference: w.Reference,
		UserID:    w.UserID,
		CreatedAt: w.CreatedAt.UnixMilli(),
		UpdatedAt: w.UpdatedAt.UnixMilli(),
	}
}

// clampField trims and truncates a watch text field. Empty means invalid.
func clampField(v string, max int) (string, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", false
	}
	if r := []rune(v); len(r) > max {
		v = strings.TrimSpace(string(r[:max]))
	}
	return v, true
}

func (s *server) listWatchesHandler(c *gin.Context) {
	take := defaultTake
	if v := c.Query("take"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			take = n
		}
	}
	if take > maxTake {
		take = maxTake
	}
	skip := 0
	if v := c.Query("skip"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			skip = n
		}
	}
	owner := ""
	if c.Query("onlyMyWatches") == "true" {
		owner = callerID(c)
	}
	items, count, err := s.watches.List(c.Request.Context(), take, skip, owner)
	if err != nil {
		s.writeError(c, err)
		return
	}
	out := make([]watchResponse, 0, len(items))
	for _, w := range items {
		out = append(out, toWatchResponse(w))
	}
	c.JSON(http.StatusOK, gin.H{"items": out, "totalItems": count, "take": take, "skip": skip})
}

func (s *server) createWatchHandler(c *gin.Context) {
	var req struct {
		Name      string `json:"name"`
		Brand     string `json:"brand"`
		Reference string `json:"reference"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}
	name, ok := clampField(req.Name, nameMaxLength)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
		return
	}
	brand, ok := clampField(req.Brand, brandMaxLength)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "brand required"})
		return
	}
	reference, ok := clampField(req.Reference, referenceMaxLength)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reference required"})
		return
	}

	existing, err := s.watches.FindByReference(c.Request.Context(), reference)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "watch already exists"})
		return
	}
	w := models.Watch{
		ID:        uuid.NewString(),
		UserID:    callerID(c),
		Name:      name,
		Brand:     brand,
		Reference: reference,
	}
	if err := s.watches.Create(c.Request.Context(), &w); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toWatchResponse(w))
}

// ownedWatch loads the watch in the route and checks the caller owns it.
// Writes the failure response itself and returns nil on any miss.
func (s *server) ownedWatch(c *gin.Context) *models.Watch {
	w, err := s.watches.FindByID(c.Request.Context(), c.Param("watchId"))
	if err != nil {
		s.writeError(c, err)
		return nil
	}
	if w == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "watch not found"})
		return nil
	}
	if w.UserID != callerID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return nil
	}
	return w
}

func (s *server) updateWatchHandler(c *gin.Context) {
	w := s.ownedWatch(c)
	if w == nil {
		return
	}
	var req struct {
		Name      *string `json:"name"`
		Brand     *string `json:"brand"`
		Reference *string `json:"reference"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}
	if req.Name != nil {
		v, ok := clampField(*req.Name, nameMaxLength)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
			return
		}
		w.Name = v
	}
	if req.Brand != nil {
		v, ok := clampField(*req.Brand, brandMaxLength)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "brand required"})
			return
		}
		w.Brand = v
	}
	if req.Reference != nil {
		v, ok := clampField(*req.Reference, referenceMaxLength)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "reference required"})
			return
		}
		if v != w.Reference {
			other, err := s.watches.FindByReference(c.Request.Context(), v)
			if err != nil {
				s.writeError(c, err)
				return
			}
			if other != nil && other.ID != w.ID {
				c.JSON(http.StatusConflict, gin.H{"error": "watch already exists"})
				return
			}
		}
		w.Reference = v
	}
	if err := s.watches.Update(c.Request.Context(), w); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWatchResponse(*w))
}

func (s *server) deleteWatchHandler(c *gin.Context) {
	w := s.ownedWatch(c)
	if w == nil {
		return
	}
	if err := s.watches.Delete(c.Request.Context(), w.ID); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWatchResponse(*w))
}

// uploadPhotoHandler handles multipart photo upload for an owned watch.
func (s *server) uploadPhotoHandler(c *gin.Context) {
	w := s.ownedWatch(c)
	if w == nil {
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file missing"})
		return
	}
	if file.Size > maxPhotoBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large (max 5MB)"})
		return
	}
	ct := file.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "not an image"})
		return
	}
	relDir := filepath.Join("watches", w.ID)
	fullDir := filepath.Join(s.cfg.UploadBase, relDir)
	if err := os.MkdirAll(fullDir, 0755); err != nil {
		s.writeError(c, err)
		return
	}
	name := filepath.Base(file.Filename)
	if err := c.SaveUploadedFile(file, filepath.Join(fullDir, name)); err != nil {
		s.writeError(c, err)
		return
	}
	photo := models.WatchPhoto{
		WatchID:     w.ID,
		FileName:    name,
		StorePath:   filepath.Join(relDir, name),
		ContentType: ct,
	}
	if err := s.watches.AddPhoto(c.Request.Context(), &photo); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": photo.ID, "path": photo.StorePath})
}

func (s *server) listPhotosHandler(c *gin.Context) {
	w := s.ownedWatch(c)
	if w == nil {
		return
	}
	photos, err := s.watches.PhotosByWatch(c.Request.Context(), w.ID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	type photoResponse struct {
		ID          uint   `json:"id"`
		FileName    string `json:"fileName"`
		Path        string `json:"path"`
		ThumbPath   string `json:"thumbPath,omitempty"`
		ContentType string `json:"contentType"`
	}
	out := make([]photoResponse, 0, len(photos))
	for _, p := range photos {
		out = append(out, photoResponse{
			ID:          p.ID,
			FileName:    p.FileName,
			Path:        p.StorePath,
			ThumbPath:   p.ThumbPath,
			ContentType: p.ContentType,
		})
	}
	c.JSON(http.StatusOK, out)
}
