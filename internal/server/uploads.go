package server

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// registerUploadRoutes exposes the binary upload endpoint and serves the
// stored files back. Uploaded paths are referenced later as avatar or
// message attachment fields.
func (s *Server) registerUploadRoutes(router *gin.Engine) {
	if err := os.MkdirAll(s.cfg.Uploads.Dir, 0o755); err != nil {
		s.log.Warn("create uploads dir", zap.Error(err), zap.String("dir", s.cfg.Uploads.Dir))
	}

	router.POST("/uploads", s.handleUpload)
	router.Static("/uploads", s.cfg.Uploads.Dir)
}

func (s *Server) handleUpload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.Uploads.MaxSize)

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or oversized file field"})
		return
	}

	// Stored names are server-generated; the client filename only
	// contributes its extension.
	name := uuid.NewString() + filepath.Ext(file.Filename)
	dest := filepath.Join(s.cfg.Uploads.Dir, name)
	if err := c.SaveUploadedFile(file, dest); err != nil {
		s.log.Error("save upload failed", zap.Error(err), zap.String("dest", dest))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store file"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"path": "/uploads/" + name})
}
