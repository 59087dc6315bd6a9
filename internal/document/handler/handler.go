package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lastutorials/pdfsplit/internal/document"
	"github.com/lastutorials/pdfsplit/internal/document/fixtures"
	"github.com/lastutorials/pdfsplit/internal/document/service"
	"github.com/lastutorials/pdfsplit/pkg/logger"
	"github.com/lastutorials/pdfsplit/pkg/metrics"
)

type summary struct {
	DocumentID  document.ID `json:"documentId"`
	ContentType string      `json:"contentType"`
	HasContent  bool        `json:"hasContent"`
}

func summarize(d *document.Document) summary {
	return summary{DocumentID: d.DocumentID, ContentType: d.ContentType, HasContent: d.HasContent()}
}

// RegisterDocumentRoutes wires the document and fixture endpoints. Any
// writeMW (e.g. auth) guards the mutating routes only.
func RegisterDocumentRoutes(r gin.IRouter, svc *service.Service, writeMW ...gin.HandlerFunc) {
	api := r.Group("/api")
	api.GET("/documents", func(c *gin.Context) {
		list, err := svc.List(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		out := make([]summary, 0, len(list))
		for _, d := range list {
			out = append(out, summarize(d))
		}
		c.JSON(http.StatusOK, out)
	})

	api.GET("/documents/:id", func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		d, err := svc.Get(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, d)
	})

	api.GET("/documents/:id/content", func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		body, ct, err := svc.Content(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.Data(http.StatusOK, ct, body)
	})

	api.GET("/documents/:id/content-url", func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		ttl := 15 * time.Minute
		if raw := c.Query("ttl"); raw != "" {
			d, err := time.ParseDuration(raw)
			if err != nil || d <= 0 || d > 7*24*time.Hour {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ttl"})
				return
			}
			ttl = d
		}
		u, err := svc.ContentURL(c.Request.Context(), id, ttl)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"url": u, "expiresIn": ttl.String()})
	})

	w := api.Group("", writeMW...)
	w.POST("/documents", func(c *gin.Context) {
		var req struct {
			DocumentID  string `json:"documentId"`
			ContentType string `json:"contentType" binding:"required"`
			Content     []byte `json:"content"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		d := &document.Document{DocumentID: document.ID(req.DocumentID), ContentType: req.ContentType, Content: req.Content}
		if err := svc.Create(c.Request.Context(), d); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, summarize(d))
	})

	w.PATCH("/documents/:id", func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		var req struct {
			ContentType *string `json:"contentType,omitempty"`
			Content     *[]byte `json:"content,omitempty"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		d, err := svc.Update(c.Request.Context(), id, service.UpdateRequest{ContentType: req.ContentType, Content: req.Content})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, summarize(d))
	})

	w.DELETE("/documents/:id", func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		if err := svc.Delete(c.Request.Context(), id); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	api.GET("/fixtures", func(c *gin.Context) {
		c.JSON(http.StatusOK, fixtures.All())
	})

	api.GET("/fixtures/:id", func(c *gin.Context) {
		d, ok := fixtures.Lookup(document.ID(c.Param("id")))
		if !ok {
			metrics.FixtureLookups.WithLabelValues("miss").Inc()
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		metrics.FixtureLookups.WithLabelValues("hit").Inc()
		c.JSON(http.StatusOK, d)
	})
}

func pathID(c *gin.Context) (document.ID, bool) {
	id, err := document.ParseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	return id, true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrNoContent):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrExists), errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
