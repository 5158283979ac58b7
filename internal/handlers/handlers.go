package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/insultr/internal/auth"
	"github.com/example/insultr/internal/face"
	"github.com/example/insultr/internal/usecase"
)

// MaxUploadSize is the default cap on uploaded images.
const MaxUploadSize = 10 << 20

// Uploads are stored as PNG objects, so only PNG is accepted.
const imageContentType = "image/png"

// Service is the part of the use case the HTTP layer drives.
type Service interface {
	UploadImage(ctx context.Context, owner string, image []byte) (string, error)
	CurrentImage(ctx context.Context, owner string) ([]byte, string, error)
	Insult(ctx context.Context, owner string) (*usecase.Result, error)
	GetResult(ctx context.Context, owner, requestID string) (*usecase.Result, error)
	GetMetricsSummary(ctx context.Context) (*usecase.MetricsSummary, error)
}

// Options tunes RegisterRoutes. Zero values fall back to defaults; a nil
// Gatherer leaves /metrics unregistered.
type Options struct {
	MaxUploadSize int64
	Gatherer      prometheus.Gatherer
}

// RegisterRoutes wires the HTTP handlers to the Gin router.
func RegisterRoutes(router *gin.Engine, svc Service, authMiddleware gin.HandlerFunc, opts Options) {
	maxUpload := opts.MaxUploadSize
	if maxUpload <= 0 {
		maxUpload = MaxUploadSize
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if opts.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	protected := router.Group("/", authMiddleware)

	protected.POST("/images", func(c *gin.Context) {
		owner, ok := auth.GetUserID(c.Request.Context())
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user"})
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUpload+1<<20)
		file, err := c.FormFile("image")
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image too large"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
			return
		}
		if file.Size > maxUpload {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image too large"})
			return
		}
		if file.Header.Get("Content-Type") != imageContentType {
			c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "image must be png"})
			return
		}

		src, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unable to open image"})
			return
		}
		defer src.Close()

		data, err := io.ReadAll(src)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read image"})
			return
		}
		if http.DetectContentType(data) != imageContentType {
			c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "image must be png"})
			return
		}

		imageURL, err := svc.UploadImage(c.Request.Context(), owner, data)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"image_url": imageURL})
	})

	protected.GET("/images/current", func(c *gin.Context) {
		owner, _ := auth.GetUserID(c.Request.Context())
		data, imageURL, err := svc.CurrentImage(c.Request.Context(), owner)
		if err != nil {
			writeError(c, err)
			return
		}
		c.Header("X-Image-URL", imageURL)
		c.Data(http.StatusOK, http.DetectContentType(data), data)
	})

	protected.POST("/insult", func(c *gin.Context) {
		owner, _ := auth.GetUserID(c.Request.Context())
		result, err := svc.Insult(c.Request.Context(), owner)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	})

	protected.GET("/result/:id", func(c *gin.Context) {
		owner, _ := auth.GetUserID(c.Request.Context())
		result, err := svc.GetResult(c.Request.Context(), owner, c.Param("id"))
		if err != nil {
			if errors.Is(err, usecase.ErrResultNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "result not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load result"})
			return
		}
		c.JSON(http.StatusOK, result)
	})

	protected.GET("/metrics/summary", func(c *gin.Context) {
		summary, err := svc.GetMetricsSummary(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load metrics"})
			return
		}
		c.JSON(http.StatusOK, summary)
	})
}

// writeError maps pipeline errors to responses. Upstream details stay in
// the logs.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrBusy):
		c.JSON(http.StatusConflict, gin.H{"error": "another request is in progress"})
	case errors.Is(err, usecase.ErrNoImage):
		c.JSON(http.StatusNotFound, gin.H{"error": "no current image"})
	case errors.Is(err, face.ErrNoFace):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no face detected"})
	case errors.Is(err, usecase.ErrUploadFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": "image upload failed"})
	case errors.Is(err, usecase.ErrAnalysisFailed), errors.Is(err, face.ErrDecode):
		c.JSON(http.StatusBadGateway, gin.H{"error": "face analysis failed"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
