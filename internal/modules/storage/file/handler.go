package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rianAnugrah/xyz-portal-backend/internal/pkg/response"
	"github.com/rianAnugrah/xyz-portal-backend/internal/pkg/storage"
	"go.uber.org/zap"
)

const (
	defaultMaxBytes = 10 << 20
	// multipartSlack covers form boundaries and headers around the file part.
	multipartSlack = 1 << 20
	sniffLen       = 512
)

// Handler uploads images to the object store and lists the gallery.
type Handler struct {
	store    storage.ObjectStore
	maxBytes int64
	logger   *zap.Logger
	now      func() time.Time

	mu          sync.Mutex
	bucketReady bool
}

func NewHandler(store storage.ObjectStore, maxBytes int64, logger *zap.Logger) *Handler {
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, maxBytes: maxBytes, logger: logger.Named("file"), now: time.Now}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.POST("/upload", authMW, h.upload)
	rg.POST("/gallery-upload", authMW, h.upload)
	rg.GET("/gallery", h.gallery)
}

func (h *Handler) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartSlack)
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.PayloadTooLarge(c, h.tooLargeMessage())
			return
		}
		response.BadRequest(c, "No file uploaded")
		return
	}

	out, err := h.save(c.Request.Context(), fh)
	if err != nil {
		switch {
		case errors.Is(err, errTooLarge):
			response.PayloadTooLarge(c, h.tooLargeMessage())
		case errors.Is(err, errInvalidType):
			response.UnsupportedMediaType(c, "Invalid file type. Supported types: image/jpeg, image/png, image/gif")
		case errors.Is(err, errNoFile):
			response.BadRequest(c, "No file uploaded")
		default:
			response.InternalError(c, "Upload failed", err)
		}
		return
	}
	h.logger.Info("image uploaded", zap.String("key", out.Key), zap.Int64("size", out.Size))
	response.OK(c, "Image uploaded successfully", out)
}

// save validates one multipart file and writes it to the bucket.
func (h *Handler) save(ctx context.Context, fh *multipart.FileHeader) (*Uploaded, error) {
	if fh.Size == 0 {
		return nil, errNoFile
	}
	if fh.Size > h.maxBytes {
		return nil, errTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	head = head[:n]
	contentType := sniffContentType(head)
	if !allowedTypes[contentType] {
		return nil, errInvalidType
	}

	if err := h.ensureBucket(ctx); err != nil {
		return nil, err
	}
	key := objectKey(h.now(), fh.Filename)
	body := io.MultiReader(bytes.NewReader(head), f)
	url, err := h.store.Put(ctx, key, body, fh.Size, contentType)
	if err != nil {
		return nil, err
	}
	return &Uploaded{Key: key, URL: url, Size: fh.Size, ContentType: contentType}, nil
}

func (h *Handler) ensureBucket(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.bucketReady {
		return nil
	}
	if err := h.store.EnsureBucket(ctx); err != nil {
		return err
	}
	h.bucketReady = true
	return nil
}

func (h *Handler) gallery(c *gin.Context) {
	objects, err := h.store.List(c.Request.Context(), c.Query("prefix"))
	if err != nil {
		response.InternalError(c, "Failed to list gallery", err)
		return
	}
	if objects == nil {
		objects = []storage.Object{}
	}
	response.OK(c, "Gallery retrieved successfully", objects)
}

func (h *Handler) tooLargeMessage() string {
	return fmt.Sprintf("File exceeds the %dMB limit", h.maxBytes>>20)
}
