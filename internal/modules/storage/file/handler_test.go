package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rianAnugrah/xyz-portal-backend/internal/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type fakeStore struct {
	mu          sync.Mutex
	ensureCalls int
	ensureErr   error
	objects     map[string][]byte
	types       map[string]string
	listed      []storage.Object
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeStore) EnsureBucket(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensureCalls++
	return f.ensureErr
}

func (f *fakeStore) Put(_ context.Context, key string, body io.Reader, _ int64, contentType string) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	f.types[key] = contentType
	return f.URL(key), nil
}

func (f *fakeStore) List(context.Context, string) ([]storage.Object, error) {
	return f.listed, nil
}

func (f *fakeStore) URL(key string) string {
	return storage.JoinURL("https://cdn.example.com/portal", key)
}

func newTestRouter(t *testing.T, store storage.ObjectStore, maxBytes int64) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := NewHandler(store, maxBytes, nil)
	h.now = func() time.Time { return time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC) }

	r := gin.New()
	pass := func(c *gin.Context) { c.Next() }
	h.RegisterRoutes(r.Group("/api"), pass)
	return r
}

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func upload(t *testing.T, r *gin.Engine, target, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, ct := multipartBody(t, "file", filename, content)
	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUploadStoresImage(t *testing.T) {
	store := newFakeStore()
	r := newTestRouter(t, store, 1<<20)
	content := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{1}, 64)...)

	for _, target := range []string{"/api/upload", "/api/gallery-upload"} {
		w := upload(t, r, target, "../Foto Banjir (1).png", content)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var env struct {
			Data Uploaded `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		wantKey := "2025/03/1741944600000-Foto-Banjir-1-.png"
		assert.Equal(t, wantKey, env.Data.Key)
		assert.Equal(t, "https://cdn.example.com/portal/"+wantKey, env.Data.URL)
		assert.Equal(t, "image/png", env.Data.ContentType)
		assert.Equal(t, content, store.objects[wantKey])
	}
	assert.Equal(t, 1, store.ensureCalls)
}

func TestUploadRejections(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		file    bool
		code    int
	}{
		{name: "not an image", content: []byte("plain text, not an image"), file: true, code: http.StatusUnsupportedMediaType},
		{name: "too large", content: append(append([]byte{}, pngHeader...), make([]byte, 2048)...), file: true, code: http.StatusRequestEntityTooLarge},
		{name: "missing file field", file: false, code: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			r := newTestRouter(t, store, 1024)

			var w *httptest.ResponseRecorder
			if tt.file {
				w = upload(t, r, "/api/upload", "x.png", tt.content)
			} else {
				body, ct := multipartBody(t, "other", "x.png", pngHeader)
				req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
				req.Header.Set("Content-Type", ct)
				w = httptest.NewRecorder()
				r.ServeHTTP(w, req)
			}
			assert.Equal(t, tt.code, w.Code, w.Body.String())
			assert.Empty(t, store.objects)
		})
	}
}

func TestUploadRetriesBucketAfterFailure(t *testing.T) {
	store := newFakeStore()
	store.ensureErr = errors.New("bucket unavailable")
	r := newTestRouter(t, store, 1<<20)

	w := upload(t, r, "/api/upload", "a.gif", []byte("GIF89a\x01\x00\x01\x00"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	store.ensureErr = nil
	w = upload(t, r, "/api/upload", "a.gif", []byte("GIF89a\x01\x00\x01\x00"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, store.ensureCalls)
}

func TestGalleryListsObjects(t *testing.T) {
	store := newFakeStore()
	store.listed = []storage.Object{{Name: "2025/03/a.png", URL: "https://cdn.example.com/portal/2025/03/a.png"}}
	r := newTestRouter(t, store, 0)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/gallery", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var env struct {
		Data []storage.Object `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.Len(t, env.Data, 1)
	assert.Equal(t, "2025/03/a.png", env.Data[0].Name)

	store.listed = nil
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/gallery", nil))
	assert.JSONEq(t, `{"message":"Gallery retrieved successfully","data":[]}`, w.Body.String())
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"photo.jpg":            "photo.jpg",
		"../../etc/passwd":     "passwd",
		`C:\Users\me\pic.png`:  "pic.png",
		"Foto Banjir (1).png":  "Foto-Banjir-1-.png",
		"...":                  "",
	}
	for in, want := range tests {
		got := sanitizeFilename(in)
		if want == "" {
			assert.Len(t, got, 18, in)
			continue
		}
		assert.Equal(t, want, got, in)
	}
}
