package media_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/nikolayk812/orderflow/internal/config"
	"github.com/nikolayk812/orderflow/internal/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 answers path-style object requests for a single bucket.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]string
	types   map[string]string
	deletes []string
	fail    bool
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := strings.TrimPrefix(r.URL.Path, "/media/")

	if f.fail {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>AccessDenied</Code><Message>denied</Message></Error>`)
		return
	}

	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[key] = string(body)
		f.types[key] = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	case http.MethodDelete:
		f.deletes = append(f.deletes, key)
		delete(f.objects, key)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newStore(t *testing.T) (*media.S3Store, *fakeS3) {
	t.Helper()

	fake := &fakeS3{objects: map[string]string{}, types: map[string]string{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	store, err := media.NewS3Store(t.Context(), config.StorageConfig{
		Endpoint:        srv.URL,
		Region:          "us-east-1",
		AccessKeyID:     "test",
		SecretAccessKey: "test",
		Bucket:          "media",
		PublicBaseURL:   "https://cdn.example.com/media/",
		UsePathStyle:    true,
	})
	require.NoError(t, err)

	return store, fake
}

func TestUploadReturnsPublicReference(t *testing.T) {
	store, fake := newStore(t)

	ref, err := store.Upload(t.Context(), "products/p1/front.jpg", strings.NewReader("jpeg-bytes"), "image/jpeg")
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/media/products/p1/front.jpg", ref)
	assert.Equal(t, "jpeg-bytes", fake.objects["products/p1/front.jpg"])
	assert.Equal(t, "image/jpeg", fake.types["products/p1/front.jpg"])
}

func TestDeleteByReference(t *testing.T) {
	store, fake := newStore(t)

	require.NoError(t, store.Delete(t.Context(), "https://cdn.example.com/media/products/p1/front.jpg"))
	assert.Equal(t, []string{"products/p1/front.jpg"}, fake.deletes)

	// S3 deletes are idempotent
	require.NoError(t, store.Delete(t.Context(), "https://cdn.example.com/media/products/p1/front.jpg"))
}

func TestDeleteRejectsForeignReference(t *testing.T) {
	store, fake := newStore(t)

	err := store.Delete(t.Context(), "https://elsewhere.example.com/x.jpg")
	require.ErrorIs(t, err, media.ErrForeignReference)
	assert.Empty(t, fake.deletes)
}

func TestDeleteSurfacesStorageErrors(t *testing.T) {
	store, fake := newStore(t)
	fake.fail = true

	err := store.Delete(t.Context(), "https://cdn.example.com/media/a.jpg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delete object")
}

func TestNewS3StoreRequiresBucket(t *testing.T) {
	_, err := media.NewS3Store(t.Context(), config.StorageConfig{PublicBaseURL: "https://cdn"})
	require.Error(t, err)
}
