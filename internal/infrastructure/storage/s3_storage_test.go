package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/lumina/storefront/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func validConfig(endpoint string) *config.StorageConfig {
	return &config.StorageConfig{
		Enabled:      true,
		Endpoint:     endpoint,
		Region:       "us-east-1",
		Bucket:       "lumina-products",
		AccessKey:    "test-key",
		SecretKey:    "test-secret",
		UsePathStyle: true,
	}
}

func TestNewS3ImageStorage_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.StorageConfig
		wantErr string
	}{
		{"nil config", nil, "configuration is required"},
		{"missing bucket", &config.StorageConfig{AccessKey: "k", SecretKey: "s"}, "bucket is required"},
		{"missing access key", &config.StorageConfig{Bucket: "b", SecretKey: "s"}, "access key is required"},
		{"missing secret key", &config.StorageConfig{Bucket: "b", AccessKey: "k"}, "secret key is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewS3ImageStorage(tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("valid config", func(t *testing.T) {
		s, err := NewS3ImageStorage(validConfig("localhost:9000"))
		require.NoError(t, err)
		assert.Equal(t, "lumina-products", s.Bucket())
		assert.Equal(t, "http://localhost:9000", s.endpoint)
	})
}

func TestNormalizeEndpoint(t *testing.T) {
	got, err := normalizeEndpoint("", false)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000", got)

	got, err = normalizeEndpoint("s3.example.com", true)
	require.NoError(t, err)
	assert.Equal(t, "https://s3.example.com", got)

	got, err = normalizeEndpoint("http://minio:9000/", false)
	require.NoError(t, err)
	assert.Equal(t, "http://minio:9000", got)
}

func TestS3ImageStorage_ObjectURL(t *testing.T) {
	cfg := validConfig("http://minio:9000")

	s, err := NewS3ImageStorage(cfg)
	require.NoError(t, err)
	assert.Equal(t, "http://minio:9000/lumina-products/products/a.png", s.ObjectURL("products/a.png"))

	cfg.UsePathStyle = false
	s, err = NewS3ImageStorage(cfg)
	require.NoError(t, err)
	assert.Equal(t, "http://lumina-products.minio:9000/products/a.png", s.ObjectURL("products/a.png"))

	cfg.PublicURL = "https://cdn.lumina.store/"
	s, err = NewS3ImageStorage(cfg)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.lumina.store/products/a.png", s.ObjectURL("products/a.png"))
}

// fakeS3 answers the handful of S3 calls the storage makes
type fakeS3 struct {
	mu       sync.Mutex
	requests []string
	bodies   map[string][]byte
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)

	switch r.Method {
	case http.MethodHead:
		w.WriteHeader(http.StatusOK)
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.bodies[r.URL.Path] = body
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodDelete:
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestS3ImageStorage_AgainstFakeServer(t *testing.T) {
	fake := &fakeS3{bodies: make(map[string][]byte)}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	s, err := NewS3ImageStorage(validConfig(srv.URL), WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.EnsureBucket(ctx))

	url, err := s.PutImage(ctx, "products/shirt.png", "image/png", []byte("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/lumina-products/products/shirt.png", url)
	assert.Contains(t, string(fake.bodies["/lumina-products/products/shirt.png"]), "png-bytes")

	require.NoError(t, s.DeleteImage(ctx, "products/shirt.png"))

	_, err = s.PutImage(ctx, "", "image/png", nil)
	assert.Error(t, err)

	assert.Contains(t, fake.requests, "HEAD /lumina-products")
	assert.Contains(t, fake.requests, "DELETE /lumina-products/products/shirt.png")
}
