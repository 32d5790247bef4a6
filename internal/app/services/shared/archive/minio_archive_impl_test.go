package archive

import (
	"context"
	"io"
	"koppeltaal-service/internal/pkg/fhir_dto"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type putRecorder struct {
	mu      sync.Mutex
	paths   []string
	bodies  [][]byte
	status  int
	headers []http.Header
}

func (p *putRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	p.mu.Lock()
	p.paths = append(p.paths, r.URL.Path)
	p.bodies = append(p.bodies, body)
	p.headers = append(p.headers, r.Header.Clone())
	status := p.status
	p.mu.Unlock()

	if status != 0 {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>InternalError</Code><Message>boom</Message></Error>`))
		return
	}
	w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
	w.WriteHeader(http.StatusOK)
}

func newTestArchive(t *testing.T, rec *putRecorder) *minioArchive {
	t.Helper()
	server := httptest.NewServer(rec)
	t.Cleanup(server.Close)

	u, err := url.Parse(server.URL)
	require.NoError(t, err)
	client, err := minio.New(u.Host, &minio.Options{
		Creds:      credentials.NewStaticV4("access", "secret", ""),
		Secure:     false,
		Region:     "us-east-1",
		MaxRetries: 1,
	})
	require.NoError(t, err)

	a := NewMinioArchive(client, "bundles", zap.NewNop()).(*minioArchive)
	a.now = func() time.Time { return time.Unix(0, 42) }
	return a
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "m1/request-1700000000000000000.json", ObjectKey("m1", "request", time.Unix(1700000000, 0)))
}

func TestMinioArchive_Save(t *testing.T) {
	t.Run("Puts Bundle Under Message And Stage", func(t *testing.T) {
		rec := &putRecorder{}
		a := newTestArchive(t, rec)

		bundle := &fhir_dto.Bundle{ResourceType: "Bundle", ID: "b1", Type: "message"}
		key, err := a.Save(context.Background(), "m1", "fetched", bundle)
		require.NoError(t, err)
		assert.Equal(t, "m1/fetched-42.json", key)

		require.Len(t, rec.paths, 1)
		assert.True(t, strings.HasSuffix(rec.paths[0], "/bundles/m1/fetched-42.json"))
		assert.Contains(t, string(rec.bodies[0]), `"id":"b1"`)
		assert.Equal(t, "application/fhir+json", rec.headers[0].Get("Content-Type"))
	})

	t.Run("Storage Failure", func(t *testing.T) {
		rec := &putRecorder{status: http.StatusInternalServerError}
		a := newTestArchive(t, rec)

		_, err := a.Save(context.Background(), "m1", "request", &fhir_dto.Bundle{ResourceType: "Bundle"})
		require.Error(t, err)
	})
}
