package storage

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/webdav"
)

func newWebDAVServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(&webdav.Handler{
		FileSystem: webdav.NewMemFS(),
		LockSystem: webdav.NewMemLS(),
	})
	t.Cleanup(srv.Close)
	return srv
}

func TestNewWebDAVStorage_Validation(t *testing.T) {
	_, err := NewWebDAVStorage(WebDAVConfig{URL: ""})
	assert.Error(t, err)

	_, err = NewWebDAVStorage(WebDAVConfig{URL: "http://127.0.0.1:1", Timeout: time.Second})
	assert.Error(t, err)
}

func TestWebDAVStorage_RoundTrip(t *testing.T) {
	srv := newWebDAVServer(t)

	s, err := NewWebDAVStorage(WebDAVConfig{URL: srv.URL, RootPath: "/media/", Timeout: 5 * time.Second})
	require.NoError(t, err)
	assert.Equal(t, "webdav", s.Name())

	ctx := context.Background()
	p := "thumbnails/2024/01/15/key/thumbnail_200.jpeg"

	require.NoError(t, s.SaveWithContext(ctx, p, strings.NewReader("payload")))
	// 目录已存在时再次写入
	require.NoError(t, s.SaveWithContext(ctx, "thumbnails/2024/01/15/key/thumbnail_400.jpeg", strings.NewReader("big")))

	exists, err := s.Exists(ctx, p)
	require.NoError(t, err)
	assert.True(t, exists)

	rc, err := s.GetWithContext(ctx, p)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	require.NoError(t, s.DeleteWithContext(ctx, p))
	exists, err = s.Exists(ctx, p)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = s.GetWithContext(ctx, p)
	assert.True(t, errors.Is(err, ErrNotFound))

	assert.NoError(t, s.Health(ctx))
}

func TestWebDAVStorage_CancelledContext(t *testing.T) {
	srv := newWebDAVServer(t)

	s, err := NewWebDAVStorage(WebDAVConfig{URL: srv.URL})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = s.GetWithContext(ctx, "a.jpg")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWebDAVStorage_FullPath(t *testing.T) {
	s := &WebDAVStorage{rootPath: "/media"}
	assert.Equal(t, "/media/original/a.jpg", s.fullPath("original/a.jpg"))

	s = &WebDAVStorage{}
	assert.Equal(t, "/original/a.jpg", s.fullPath("/original/a.jpg"))
}
