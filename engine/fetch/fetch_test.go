package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestFetchFile(t *testing.T) {
	path := writeTemp(t, "box.glb", []byte("glTF"))
	f := New()

	data, err := f.Fetch(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []byte("glTF"), data)

	data, err = f.Fetch(context.Background(), "file://"+filepath.ToSlash(path))
	require.NoError(t, err)
	assert.Equal(t, []byte("glTF"), data)
}

func TestFetchBaseDir(t *testing.T) {
	path := writeTemp(t, "box.glb", []byte{1, 2})
	f := New(WithBaseDir(filepath.Dir(path)))

	data, err := f.Fetch(context.Background(), "box.glb")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, data)
}

func TestFetchFileErrors(t *testing.T) {
	f := New(WithMaxBytes(2))

	_, err := f.Fetch(context.Background(), filepath.Join(t.TempDir(), "missing.glb"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = f.Fetch(context.Background(), t.TempDir())
	assert.Error(t, err)

	_, err = f.Fetch(context.Background(), writeTemp(t, "big.glb", []byte{1, 2, 3}))
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = f.Fetch(context.Background(), "ftp://example.com/box.glb")
	assert.Error(t, err)
}

func TestFetchHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/box.glb":
			_, _ = w.Write([]byte("payload"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := New(WithHTTPClient(srv.Client()))

	data, err := f.Fetch(context.Background(), srv.URL+"/box.glb")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)

	_, err = f.Fetch(context.Background(), srv.URL+"/missing.glb")
	assert.ErrorContains(t, err, "404")

	_, err = New(WithHTTPClient(srv.Client()), WithMaxBytes(3)).Fetch(context.Background(), srv.URL+"/box.glb")
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestFetchCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Fetch(ctx, writeTemp(t, "box.glb", []byte{1}))
	assert.ErrorIs(t, err, context.Canceled)
}
