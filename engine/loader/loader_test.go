package loader

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/Carmen-Shannon/oxy-glb/engine/device"
	"github.com/Carmen-Shannon/oxy-glb/engine/schema"
	"github.com/Carmen-Shannon/oxy-glb/internal/glbtest"
)

// fetcherFunc adapts a function to fetch.Fetcher.
type fetcherFunc func(ctx context.Context, url string) ([]byte, error)

func (f fetcherFunc) Fetch(ctx context.Context, url string) ([]byte, error) {
	return f(ctx, url)
}

func TestLoadFile(t *testing.T) {
	doc, bin := glbtest.Textured()
	path := filepath.Join(t.TempDir(), "textured.glb")
	require.NoError(t, os.WriteFile(path, glbtest.BuildDocument(t, doc, bin), 0o644))
	dev := device.NewRecorder()

	res, err := NewLoader(WithDevice(dev)).Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, path, res.Source)
	assert.Equal(t, "2.0", res.Document.Asset.Version)
	assert.Equal(t, 1, res.Scene.PrimitiveCount())
	assert.Equal(t, 1, dev.CountOf(device.OpCreateTexture))
	assert.Equal(t, len(bin), res.Container.Binary.Length)
}

func TestLoadBytesAndReader(t *testing.T) {
	doc, bin := glbtest.Minimal()
	data := glbtest.BuildDocument(t, doc, bin)
	l := NewLoader()

	res, err := l.LoadBytes(context.Background(), data)
	require.NoError(t, err)
	assert.Empty(t, res.Source)
	assert.Len(t, res.Scene.Nodes(), 1)

	res, err = l.LoadReader(context.Background(), bytes.NewReader(data))
	require.NoError(t, err)
	assert.Len(t, res.Scene.Nodes(), 1)
}

func TestLoadSceneSelection(t *testing.T) {
	doc, bin := glbtest.Minimal()
	doc.Scenes = append(doc.Scenes, schema.Scene{Name: "empty"})
	doc.Scene = glbtest.Ptr(1)
	data := glbtest.BuildDocument(t, doc, bin)

	res, err := NewLoader().LoadBytes(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Scene.Index())
	assert.Empty(t, res.Scene.Nodes())

	res, err = NewLoader(WithSceneIndex(0)).LoadBytes(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Scene.Index())
	assert.Len(t, res.Scene.Nodes(), 1)

	_, err = NewLoader(WithSceneIndex(4)).LoadBytes(context.Background(), data)
	assert.ErrorIs(t, err, common.ErrMissingReference)
}

func TestLoadFetchFailure(t *testing.T) {
	boom := errors.New("connection refused")
	l := NewLoader(WithFetcher(fetcherFunc(func(context.Context, string) ([]byte, error) {
		return nil, boom
	})))

	res, err := l.Load(context.Background(), "https://example.com/box.glb")
	assert.Nil(t, res)
	assert.ErrorIs(t, err, common.ErrResourceCreationFailure)
	assert.ErrorIs(t, err, boom)
}

func TestLoadFetchPassesURL(t *testing.T) {
	doc, bin := glbtest.Minimal()
	data := glbtest.BuildDocument(t, doc, bin)
	var got string
	l := NewLoader(WithFetcher(fetcherFunc(func(_ context.Context, url string) ([]byte, error) {
		got = url
		return data, nil
	})))

	_, err := l.Load(context.Background(), "https://example.com/box.glb")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/box.glb", got)
}

func TestLoadErrors(t *testing.T) {
	doc, bin := glbtest.Minimal()
	good := glbtest.BuildDocument(t, doc, bin)

	cases := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, common.ErrMalformedContainer},
		{"json gltf", []byte(`{"asset":{"version":"2.0"}}`), common.ErrMalformedContainer},
		{"truncated", good[:len(good)-1], common.ErrMalformedContainer},
		{"bad schema", glbtest.Build([]byte(`{"asset":{}}`), nil), common.ErrMalformedSchema},
		{"no scenes", glbtest.Build([]byte(`{"asset":{"version":"2.0"}}`), nil), common.ErrMissingReference},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dev := device.NewRecorder()
			res, err := NewLoader(WithDevice(dev)).LoadBytes(context.Background(), tc.data)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, tc.want)
			assert.Empty(t, dev.Calls())
		})
	}
}

func TestNewLoaderPanicsOnUnknownBackend(t *testing.T) {
	assert.Panics(t, func() {
		NewLoader(WithBackendType(LoaderBackendType(99)))
	})
}
