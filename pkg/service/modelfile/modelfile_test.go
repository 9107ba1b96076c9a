package modelfile_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/glovebox-dev/glovebox/pkg/service/modelfile"
)

func TestEnsureLocalCopy(t *testing.T) {
	t.Run("downloads once and reuses the local file", func(t *testing.T) {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			gt.Value(t, r.URL.Path).Equal("/models/qwen2-0_5b-instruct-q8_0.gguf")
			_, _ = w.Write([]byte("GGUF weights"))
		}))
		defer srv.Close()

		dir := t.TempDir()
		fetcher := modelfile.New()
		ctx := context.Background()
		url := srv.URL + "/models/qwen2-0_5b-instruct-q8_0.gguf"

		path, err := fetcher.EnsureLocalCopy(ctx, url, dir)
		gt.NoError(t, err).Required()
		gt.Value(t, path).Equal(filepath.Join(dir, "qwen2-0_5b-instruct-q8_0.gguf"))

		data, err := os.ReadFile(path)
		gt.NoError(t, err).Required()
		gt.Value(t, string(data)).Equal("GGUF weights")

		// Second call must not touch the network.
		again, err := fetcher.EnsureLocalCopy(ctx, url, dir)
		gt.NoError(t, err).Required()
		gt.Value(t, again).Equal(path)
		gt.Number(t, hits.Load()).Equal(1)
	})

	t.Run("server error leaves no file behind", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "not found", http.StatusNotFound)
		}))
		defer srv.Close()

		dir := t.TempDir()
		_, err := modelfile.New().EnsureLocalCopy(context.Background(), srv.URL+"/model.gguf", dir)
		gt.Error(t, err)

		_, statErr := os.Stat(filepath.Join(dir, "model.gguf"))
		gt.B(t, os.IsNotExist(statErr)).True()
	})

	t.Run("rejects a URL without a file name", func(t *testing.T) {
		_, err := modelfile.New().EnsureLocalCopy(context.Background(), "https://example.com/", t.TempDir())
		gt.Error(t, err)
	})
}
