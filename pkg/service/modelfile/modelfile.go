// Package modelfile acquires the model weights file the inference server
// runs on. Downloads are idempotent: a file that already exists locally is
// never fetched again.
package modelfile

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"

	"github.com/glovebox-dev/glovebox/pkg/domain/types"
	"github.com/glovebox-dev/glovebox/pkg/utils/logging"
	"github.com/glovebox-dev/glovebox/pkg/utils/safe"
)

type Fetcher struct {
	httpc *http.Client
}

type Option func(*Fetcher)

// WithHTTPClient overrides the HTTP client, mainly for tests.
func WithHTTPClient(c *http.Client) Option {
	return func(x *Fetcher) {
		x.httpc = c
	}
}

func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		httpc: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// EnsureLocalCopy returns the local path of the model file named by
// remoteURL, downloading it into destDir when absent. The download goes
// through a temp file and a rename so a partial fetch never masquerades
// as a complete model.
func (x *Fetcher) EnsureLocalCopy(ctx context.Context, remoteURL, destDir string) (string, error) {
	u, err := url.Parse(remoteURL)
	if err != nil {
		return "", goerr.Wrap(types.ErrInvalidInput, "invalid model URL",
			goerr.V("url", remoteURL),
			goerr.V("cause", err),
		)
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return "", goerr.Wrap(types.ErrInvalidInput, "model URL has no file name",
			goerr.V("url", remoteURL),
		)
	}

	dest := filepath.Join(destDir, name)
	if _, err := os.Stat(dest); err == nil {
		logging.From(ctx).Debug("model file already present", "path", dest)
		return dest, nil
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", goerr.Wrap(err, "failed to create model directory", goerr.V("dir", destDir))
	}

	logging.From(ctx).Info("downloading model file", "url", remoteURL, "dest", dest)
	if err := x.download(ctx, remoteURL, dest); err != nil {
		return "", err
	}

	return dest, nil
}

func (x *Fetcher) download(ctx context.Context, remoteURL, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, remoteURL, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to build download request")
	}

	resp, err := x.httpc.Do(req)
	if err != nil {
		return goerr.Wrap(err, "model download failed", goerr.V("url", remoteURL))
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return goerr.New("unexpected status for model download",
			goerr.V("url", remoteURL),
			goerr.V("status", resp.StatusCode),
		)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return goerr.Wrap(err, "failed to create temp file")
	}

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		safe.Close(ctx, tmp)
		safe.Remove(ctx, os.Remove, tmp.Name())
		return goerr.Wrap(err, "model download interrupted", goerr.V("url", remoteURL))
	}
	if err := tmp.Close(); err != nil {
		safe.Remove(ctx, os.Remove, tmp.Name())
		return goerr.Wrap(err, "failed to flush model file")
	}

	if err := os.Rename(tmp.Name(), dest); err != nil {
		safe.Remove(ctx, os.Remove, tmp.Name())
		return goerr.Wrap(err, "failed to move model file into place", goerr.V("dest", dest))
	}
	return nil
}
