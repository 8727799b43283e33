package fetcher

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/sirupsen/logrus"

	"github.com/tie/mclaunch/metrics"
	"github.com/tie/mclaunch/models"
)

const chunkSize = 32 * 1024

// Request describes one artifact transfer.
type Request struct {
	URL string
	// Path is slash-separated and relative to the fetcher root.
	Path string
	// SHA1 and Size are verified when set.
	SHA1 string
	Size int64
}

// Progress is called after every chunk. The total is -1 when the
// server did not declare a length.
type Progress func(written, total int64)

// Percent converts a progress report to a percentage, or -1 when the
// total is not known.
func Percent(written, total int64) int {
	if total <= 0 {
		return -1
	}
	if written >= total {
		return 100
	}
	return int(written * 100 / total)
}

type Fetcher struct {
	Files   billy.Filesystem
	Client  *http.Client
	Metrics metrics.Collector
	Log     logrus.FieldLogger
}

// Exists reports whether path is present under the fetcher root.
func (dl *Fetcher) Exists(path string) (bool, error) {
	_, err := dl.Files.Stat(filepath.FromSlash(path))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Fetch streams req.URL into req.Path. The body is written to a temporary
// file next to the destination and renamed into place once complete, so
// the destination only ever holds finished transfers.
func (dl *Fetcher) Fetch(ctx context.Context, req Request, progress Progress) error {
	written, err := dl.fetch(ctx, req, progress)
	dl.metrics().ArtifactFetched(written, err)
	return err
}

func (dl *Fetcher) fetch(ctx context.Context, req Request, progress Progress) (written int64, err error) {
	name := filepath.FromSlash(req.Path)
	dir, base := filepath.Split(name)
	if dir != "" {
		if err := dl.Files.MkdirAll(dir, 0755); err != nil {
			return 0, err
		}
	}

	body, total, err := dl.open(ctx, req.URL)
	if err != nil {
		return 0, err
	}
	defer func() {
		cerr := body.Close()
		if cerr != nil {
			dl.log().Warnf("close %q: %+v", req.URL, cerr)
		}
	}()

	f, err := dl.Files.TempFile(dir, base+".part-")
	if err != nil {
		return 0, err
	}
	tmp := f.Name()
	defer func() {
		if err == nil {
			return
		}
		if rerr := dl.Files.Remove(tmp); rerr != nil && !errors.Is(rerr, os.ErrNotExist) {
			dl.log().Warnf("remove %q: %+v", tmp, rerr)
		}
	}()

	sum := sha1.New()
	w := io.MultiWriter(f, sum)
	written, err = dl.copy(ctx, w, body, total, progress)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return written, fmt.Errorf("fetch %q: %w", req.URL, err)
	}

	if total >= 0 && written < total {
		return written, fmt.Errorf("fetch %q: %w: %d of %d bytes", req.URL, models.ErrIncomplete, written, total)
	}
	if req.Size > 0 && written != req.Size {
		if written < req.Size {
			return written, fmt.Errorf("fetch %q: %w: %d of %d bytes", req.URL, models.ErrIncomplete, written, req.Size)
		}
		return written, fmt.Errorf("fetch %q: %w: size %d, want %d", req.URL, models.ErrSumsMismatch, written, req.Size)
	}
	if req.SHA1 != "" {
		got := hex.EncodeToString(sum.Sum(nil))
		if !strings.EqualFold(got, req.SHA1) {
			return written, fmt.Errorf("fetch %q: %w: sha1 %s, want %s", req.URL, models.ErrSumsMismatch, got, req.SHA1)
		}
	}

	if err := dl.Files.Rename(tmp, name); err != nil {
		return written, err
	}
	return written, nil
}

func (dl *Fetcher) open(ctx context.Context, rawurl string) (io.ReadCloser, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawurl, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", models.ErrNetwork, err)
	}
	resp, err := dl.client().Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, 0, fmt.Errorf("get %q: %w", rawurl, models.ErrCancelled)
		}
		return nil, 0, fmt.Errorf("get %q: %w: %v", rawurl, models.ErrNetwork, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
		return nil, 0, fmt.Errorf("get %q: %w: %s", rawurl, models.ErrNetwork, resp.Status)
	}
	return resp.Body, resp.ContentLength, nil
}

func (dl *Fetcher) copy(ctx context.Context, w io.Writer, r io.Reader, total int64, progress Progress) (int64, error) {
	var written int64
	buf := make([]byte, chunkSize)
	for {
		if ctx.Err() != nil {
			return written, models.ErrCancelled
		}
		n, rerr := r.Read(buf)
		if n > 0 {
			if _, err := w.Write(buf[:n]); err != nil {
				return written, err
			}
			written += int64(n)
			if progress != nil {
				progress(written, total)
			}
		}
		if rerr == io.EOF {
			return written, nil
		}
		if rerr != nil {
			switch {
			case ctx.Err() != nil:
				return written, models.ErrCancelled
			case errors.Is(rerr, io.ErrUnexpectedEOF):
				return written, fmt.Errorf("%w: %v", models.ErrIncomplete, rerr)
			}
			return written, fmt.Errorf("%w: %v", models.ErrNetwork, rerr)
		}
	}
}

func (dl *Fetcher) client() *http.Client {
	if dl.Client == nil {
		return http.DefaultClient
	}
	return dl.Client
}

func (dl *Fetcher) metrics() metrics.Collector {
	if dl.Metrics == nil {
		return metrics.Noop()
	}
	return dl.Metrics
}

func (dl *Fetcher) log() logrus.FieldLogger {
	if dl.Log == nil {
		return logrus.StandardLogger()
	}
	return dl.Log
}
