package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/tie/mclaunch/metrics"
	"github.com/tie/mclaunch/models"
)

const (
	manifestPath   = "/mc/game/version_manifest.json"
	defaultBackoff = 500 * time.Millisecond

	// Don’t read documents larger than 64MiB.
	maxDocumentSize = 64 << 20
)

// DefaultMirrors lists equivalent manifest hosts in failover order.
var DefaultMirrors = []string{
	"https://launchermeta.mojang.com",
	"https://bmclapi2.bangbang93.com",
}

// IsSupported reports whether a version id is 1.7.10 or newer. Ids that do
// not parse as dotted integers are not supported.
func IsSupported(id string) bool {
	major, minor, patch, ok := parseVersion(id)
	if !ok {
		return false
	}
	switch {
	case major > 1:
		return true
	case major == 1 && minor > 7:
		return true
	case major == 1 && minor == 7 && patch >= 10:
		return true
	}
	return false
}

// parseVersion splits "major.minor.patch"; missing parts are zero.
func parseVersion(id string) (major, minor, patch int, ok bool) {
	parts := strings.Split(id, ".")
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, 0, 0, false
		}
		if i < len(nums) {
			nums[i] = n
		}
	}
	return nums[0], nums[1], nums[2], true
}

// Resolver fetches the version manifest and descriptors, switching to the
// next mirror when a request fails.
type Resolver struct {
	Mirrors []string
	Client  *http.Client

	// Attempts bounds the requests made for one logical operation.
	// Zero means two rounds over Mirrors.
	Attempts int
	// Backoff is the pause before the first retry. It doubles after
	// every failed attempt.
	Backoff time.Duration

	Metrics metrics.Collector
	Log     logrus.FieldLogger
}

// ListSupportedVersions returns the supported version ids in manifest order,
// starting with the mirror at index mirror.
func (r *Resolver) ListSupportedVersions(ctx context.Context, mirror int) ([]string, error) {
	m, err := r.Manifest(ctx, mirror)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(m.Versions))
	for _, v := range m.Versions {
		if IsSupported(v.ID) {
			ids = append(ids, v.ID)
		}
	}
	return ids, nil
}

func (r *Resolver) Manifest(ctx context.Context, mirror int) (*models.Manifest, error) {
	var m *models.Manifest
	err := r.retry(ctx, mirror, func(base string) error {
		var err error
		m, err = r.manifest(ctx, base)
		return err
	})
	return m, err
}

// FetchDetail returns the parsed descriptor of a version together with the
// exact bytes received.
func (r *Resolver) FetchDetail(ctx context.Context, mirror int, id string) (*models.VersionDetail, []byte, error) {
	var (
		detail *models.VersionDetail
		raw    []byte
	)
	err := r.retry(ctx, mirror, func(base string) error {
		m, err := r.manifest(ctx, base)
		if err != nil {
			return err
		}
		entry, ok := m.Find(id)
		if !ok {
			return fmt.Errorf("%w: %q", models.ErrUnknownVersion, id)
		}
		if entry.URL == "" {
			return fmt.Errorf("%w: missing url of version %q", models.ErrMalformedManifest, id)
		}
		data, err := r.get(ctx, entry.URL)
		if err != nil {
			return err
		}
		d, err := models.ParseVersionDetail(data)
		if err != nil {
			return fmt.Errorf("descriptor %q: %w", entry.URL, err)
		}
		detail, raw = d, data
		return nil
	})
	return detail, raw, err
}

func (r *Resolver) manifest(ctx context.Context, base string) (*models.Manifest, error) {
	u := base + manifestPath
	data, err := r.get(ctx, u)
	if err != nil {
		return nil, err
	}
	m, err := models.ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("manifest %q: %w", u, err)
	}
	return m, nil
}

// retry runs fn against successive mirrors until it succeeds, fails with a
// terminal error, or runs out of attempts.
func (r *Resolver) retry(ctx context.Context, mirror int, fn func(base string) error) error {
	n := len(r.Mirrors)
	if n == 0 {
		return errors.New("no mirrors configured")
	}
	attempts := r.Attempts
	if attempts <= 0 {
		attempts = 2 * n
	}
	backoff := r.Backoff
	if backoff <= 0 {
		backoff = defaultBackoff
	}
	lim := rate.NewLimiter(rate.Every(backoff), 1)
	lim.Allow()

	idx := ((mirror % n) + n) % n
	var err error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			if werr := lim.Wait(ctx); werr != nil {
				if ctx.Err() != nil {
					return fmt.Errorf("%w: %v", models.ErrCancelled, werr)
				}
				return werr
			}
		}
		base := strings.TrimRight(r.Mirrors[idx], "/")
		err = fn(base)
		if err == nil || !retryable(err) {
			return err
		}
		r.log().Warnf("mirror %q: %+v", base, err)
		r.metrics().MirrorFailover(base)
		idx = (idx + 1) % n
		lim.SetLimit(lim.Limit() / 2)
	}
	return fmt.Errorf("gave up after %d attempts: %w", attempts, err)
}

// retryable reports whether another mirror may answer differently. A mirror
// serving garbage (a captive portal page, a truncated body) is treated like
// an unreachable one; an id missing from a well-formed manifest is not.
func retryable(err error) bool {
	return errors.Is(err, models.ErrNetwork) || errors.Is(err, models.ErrMalformedManifest)
}

func (r *Resolver) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrNetwork, err)
	}
	resp, err := r.client().Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("get %q: %w", u, models.ErrCancelled)
		}
		return nil, fmt.Errorf("get %q: %w: %v", u, models.ErrNetwork, err)
	}
	defer func() {
		err := resp.Body.Close()
		if err != nil {
			r.log().Warnf("close %q: %+v", u, err)
		}
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("get %q: %w: %s", u, models.ErrNetwork, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("read %q: %w: %v", u, models.ErrNetwork, err)
	}
	return data, nil
}

func (r *Resolver) client() *http.Client {
	if r.Client == nil {
		return http.DefaultClient
	}
	return r.Client
}

func (r *Resolver) metrics() metrics.Collector {
	if r.Metrics == nil {
		return metrics.Noop()
	}
	return r.Metrics
}

func (r *Resolver) log() logrus.FieldLogger {
	if r.Log == nil {
		return logrus.StandardLogger()
	}
	return r.Log
}
