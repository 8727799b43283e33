// Package install materialises a game version on local storage.
package install

import (
	"context"
	"fmt"
	"path"
	"sync"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/tie/mclaunch/catalog"
	"github.com/tie/mclaunch/events"
	"github.com/tie/mclaunch/fetcher"
	"github.com/tie/mclaunch/metrics"
	"github.com/tie/mclaunch/models"
)

// Installer downloads the descriptor, client jar, asset index and
// libraries of a version. Every step is skipped when its destination
// already exists.
type Installer struct {
	Files    billy.Filesystem
	Resolver *catalog.Resolver
	// Fetcher defaults to one writing into Files.
	Fetcher *fetcher.Fetcher
	// Platform defaults to models.Platform().
	Platform string
	// Workers above one download libraries in parallel.
	Workers int

	Metrics metrics.Collector
	Log     logrus.FieldLogger
}

// Install downloads version id, starting with the mirror at index mirror.
func (in *Installer) Install(ctx context.Context, id string, mirror int, em *events.Emitter) error {
	start := time.Now()
	err := in.install(ctx, id, mirror, em)
	in.metrics().InstallFinished(time.Since(start), err)
	return err
}

func (in *Installer) install(ctx context.Context, id string, mirror int, em *events.Emitter) error {
	em.Logf("install %s", id)

	em.Progress(10, "version descriptor")
	detail, err := in.descriptor(ctx, id, mirror, em)
	if err != nil {
		return err
	}

	em.Progress(30, "client")
	last := 30
	err = in.fetch(ctx, fetcher.Request{
		URL:  detail.Client.URL,
		Path: ClientPath(id),
		SHA1: detail.Client.SHA1,
		Size: detail.Client.Size,
	}, em, func(written, total int64) {
		p := fetcher.Percent(written, total)
		if p < 0 {
			return
		}
		if p = 30 + p*20/100; p > last {
			last = p
			em.Progress(p, "client")
		}
	})
	if err != nil {
		return fmt.Errorf("client: %w", err)
	}

	em.Progress(50, "asset index")
	err = in.fetch(ctx, fetcher.Request{
		URL:  detail.AssetIndex.URL,
		Path: AssetIndexPath(detail.AssetIndex.ID),
		SHA1: detail.AssetIndex.SHA1,
		Size: detail.AssetIndex.Size,
	}, em, nil)
	if err != nil {
		return fmt.Errorf("asset index: %w", err)
	}

	em.Progress(70, "libraries")
	if err := in.libraries(ctx, detail.Libraries, em); err != nil {
		return err
	}

	em.Progress(100, "done")
	em.Logf("installed %s", id)
	return nil
}

// descriptor returns the persisted descriptor, fetching and saving the
// exact bytes received when there is none yet.
func (in *Installer) descriptor(ctx context.Context, id string, mirror int, em *events.Emitter) (*models.VersionDetail, error) {
	name := DescriptorPath(id)
	ok, err := Exists(in.Files, name)
	if err != nil {
		return nil, err
	}
	if ok {
		in.log().Debugf("skip %q: exists", name)
		d, _, err := ReadDescriptor(in.Files, id)
		return d, err
	}

	em.Logf("fetch descriptor of %s", id)
	d, raw, err := in.Resolver.FetchDetail(ctx, mirror, id)
	if err != nil {
		return nil, err
	}
	if err := writeFile(in.Files, name, raw); err != nil {
		return nil, fmt.Errorf("write %q: %w", name, err)
	}
	return d, nil
}

func (in *Installer) fetch(ctx context.Context, req fetcher.Request, em *events.Emitter, progress fetcher.Progress) error {
	ok, err := Exists(in.Files, req.Path)
	if err != nil {
		return err
	}
	if ok {
		in.log().Debugf("skip %q: exists", req.Path)
		return nil
	}
	em.Logf("fetch %s", req.URL)
	return in.fetcher().Fetch(ctx, req, progress)
}

type libraryJob struct {
	name string
	req  fetcher.Request
}

// libraries downloads included libraries in descriptor order, reporting
// progress from 70 to 100.
func (in *Installer) libraries(ctx context.Context, libs []models.Library, em *events.Emitter) error {
	jobs, err := in.libraryJobs(libs)
	if err != nil {
		return err
	}
	n := len(jobs)
	if n == 0 {
		return nil
	}
	report := func(done int) {
		em.Progress(70+30*done/n, fmt.Sprintf("libraries (%d/%d)", done, n))
	}

	if in.Workers <= 1 {
		for i, job := range jobs {
			if ctx.Err() != nil {
				return models.ErrCancelled
			}
			if err := in.fetchLibrary(ctx, job, em); err != nil {
				return err
			}
			report(i + 1)
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(in.Workers)
	var (
		mu   sync.Mutex
		done int
	)
	for _, job := range jobs {
		job := job
		g.Go(func() error {
			if gctx.Err() != nil {
				return models.ErrCancelled
			}
			if err := in.fetchLibrary(gctx, job, em); err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			done++
			report(done)
			return nil
		})
	}
	return g.Wait()
}

func (in *Installer) libraryJobs(libs []models.Library) ([]libraryJob, error) {
	platform := in.Platform
	if platform == "" {
		platform = models.Platform()
	}
	jobs := make([]libraryJob, 0, len(libs))
	for _, lib := range libs {
		if !lib.Included(platform) {
			in.log().Debugf("skip %q: excluded on %s", lib.Name, platform)
			continue
		}
		p, err := LibraryPath(lib)
		if err != nil {
			return nil, err
		}
		u, err := LibraryURL(lib)
		if err != nil {
			return nil, err
		}
		job := libraryJob{
			name: lib.Name,
			req:  fetcher.Request{URL: u, Path: p},
		}
		if lib.Kind == models.LibraryStructured {
			job.req.SHA1 = lib.Artifact.SHA1
			job.req.Size = lib.Artifact.Size
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func (in *Installer) fetchLibrary(ctx context.Context, job libraryJob, em *events.Emitter) error {
	if job.req.URL == "" {
		in.log().Debugf("skip %q: no download url", job.name)
		return nil
	}
	if err := in.fetch(ctx, job.req, em, nil); err != nil {
		return fmt.Errorf("library %s: %w", path.Base(job.req.Path), err)
	}
	return nil
}

func (in *Installer) fetcher() *fetcher.Fetcher {
	if in.Fetcher != nil {
		return in.Fetcher
	}
	return &fetcher.Fetcher{
		Files:   in.Files,
		Metrics: in.Metrics,
		Log:     in.Log,
	}
}

func (in *Installer) metrics() metrics.Collector {
	if in.Metrics == nil {
		return metrics.Noop()
	}
	return in.Metrics
}

func (in *Installer) log() logrus.FieldLogger {
	if in.Log == nil {
		return logrus.StandardLogger()
	}
	return in.Log
}
