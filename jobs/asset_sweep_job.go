// File: /jobs/asset_sweep_job.go
package jobs

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"bioloop-api/logger"
	"bioloop-api/repositories"
	"bioloop-api/services"
)

// AssetSweepJob periodically retires stored files that no post references.
// The record commit and the filesystem write are not transactional, so a
// crash between them can strand a file; the sweep reconciles that window.
type AssetSweepJob struct {
	log    *logger.Logger
	posts  *repositories.PostRepository
	media  *services.MediaService
	grace  time.Duration
	ticker *time.Ticker
	done   chan bool
}

// NewAssetSweepJob creates a new sweep job. Files younger than grace are
// never touched: they may belong to a request that has not committed yet.
func NewAssetSweepJob(log *logger.Logger, posts *repositories.PostRepository, media *services.MediaService, interval, grace time.Duration) *AssetSweepJob {
	return &AssetSweepJob{
		log:    log.With("job", "AssetSweepJob"),
		posts:  posts,
		media:  media,
		grace:  grace,
		ticker: time.NewTicker(interval),
		done:   make(chan bool),
	}
}

// Start begins the sweep job
func (j *AssetSweepJob) Start() {
	j.log.Info("asset sweep job started")

	go func() {
		j.sweep()

		for {
			select {
			case <-j.ticker.C:
				j.sweep()
			case <-j.done:
				j.log.Info("asset sweep job stopped")
				return
			}
		}
	}()
}

// Stop stops the sweep job
func (j *AssetSweepJob) Stop() {
	j.ticker.Stop()
	j.done <- true
}

func (j *AssetSweepJob) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	urls, err := j.posts.ReferencedAssetURLs(ctx)
	if err != nil {
		j.log.Error("failed to list referenced assets", "error", err)
		return
	}

	referenced := make(map[string]struct{}, len(urls))
	for _, url := range urls {
		referenced[filepath.Base(url)] = struct{}{}
	}

	entries, err := os.ReadDir(j.media.UploadDir())
	if err != nil {
		j.log.Error("failed to read upload dir", "error", err)
		return
	}

	cutoff := time.Now().Add(-j.grace)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := referenced[entry.Name()]; ok {
			continue
		}

		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}

		j.media.Retire(entry.Name())
		removed++
	}

	if removed > 0 {
		j.log.Info("retired orphaned assets", "count", removed)
	}
}
