package migrate

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/semaphore"
)

const DefaultConcurrency = 8

// ImageFetcher and RecordUploader are the two pipeline stages the
// coordinator drives; they are interfaces so tests can substitute them.
type ImageFetcher interface {
	Fetch(ctx context.Context, rawURL string, productID, mediaID int64) (*FetchedImage, error)
}

type RecordUploader interface {
	Upload(ctx context.Context, rec Record, img FetchedImage) Outcome
}

// Coordinator fans a record set out across concurrent pipeline invocations
// and joins on all of them. One record's failure never aborts its siblings,
// and the returned outcomes are aligned with the input record order, not
// completion order.
type Coordinator struct {
	fetcher     ImageFetcher
	uploader    RecordUploader
	concurrency int
	logger      *slog.Logger

	// ShowProgress renders a terminal progress bar across the batch.
	ShowProgress bool
}

func NewCoordinator(fetcher ImageFetcher, uploader RecordUploader, concurrency int, logger *slog.Logger) *Coordinator {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{fetcher: fetcher, uploader: uploader, concurrency: concurrency, logger: logger}
}

// Run blocks until every record has a terminal outcome.
func (c *Coordinator) Run(ctx context.Context, records []Record) []RecordOutcome {
	results := make([]RecordOutcome, len(records))
	sem := semaphore.NewWeighted(int64(c.concurrency))

	var bar *progressbar.ProgressBar
	if c.ShowProgress {
		bar = progressbar.Default(int64(len(records)), "migrating media")
	}

	var wg sync.WaitGroup
	wg.Add(len(records))
	for i, rec := range records {
		go func(i int, rec Record) {
			defer wg.Done()

			// Each goroutine writes only its own slot, so the results slice
			// needs no lock.
			results[i] = RecordOutcome{Record: rec, Outcome: c.process(ctx, sem, rec)}

			if bar != nil {
				_ = bar.Add(1)
			}
		}(i, rec)
	}
	wg.Wait()

	return results
}

func (c *Coordinator) process(ctx context.Context, sem *semaphore.Weighted, rec Record) (out Outcome) {
	stage := StageFetch
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("pipeline panicked", "product_id", rec.ProductID, "media_id", rec.MediaID, "panic", r)
			out = Outcome{Stage: stage, Message: fmt.Sprintf("panic: %v", r)}
		}
	}()

	if err := sem.Acquire(ctx, 1); err != nil {
		return Outcome{Stage: stage, Message: fmt.Sprintf("exception: %v", err)}
	}
	defer sem.Release(1)

	c.logger.Info("downloading image", "url", rec.URL, "product_id", rec.ProductID, "media_id", rec.MediaID)

	img, err := c.fetcher.Fetch(ctx, rec.URL, rec.ProductID, rec.MediaID)
	if err != nil {
		return Outcome{Stage: StageFetch, Message: err.Error()}
	}

	stage = StageUpload
	return c.uploader.Upload(ctx, rec, *img)
}
