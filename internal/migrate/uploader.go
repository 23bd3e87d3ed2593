package migrate

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"media-migrator/internal/storage"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultMaxAttempts   = 3
	DefaultUploadTimeout = 10 * time.Second

	// Base of the exponential backoff: attempt n sleeps baseDelay << n.
	defaultBaseDelay = time.Second
)

type UploaderParams struct {
	UploadURL   string
	APIKey      string
	MaxAttempts int
	Timeout     time.Duration
}

// Uploader submits one record's image to the upload endpoint, retrying with
// exponential backoff. Every attempt rebuilds the form with a fresh Date
// stamp and re-opens the image from the store. All non-200 results are
// retried uniformly; the endpoint does not distinguish retryable statuses.
type Uploader struct {
	client *resty.Client
	store  storage.Store
	params UploaderParams
	logger *slog.Logger

	// Injection points for backoff tests.
	now   func() time.Time
	sleep func(time.Duration)
	delay time.Duration
}

func NewUploader(client *resty.Client, store storage.Store, params UploaderParams, logger *slog.Logger) *Uploader {
	if params.MaxAttempts <= 0 {
		params.MaxAttempts = DefaultMaxAttempts
	}
	if params.Timeout <= 0 {
		params.Timeout = DefaultUploadTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Uploader{
		client: client,
		store:  store,
		params: params,
		logger: logger,
		now:    time.Now,
		sleep:  time.Sleep,
		delay:  defaultBaseDelay,
	}
}

// Upload runs up to MaxAttempts submissions. A 200 ends the loop
// immediately; anything else sleeps 2^attempt base-delay units before the
// next attempt, with no sleep after the last one.
func (u *Uploader) Upload(ctx context.Context, rec Record, img FetchedImage) Outcome {
	logger := u.logger.With("product_id", rec.ProductID, "media_id", rec.MediaID)

	for attempt := 0; attempt < u.params.MaxAttempts; attempt++ {
		body, status, err := u.attempt(ctx, rec, img)

		switch {
		case err != nil:
			logger.Error("upload attempt failed", "attempt", attempt+1, "max_attempts", u.params.MaxAttempts, "error", err)
		case status == http.StatusOK:
			logger.Info("upload successful", "attempt", attempt+1)
			return Outcome{Success: true, Message: "Uploaded successfully", Response: body}
		default:
			// The body is captured for diagnostics only; it does not change
			// the retry decision.
			logger.Error("upload rejected", "attempt", attempt+1, "max_attempts", u.params.MaxAttempts, "status_code", status, "response", body)
		}

		if attempt < u.params.MaxAttempts-1 {
			u.sleep(u.delay << attempt)
		}
	}

	return Outcome{Stage: StageUpload, Message: "Max retries reached"}
}

func (u *Uploader) attempt(ctx context.Context, rec Record, img FetchedImage) (string, int, error) {
	file, err := u.store.Open(ctx, img.Name)
	if err != nil {
		return "", 0, err
	}
	defer file.Close()

	form := BuildUploadForm(rec, img, u.now())

	attemptCtx, cancel := context.WithTimeout(ctx, u.params.Timeout)
	defer cancel()

	res, err := u.client.R().
		SetContext(attemptCtx).
		SetHeader("Accept", "application/json").
		SetHeader("api-key", u.params.APIKey).
		SetMultipartField(form.FileField, form.FileName, form.ContentType, file).
		SetFormData(form.Fields).
		Post(u.params.UploadURL)
	if err != nil {
		return "", 0, err
	}

	return res.String(), res.StatusCode(), nil
}
