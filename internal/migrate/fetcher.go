package migrate

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path"

	"media-migrator/internal/storage"

	"github.com/go-resty/resty/v2"
)

// FetchError is the terminal failure of an image download. Fetch failures
// are not retried: the retry budget belongs to the upload step only.
type FetchError struct {
	Reason     string // "bad status" or "exception"
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %d", e.Reason, e.StatusCode)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Fetcher downloads a record's image and persists it in the store under its
// derived name.
type Fetcher struct {
	client *resty.Client
	store  storage.Store
	logger *slog.Logger
}

func NewFetcher(client *resty.Client, store storage.Store, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{client: client, store: store, logger: logger}
}

// DeriveFilename renames a source image deterministically so that images
// from different records can never collide in the store.
func DeriveFilename(rawURL string, productID, mediaID int64) string {
	name := rawURL
	if parsed, err := url.Parse(rawURL); err == nil {
		name = parsed.Path
	}
	return fmt.Sprintf("%d_%d_%s", productID, mediaID, path.Base(name))
}

// Fetch downloads the image at rawURL in a single attempt. Anything other
// than a 200 response with a readable body is a *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, productID, mediaID int64) (*FetchedImage, error) {
	res, err := f.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(rawURL)
	if err != nil {
		f.logger.Error("failed to download image", "url", rawURL, "product_id", productID, "media_id", mediaID, "error", err)
		return nil, &FetchError{Reason: "exception", Err: err}
	}

	body := res.RawBody()
	defer body.Close()

	if res.StatusCode() != http.StatusOK {
		f.logger.Error("failed to download image", "url", rawURL, "product_id", productID, "media_id", mediaID, "status_code", res.StatusCode())
		return nil, &FetchError{Reason: "bad status", StatusCode: res.StatusCode()}
	}

	name := DeriveFilename(rawURL, productID, mediaID)
	if err := f.store.Save(ctx, name, body); err != nil {
		f.logger.Error("failed to save image", "name", name, "error", err)
		return nil, &FetchError{Reason: "exception", Err: err}
	}

	f.logger.Info("image downloaded", "url", rawURL, "name", name)
	return &FetchedImage{Name: name}, nil
}
