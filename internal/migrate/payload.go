package migrate

import (
	"strconv"
	"time"
)

const (
	fileFieldName = "FormFile"

	tenantID   = "2"
	entityType = "product"
	mediaType  = "image"
)

// UploadForm describes one multipart submission: the file part plus the
// metadata fields the upload endpoint expects. It is a value, not a wire
// body; the uploader materialises the actual multipart encoding per attempt.
type UploadForm struct {
	FileField   string
	FileName    string
	ContentType string
	Fields      map[string]string
}

// BuildUploadForm is pure: the attempt timestamp is an argument so retries
// can re-stamp Date without re-reading ambient time here.
func BuildUploadForm(rec Record, img FetchedImage, at time.Time) UploadForm {
	entityID := strconv.FormatInt(rec.ProductID, 10)
	return UploadForm{
		FileField:   fileFieldName,
		FileName:    img.Name,
		ContentType: rec.ContentType,
		Fields: map[string]string{
			"TenantId":        tenantID,
			"EntityType":      entityType,
			"EntityId":        entityID,
			"MediaResourceId": rec.MediaResourceID,
			"Order":           strconv.Itoa(rec.Order),
			"InternalCode":    entityID,
			"MediaType":       mediaType,
			"Date":            at.UTC().Format(time.RFC3339Nano),
		},
	}
}
