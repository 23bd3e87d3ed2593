package migrate

// Record is one product-media link pulled from the source database. It is
// immutable for the lifetime of a batch run.
type Record struct {
	ProductID       int64
	SKU             string
	SystemCode      string
	LinkID          int64
	Order           int
	MediaID         int64
	URL             string
	ImageType       string
	MediaResourceID string
	CompanyID       int64
	ContentType     string
}

// FetchedImage is an image that has been downloaded and persisted in the
// batch's image store under its derived name. The content type sent with the
// upload comes from the record's declared type, not from the bytes.
type FetchedImage struct {
	Name string
}

type Stage string

const (
	StageFetch  Stage = "fetch"
	StageUpload Stage = "upload"
)

// Outcome is the terminal result of one record's pipeline. Stage is empty on
// success; Response carries the upload endpoint's body verbatim.
type Outcome struct {
	Success  bool
	Stage    Stage
	Message  string
	Response string
}

// RecordOutcome pairs a source record with its terminal outcome. The
// coordinator returns these aligned with the input record order.
type RecordOutcome struct {
	Record  Record
	Outcome Outcome
}
