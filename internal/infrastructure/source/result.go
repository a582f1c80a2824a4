package source

// FailureReason says why a fetch produced no content
type FailureReason string

const (
	ReasonNone      FailureReason = ""
	ReasonDisabled  FailureReason = "disabled"
	ReasonExhausted FailureReason = "fetch_failed"
	ReasonCanceled  FailureReason = "canceled"
)

// FetchResult carries either a page body or the reason there is none
type FetchResult struct {
	URL        string
	Body       string
	StatusCode int
	Attempts   int
	Reason     FailureReason
	Err        error
}

// OK reports whether the fetch produced content
func (r FetchResult) OK() bool {
	return r.Reason == ReasonNone
}
