package models

import "fmt"

// ErrorKind classifies every recoverable failure the sanitizer and the
// preview extractor can report. None of them is fatal to the caller.
type ErrorKind string

const (
	ErrorKindNone                   ErrorKind = ""
	ErrorKindUnsupportedScheme      ErrorKind = "UNSUPPORTED_SCHEME"
	ErrorKindMalformed              ErrorKind = "MALFORMED"
	ErrorKindFetchFailed            ErrorKind = "FETCH_FAILED"
	ErrorKindUnsupportedContentType ErrorKind = "UNSUPPORTED_CONTENT_TYPE"
	ErrorKindTimeout                ErrorKind = "TIMEOUT"
	ErrorKindNetworkError           ErrorKind = "NETWORK_ERROR"
	ErrorKindNoMetadataFound        ErrorKind = "NO_METADATA_FOUND"
)

// SanitizeResult is the outcome of cleaning a single raw URL
type SanitizeResult struct {
	CleanedURL       string    `json:"cleaned_url"`
	TimestampSeconds int       `json:"timestamp_seconds,omitempty"`
	HasTimestamp     bool      `json:"has_timestamp,omitempty"`
	WasModified      bool      `json:"was_modified"`
	ErrorKind        ErrorKind `json:"error_kind,omitempty"`
	// DiscoveredKeys holds lowercase parameter names that survived filtering.
	// They are candidates the user may want to add to the block list.
	DiscoveredKeys []string `json:"discovered_keys,omitempty"`
}

// OK reports whether the URL was processed without any error
func (r SanitizeResult) OK() bool {
	return r.ErrorKind == ErrorKindNone && r.CleanedURL != ""
}

// TimestampDisplay formats the preserved timestamp as hh:mm:ss.
// It returns an empty string when no timestamp was preserved.
func (r SanitizeResult) TimestampDisplay() string {
	if !r.HasTimestamp {
		return ""
	}
	return FormatTimestamp(r.TimestampSeconds)
}

// FormatTimestamp renders seconds as zero-padded hh:mm:ss
func FormatTimestamp(seconds int) string {
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
}

// PreviewRecord is the best-effort metadata bundle extracted for a link
type PreviewRecord struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	SiteName    string `json:"site_name,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	IconURL     string `json:"icon_url,omitempty"`
}

// IsEmpty reports whether no field is populated
func (p PreviewRecord) IsEmpty() bool {
	return p.Title == "" && p.Description == "" && p.SiteName == "" && p.ImageURL == "" && p.IconURL == ""
}

// PreviewResult pairs an optional record with an optional user-facing message.
// Record may be non-nil even when Message is set (see ErrorKindNoMetadataFound).
type PreviewResult struct {
	URL     string         `json:"url"`
	Record  *PreviewRecord `json:"record,omitempty"`
	Message string         `json:"message,omitempty"`
	Kind    ErrorKind      `json:"kind,omitempty"`
}

// BatchItem is one line of a batch run: the cleaning outcome plus an optional preview
type BatchItem struct {
	Index    int            `json:"index"`
	Input    string         `json:"input"`
	Domain   string         `json:"domain,omitempty"`
	Result   SanitizeResult `json:"result"`
	Preview  *PreviewResult `json:"preview,omitempty"`
	Duration int64          `json:"duration_ms"`
}
