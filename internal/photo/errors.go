package photo

import "fmt"

// ReencodeError reports a failure to decode, resample or encode a photo.
type ReencodeError struct {
	MaxDimension int
	Quality      float64
	Message      string
	Cause        error
}

func (e *ReencodeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("photo re-encode error (max %dpx, quality %.2f): %s: %v", e.MaxDimension, e.Quality, e.Message, e.Cause)
	}
	return fmt.Sprintf("photo re-encode error (max %dpx, quality %.2f): %s", e.MaxDimension, e.Quality, e.Message)
}

func (e *ReencodeError) Unwrap() error {
	return e.Cause
}

// DataURLError reports a malformed data URL.
type DataURLError struct {
	Message string
	Cause   error
}

func (e *DataURLError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("data URL error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("data URL error: %s", e.Message)
}

func (e *DataURLError) Unwrap() error {
	return e.Cause
}
