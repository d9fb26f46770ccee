package photo

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
)

// EncodeDataURL wraps data in a base64 data URL with the given MIME type.
func EncodeDataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURL splits a base64 data URL into its MIME type and payload.
func DecodeDataURL(dataURL string) (mimeType string, data []byte, err error) {
	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return "", nil, &DataURLError{Message: "missing data: prefix"}
	}
	meta, body, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, &DataURLError{Message: "missing comma separator"}
	}
	mimeType, ok = strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, &DataURLError{Message: "only base64 data URLs are supported"}
	}

	data, err = base64.StdEncoding.DecodeString(body)
	if err != nil {
		return "", nil, &DataURLError{Message: "invalid base64 body", Cause: err}
	}
	return mimeType, data, nil
}

// FileDataURL builds a data URL from raw file bytes, sniffing the MIME type.
func FileDataURL(data []byte) (string, error) {
	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return "", &DataURLError{Message: fmt.Sprintf("not an image (detected %s)", mimeType)}
	}
	return EncodeDataURL(mimeType, data), nil
}
