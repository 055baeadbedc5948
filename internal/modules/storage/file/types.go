package file

import "errors"

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

var (
	errNoFile      = errors.New("no file uploaded")
	errTooLarge    = errors.New("file too large")
	errInvalidType = errors.New("invalid file type")
)

// Uploaded describes a stored image.
type Uploaded struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
}
