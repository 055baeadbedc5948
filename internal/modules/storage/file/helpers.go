package file

import (
	"fmt"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// sanitizeFilename keeps the base name with a conservative character set.
func sanitizeFilename(original string) string {
	name := filepath.Base(strings.ReplaceAll(strings.TrimSpace(original), "\\", "/"))
	name = unsafeNameChars.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-.")
	if name == "" {
		return strings.ReplaceAll(uuid.NewString(), "-", "")[:18]
	}
	return name
}

// objectKey builds YYYY/MM/<unix-ms>-<name> in UTC.
func objectKey(now time.Time, original string) string {
	now = now.UTC()
	return fmt.Sprintf("%s/%d-%s", now.Format("2006/01"), now.UnixMilli(), sanitizeFilename(original))
}

// sniffContentType reports the detected media type of head, without
// parameters.
func sniffContentType(head []byte) string {
	ct := http.DetectContentType(head)
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.TrimSpace(ct)
}
