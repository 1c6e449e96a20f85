package res25joy

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// IsValidPath validates that a path string is safe to resolve against the
// served root. It checks that the path:
//   - is not empty, ".", or "/"
//   - is relative (does not start with "/")
//   - does not contain ".." (path traversal)
//   - does not contain "//" (empty segments)
//   - does not contain "." segments (./, /./, or ending with /.)
//   - does not contain backslashes
//   - is valid UTF-8
//   - does not contain null bytes, control characters (< 0x20), or DEL (0x7f)
//
// Spaces are allowed; request targets arrive URL-decoded and stored names
// may legitimately contain them.
//
// Returns true if the path is valid, false otherwise.
func IsValidPath(p string) bool {
	if p == "" || p == "/" || p == "." {
		return false
	}

	if p[0] == '/' {
		return false
	}

	if strings.Contains(p, "..") {
		return false
	}

	if strings.Contains(p, "//") {
		return false
	}

	if strings.Contains(p, `\`) {
		return false
	}

	if !utf8.ValidString(p) {
		return false
	}

	if strings.HasPrefix(p, "./") || strings.Contains(p, "/./") || strings.HasSuffix(p, "/.") {
		return false
	}

	for _, r := range p {
		if r < 0x20 || r == 0x7f {
			return false
		}
	}

	return true
}

// SynthesizeUploadName returns the destination name used for uploads that
// arrive without a target path. The name embeds the given time at second
// resolution, matching the wire contract ("upload_<unixtime>.bin").
func SynthesizeUploadName(t time.Time) string {
	return fmt.Sprintf("upload_%d.bin", t.Unix())
}
