package mime

import "strings"

type MIME = string

const (
	OctetStream MIME = "application/octet-stream"
	Plain       MIME = "text/plain"
	HTML        MIME = "text/html"
	JSON        MIME = "application/json"
	YAML        MIME = "application/yaml"
)

// Complies returns whether the Content-Type value is of the MIME, ignoring its parameters.
// Empty value is considered compatible with any MIME.
func Complies(mime MIME, with string) bool {
	with, _, _ = strings.Cut(with, ";")
	with = strings.TrimSpace(with)

	return len(with) == 0 || strings.EqualFold(with, mime)
}
