package internal

import (
	"strings"

	"epaygate/entity"
)

// InterpretResponse classifies a decoded direct-flow reply. Only the first
// newline-delimited line is meaningful; it carries "idn=<code>" when the
// gateway issued a payment code, an implementation-specific error line
// otherwise. Malformed or empty input classifies as failure, never panics.
func InterpretResponse(body string) entity.DirectResponse {
	line := body
	if i := strings.IndexByte(body, '\n'); i >= 0 {
		line = body[:i]
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return entity.DirectResponse{}
	}

	key, value, found := strings.Cut(line, "=")
	if !found {
		return entity.DirectResponse{Key: line}
	}
	key = strings.TrimSpace(key)
	if !strings.EqualFold(key, "idn") {
		return entity.DirectResponse{Key: key}
	}
	return entity.DirectResponse{Key: key, Code: strings.TrimSpace(value)}
}
