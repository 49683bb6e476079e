package headers

import (
	"fmt"
	"net/http"
	"strings"
)

// ParseHeaders converts header strings ("Key: Value") into a map keyed by the
// canonical header name. A later value for the same name replaces an earlier one.
func ParseHeaders(h []string) (map[string]string, error) {
	m := make(map[string]string, len(h))
	for _, hdr := range h {
		name, value, ok := strings.Cut(hdr, ":")
		if !ok {
			return nil, fmt.Errorf("invalid header %q: expected \"Key: Value\"", hdr)
		}
		name = strings.TrimSpace(name)
		if name == "" || strings.ContainsAny(name, " \t") {
			return nil, fmt.Errorf("invalid header name in %q", hdr)
		}
		m[http.CanonicalHeaderKey(name)] = strings.TrimSpace(value)
	}
	return m, nil
}
