package sanitize

import (
	"net/url"
	"strconv"
	"strings"
)

// param is one key/value segment of a query string or fragment.
// raw keeps the original bytes so surviving segments are re-emitted verbatim.
type param struct {
	raw   string
	key   string // decoded, lowercased
	value string // decoded
}

// splitParams breaks an application/x-www-form-urlencoded string into its
// segments, in order. Empty segments are skipped.
func splitParams(s string) []param {
	var params []param
	for _, seg := range strings.Split(s, "&") {
		if seg == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(seg, "=")
		params = append(params, param{
			raw:   seg,
			key:   strings.ToLower(decodeComponent(rawKey)),
			value: decodeComponent(rawValue),
		})
	}
	return params
}

// joinParams re-assembles surviving segments
func joinParams(params []param) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, escapeInvalid(p.raw))
	}
	return strings.Join(parts, "&")
}

// decodeComponent percent-decodes s, treating '+' as a space.
// Malformed escapes leave the input as-is.
func decodeComponent(s string) string {
	decoded, err := url.QueryUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}

// escapeInvalid percent-encodes bytes that may not appear literally in a
// query or fragment. Well-formed input is returned unchanged.
func escapeInvalid(s string) string {
	const hex = "0123456789ABCDEF"
	needs := false
	for i := 0; i < len(s); i++ {
		if mustEscape(s[i]) {
			needs = true
			break
		}
	}
	if !needs {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if mustEscape(c) {
			b.WriteByte('%')
			b.WriteByte(hex[c>>4])
			b.WriteByte(hex[c&0x0f])
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

func mustEscape(c byte) bool {
	return c <= ' ' || c >= 0x7f || c == '"' || c == '<' || c == '>' || c == '`'
}

// parseLeadingInt reads a non-negative base-10 integer from the start of s,
// ignoring leading whitespace and trailing garbage ("125s" yields 125).
func parseLeadingInt(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t\n\r\f\v")
	s = strings.TrimPrefix(s, "+")
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
