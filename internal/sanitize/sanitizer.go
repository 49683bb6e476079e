// Package sanitize strips tracking parameters from user-supplied URLs.
//
// Sanitize is a pure function: it performs no I/O, keeps no state and never
// panics on bad input. Every outcome, including unparseable input, is
// reported through models.SanitizeResult.
package sanitize

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/law-makers/linkclean/pkg/models"
)

var (
	schemePrefix = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)
	// portPrefix matches the remainder of "host:8080/path" that url.Parse
	// mistakes for an opaque scheme-specific part
	portPrefix = regexp.MustCompile(`^[0-9]+(?:[/?#]|$)`)
)

// Sanitize cleans raw against the blocked parameter set.
//
// Query parameters and parameter-shaped fragments whose names are in blocked
// (case-insensitively) are removed; everything else is kept in its original
// order and spelling. On video hosts the timestamp parameter is always kept
// and its value reported.
func Sanitize(raw string, blocked Set) models.SanitizeResult {
	input := strings.TrimSpace(raw)
	if input == "" {
		return models.SanitizeResult{}
	}
	if blocked == nil {
		blocked = BlockList{}
	}

	processed := input
	if !schemePrefix.MatchString(input) && !hasOpaqueScheme(input) {
		processed = "https://" + input
	}

	u, fragment, hasFragment, ok := parseWebURL(processed)
	if !ok {
		return classifyUnparsed(raw, input)
	}

	result := models.SanitizeResult{}
	discovered := newKeySet()
	isVideoHost := isVideoHost(u.Hostname())

	// Query string
	queryDropped := false
	var kept []param
	for _, p := range splitParams(u.RawQuery) {
		switch {
		case isVideoHost && p.key == TimestampKey:
			kept = append(kept, p)
			if seconds, ok := parseLeadingInt(p.value); ok {
				result.TimestampSeconds = seconds
				result.HasTimestamp = true
			}
		case blocked.Contains(p.key):
			queryDropped = true
		default:
			kept = append(kept, p)
			discovered.add(p.key)
		}
	}
	if queryDropped {
		u.RawQuery = joinParams(kept)
		u.ForceQuery = false
	} else {
		u.RawQuery = escapeInvalid(u.RawQuery)
	}

	// Fragment, only when it looks like a parameter list rather than an anchor
	fragmentDropped := false
	if hasFragment && fragment != "" && strings.Contains(fragment, "=") {
		var keptFragment []param
		var fragmentKeys []string
		for _, p := range splitParams(fragment) {
			if blocked.Contains(p.key) {
				fragmentDropped = true
				continue
			}
			keptFragment = append(keptFragment, p)
			fragmentKeys = append(fragmentKeys, p.key)
		}
		if fragmentDropped {
			fragment = joinParams(keptFragment)
			hasFragment = fragment != ""
			for _, k := range fragmentKeys {
				discovered.add(k)
			}
		}
	}

	u.Fragment = ""
	u.RawFragment = ""
	cleaned := u.String()
	if hasFragment {
		cleaned += "#" + escapeInvalid(fragment)
	}

	result.CleanedURL = cleaned
	result.WasModified = queryDropped || fragmentDropped
	result.DiscoveredKeys = discovered.list()
	return result
}

// parseWebURL parses s as an absolute URL with an authority. The fragment is
// split off first and returned raw so it can be re-emitted byte-for-byte.
func parseWebURL(s string) (u *url.URL, fragment string, hasFragment bool, ok bool) {
	base, fragment, hasFragment := strings.Cut(s, "#")
	u, err := url.Parse(base)
	if err != nil || !u.IsAbs() || u.Opaque != "" || u.Host == "" {
		return nil, "", false, false
	}
	return u, fragment, hasFragment, true
}

// classifyUnparsed decides between an unsupported scheme and malformed input
// once the web interpretation has failed. A web scheme that got here has no
// usable host, so it is malformed rather than unsupported.
func classifyUnparsed(raw, input string) models.SanitizeResult {
	if u, err := url.Parse(input); err == nil && u.IsAbs() && !isWebScheme(u.Scheme) {
		return models.SanitizeResult{
			CleanedURL: raw,
			ErrorKind:  models.ErrorKindUnsupportedScheme,
		}
	}
	return models.SanitizeResult{ErrorKind: models.ErrorKindMalformed}
}

// hasOpaqueScheme reports whether s already carries a non-hierarchical
// scheme such as mailto: or tel:. "host:port" forms are not schemes.
func hasOpaqueScheme(s string) bool {
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Opaque == "" {
		return false
	}
	return !portPrefix.MatchString(u.Opaque)
}

func isWebScheme(scheme string) bool {
	return scheme == "http" || scheme == "https"
}

func isVideoHost(host string) bool {
	host = strings.ToLower(host)
	for _, fragment := range videoHostFragments {
		if strings.Contains(host, fragment) {
			return true
		}
	}
	return false
}

// keySet collects unique keys in first-seen order
type keySet struct {
	seen  map[string]struct{}
	order []string
}

func newKeySet() *keySet {
	return &keySet{seen: make(map[string]struct{})}
}

func (k *keySet) add(key string) {
	if key == "" {
		return
	}
	if _, ok := k.seen[key]; ok {
		return
	}
	k.seen[key] = struct{}{}
	k.order = append(k.order, key)
}

func (k *keySet) list() []string {
	if len(k.order) == 0 {
		return nil
	}
	return k.order
}
