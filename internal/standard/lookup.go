package standard

import (
	"net/url"
	"strings"
)

// SearchURL builds a web search link for locating the current edition of a
// standard, tuned by publisher prefix.
func SearchURL(name string) string {
	upper := strings.ToUpper(strings.TrimSpace(name))
	suffix := " standard latest version"
	switch {
	case strings.HasPrefix(upper, "IEC"):
		suffix = " IEC webstore"
	case strings.HasPrefix(upper, "ISO"):
		suffix = " ISO standard"
	case strings.HasPrefix(upper, "IEEE"):
		suffix = " IEEE standard"
	case strings.HasPrefix(upper, "EN"):
		suffix = " EN standard latest version"
	case strings.HasPrefix(upper, "NEMA"), strings.Contains(upper, "MOXA"):
		suffix = " standard"
	}
	return "https://www.google.com/search?" + url.Values{"q": {name + suffix}}.Encode()
}

// LookupURL prefers the recorded source and falls back to SearchURL.
func (s Standard) LookupURL() string {
	if strings.TrimSpace(s.SourceURL) != "" {
		return s.SourceURL
	}
	return SearchURL(s.Name)
}
