package insta

import (
	"fmt"
	"net/url"
	"strings"
)

// URL is a classified post URL: the canonical form plus the extracted
// shortcode identifier.
type URL struct {
	Shortcode string
	Canonical string // https://www.instagram.com/<kind>/<shortcode>/
	Kind      string // "p", "reel" or "tv"
}

// Reject is a typed classification failure.
type Reject struct {
	Reason string
	Input  string
}

func (r *Reject) Error() string {
	return fmt.Sprintf("not an instagram post url (%s): %q", r.Reason, r.Input)
}

const (
	RejectNotURL       = "not a url"
	RejectWrongHost    = "unsupported host"
	RejectWrongPath    = "needs /p/, /reel/ or /tv/"
	RejectNoShortcode  = "missing shortcode"
	RejectBadShortcode = "malformed shortcode"
)

// Classify validates a single candidate URL and extracts its shortcode.
// Accepted hosts: instagram.com, www.instagram.com, instagr.am. Query and
// fragment are dropped; the canonical form always carries a trailing slash.
func Classify(raw string) (URL, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return URL{}, &Reject{Reason: RejectNotURL, Input: raw}
	}

	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	if host != "instagram.com" && host != "instagr.am" {
		return URL{}, &Reject{Reason: RejectWrongHost, Input: raw}
	}

	segs := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segs) < 1 || (segs[0] != "p" && segs[0] != "reel" && segs[0] != "tv") {
		return URL{}, &Reject{Reason: RejectWrongPath, Input: raw}
	}
	if len(segs) < 2 || segs[1] == "" {
		return URL{}, &Reject{Reason: RejectNoShortcode, Input: raw}
	}

	code := segs[1]
	if !validShortcode(code) {
		return URL{}, &Reject{Reason: RejectBadShortcode, Input: raw}
	}

	return URL{
		Shortcode: code,
		Kind:      segs[0],
		Canonical: "https://www.instagram.com/" + segs[0] + "/" + code + "/",
	}, nil
}

func validShortcode(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}

// ExtractURLs pulls every classifiable post URL out of free-form message
// text (whitespace, comma or semicolon separated). Duplicates are kept:
// batch processing handles each occurrence independently, matching literal
// input.
func ExtractURLs(text string) []URL {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == ',' || r == ';'
	})
	var out []URL
	for _, f := range fields {
		u, err := Classify(f)
		if err != nil {
			continue
		}
		out = append(out, u)
	}
	return out
}
