package model

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// ErrMalformedLocation is returned when a string cannot be parsed as a location.
var ErrMalformedLocation = errors.New("malformed location")

// Location is an opaque reference to a byte resource, in URI string form
// (file:///..., content://authority/..., s3://bucket/key).
type Location string

// ParseLocation validates s as an absolute URI and returns it as a Location.
func ParseLocation(s string) (Location, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: empty", ErrMalformedLocation)
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedLocation, err)
	}
	if u.Scheme == "" {
		return "", fmt.Errorf("%w: missing scheme in %q", ErrMalformedLocation, s)
	}
	return Location(s), nil
}

// FileLocation returns the file:// location of a local path.
func FileLocation(path string) Location {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return Location(u.String())
}

// URL parses the location. Locations built through ParseLocation never fail here.
func (l Location) URL() (*url.URL, error) {
	u, err := url.Parse(string(l))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedLocation, err)
	}
	return u, nil
}

// Scheme returns the lower-cased URI scheme, or "" when the location does not parse.
func (l Location) Scheme() string {
	u, err := l.URL()
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Scheme)
}

// LastPathSegment returns the decoded last non-empty path segment.
// Opaque URIs (mailto:x) and paths without segments return "".
func (l Location) LastPathSegment() string {
	u, err := l.URL()
	if err != nil || u.Opaque != "" {
		return ""
	}
	segments := strings.Split(u.Path, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] != "" {
			return segments[i]
		}
	}
	return ""
}

// DisplayName is the name a document saved at l is listed under.
func (l Location) DisplayName() string {
	if seg := l.LastPathSegment(); seg != "" {
		return seg
	}
	return DefaultDocumentName
}

func (l Location) String() string {
	return string(l)
}
