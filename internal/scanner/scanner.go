// Package scanner defines the document scanner collaborator and an inbox-based implementation.
package scanner

import (
	"context"
	"errors"

	"docscan/internal/model"
)

var (
	// ErrCancelled is returned when the user backs out of a scan.
	ErrCancelled = errors.New("scan cancelled")
	// ErrUnavailable is returned when the scanner cannot be started.
	ErrUnavailable = errors.New("scanner unavailable")
	// ErrFailed is returned when a started scan produces no usable result.
	ErrFailed = errors.New("scan failed")
)

// Mode selects how much processing the scanner offers.
type Mode string

const (
	ModeBase           Mode = "base"
	ModeBaseWithFilter Mode = "base_with_filter"
	ModeFull           Mode = "full"
)

// Format is an output format requested from the scanner.
type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPDF  Format = "pdf"
)

// Options describe a scan request.
type Options struct {
	Mode                 Mode     `json:"mode"`
	GalleryImportAllowed bool     `json:"gallery_import_allowed"`
	ResultFormats        []Format `json:"result_formats"`
	// PageLimit caps the number of pages; zero means no limit.
	PageLimit int `json:"page_limit,omitempty"`
}

// DefaultOptions is the request issued when the user taps scan.
func DefaultOptions() Options {
	return Options{
		Mode:                 ModeFull,
		GalleryImportAllowed: true,
		ResultFormats:        []Format{FormatJPEG, FormatPDF},
	}
}

// Wants reports whether f is among the requested formats.
func (o Options) Wants(f Format) bool {
	for _, rf := range o.ResultFormats {
		if rf == f {
			return true
		}
	}
	return false
}

// PDF is the combined document produced by a scan.
type PDF struct {
	Location  model.Location `json:"location"`
	PageCount int            `json:"page_count"`
}

// Page is a single scanned page image.
type Page struct {
	Location model.Location `json:"location"`
}

// Result of a successful scan. PDF is nil when the PDF format was not requested.
type Result struct {
	PDF   *PDF   `json:"pdf,omitempty"`
	Pages []Page `json:"pages,omitempty"`
}

// Scanner runs a scan session and reports its result.
type Scanner interface {
	Scan(ctx context.Context, opts Options) (*Result, error)
}
