package service

import (
	"errors"

	"docscan/internal/scanner"
)

// Notice is a short, user-facing message about the outcome of an action.
type Notice string

const (
	NoticeNone               Notice = ""
	NoticeScanned            Notice = "Document scanned"
	NoticeCancelled          Notice = "Cancelled"
	NoticeScannerUnavailable Notice = "Failed to start scanner"
	NoticeScanFailed         Notice = "Failed to scan document"
	NoticeSaved              Notice = "PDF saved"
	NoticeSaveFailed         Notice = "Failed to save PDF"
)

// ScanNotice maps the result of Scan to a notice.
func ScanNotice(err error) Notice {
	switch {
	case err == nil:
		return NoticeScanned
	case errors.Is(err, scanner.ErrCancelled):
		return NoticeCancelled
	case errors.Is(err, scanner.ErrUnavailable):
		return NoticeScannerUnavailable
	default:
		return NoticeScanFailed
	}
}

// SaveNotice maps the result of a save to a notice. Skipped saves are silent.
func SaveNotice(err error) Notice {
	switch {
	case err == nil:
		return NoticeSaved
	case errors.Is(err, ErrDestinationNotChosen), errors.Is(err, ErrNoPendingScan):
		return NoticeNone
	default:
		return NoticeSaveFailed
	}
}
