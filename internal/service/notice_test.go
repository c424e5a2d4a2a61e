package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"docscan/internal/scanner"
)

func TestScanNotice(t *testing.T) {
	assert.Equal(t, Notice("Document scanned"), ScanNotice(nil))
	assert.Equal(t, Notice("Cancelled"), ScanNotice(fmt.Errorf("%w: context canceled", scanner.ErrCancelled)))
	assert.Equal(t, Notice("Failed to start scanner"), ScanNotice(scanner.ErrUnavailable))
	assert.Equal(t, Notice("Failed to scan document"), ScanNotice(scanner.ErrFailed))
	assert.Equal(t, Notice("Failed to scan document"), ScanNotice(errors.New("boom")))
}

func TestSaveNotice(t *testing.T) {
	assert.Equal(t, Notice("PDF saved"), SaveNotice(nil))
	assert.Equal(t, NoticeNone, SaveNotice(ErrDestinationNotChosen))
	assert.Equal(t, NoticeNone, SaveNotice(ErrNoPendingScan))
	for _, err := range []error{ErrSourceUnavailable, ErrDestinationUnavailable, ErrCopyFailed, ErrPersistFailed} {
		assert.Equal(t, Notice("Failed to save PDF"), SaveNotice(fmt.Errorf("%w: detail", err)), err.Error())
	}
}
