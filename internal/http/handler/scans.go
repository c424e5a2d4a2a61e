package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"docscan/internal/model"
	"docscan/internal/scanner"
	"docscan/internal/service"
)

type scanResponse struct {
	Result *scanner.Result `json:"result"`
	Notice service.Notice  `json:"notice"`
}

type pendingScan struct {
	Location string `json:"location"`
}

// CaptureScan runs the scanner and keeps the resulting PDF as the pending scan.
//
// @Summary Scan a document
// @Tags scans
// @Produce json
// @Success 201 {object} scanResponse
// @Failure 409 {object} errorPayload
// @Failure 503 {object} errorPayload
// @Failure 500 {object} errorPayload
// @Router /scans [post]
func CaptureScan(coord service.DocumentCoordinator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := coord.Scan(c.UserContext())
		if err != nil {
			notice := string(service.ScanNotice(err))
			switch {
			case errors.Is(err, scanner.ErrCancelled):
				return writeError(c, fiber.StatusConflict, "SCAN_CANCELLED", notice)
			case errors.Is(err, scanner.ErrUnavailable):
				return writeError(c, fiber.StatusServiceUnavailable, "SCANNER_UNAVAILABLE", notice)
			default:
				return writeError(c, fiber.StatusInternalServerError, "SCAN_FAILED", notice)
			}
		}
		return c.Status(fiber.StatusCreated).JSON(scanResponse{Result: res, Notice: service.ScanNotice(nil)})
	}
}

// RecordScan sets the pending scan from a location produced elsewhere.
//
// @Summary Record a scanned document
// @Tags scans
// @Accept json
// @Param request body pendingScan true "Scanned PDF location"
// @Success 204
// @Failure 400 {object} errorPayload
// @Router /scans/pending [put]
func RecordScan(coord service.DocumentCoordinator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req pendingScan
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		loc, err := model.ParseLocation(req.Location)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LOCATION", "location must be an absolute URI")
		}
		coord.RecordScan(loc)
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// PendingScan returns the scan waiting to be saved.
//
// @Summary Pending scan
// @Tags scans
// @Produce json
// @Success 200 {object} pendingScan
// @Failure 404 {object} errorPayload
// @Router /scans/pending [get]
func PendingScan(coord service.DocumentCoordinator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		loc, ok := coord.PendingScan()
		if !ok {
			return writeError(c, fiber.StatusNotFound, "NO_PENDING_SCAN", "no scanned document to save")
		}
		return c.JSON(pendingScan{Location: loc.String()})
	}
}
