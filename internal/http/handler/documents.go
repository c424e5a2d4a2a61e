package handler

import (
	"errors"
	"mime"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"docscan/internal/model"
	"docscan/internal/picker"
	"docscan/internal/service"
)

type documentView struct {
	model.Document
	Available bool `json:"available"`
}

type saveRequest struct {
	Destination string `json:"destination"`
}

type saveResponse struct {
	Document *model.Document `json:"document"`
	Notice   service.Notice  `json:"notice"`
}

func parseID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	return id, err == nil && id > 0
}

// ListDocuments returns the latest snapshot of saved documents.
//
// @Summary List documents
// @Tags documents
// @Produce json
// @Success 200 {object} service.DocumentListResult
// @Router /documents [get]
func ListDocuments(coord service.DocumentCoordinator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		docs := coord.Documents()
		return c.JSON(&service.DocumentListResult{Items: docs, Total: len(docs)})
	}
}

// GetDocument returns one document and whether its location still resolves.
//
// @Summary Get document
// @Tags documents
// @Produce json
// @Param id path int true "Document ID"
// @Success 200 {object} documentView
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /documents/{id} [get]
func GetDocument(coord service.DocumentCoordinator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, err := coord.Get(id)
		if err != nil {
			return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
		}
		return c.JSON(documentView{Document: *doc, Available: coord.Available(c.UserContext(), *doc)})
	}
}

// DocumentContent streams the saved PDF.
//
// @Summary Open document
// @Tags documents
// @Produce application/pdf
// @Param id path int true "Document ID"
// @Success 200 {file} file
// @Failure 404 {object} errorPayload
// @Failure 410 {object} errorPayload
// @Router /documents/{id}/content [get]
func DocumentContent(coord service.DocumentCoordinator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		r, doc, err := coord.Open(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, service.ErrLocationUnavailable) {
				return writeError(c, fiber.StatusGone, "LOCATION_UNAVAILABLE", "document content is no longer available")
			}
			return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
		}
		c.Set(fiber.HeaderContentType, picker.MimeTypePDF)
		c.Set(fiber.HeaderContentDisposition, mime.FormatMediaType("inline", map[string]string{"filename": doc.Name}))
		// the body stream is closed by fasthttp once written
		return c.SendStream(r)
	}
}

// SaveDocument copies the pending scan to a destination and records it.
// An empty destination lets the configured picker choose one.
//
// @Summary Save pending scan
// @Tags documents
// @Accept json
// @Produce json
// @Param request body saveRequest false "Destination location"
// @Success 201 {object} saveResponse
// @Failure 400 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Failure 422 {object} errorPayload
// @Failure 500 {object} errorPayload
// @Router /documents [post]
func SaveDocument(coord service.DocumentCoordinator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req saveRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
			}
		}

		var (
			doc *model.Document
			err error
		)
		if req.Destination == "" {
			doc, err = coord.SaveToPicked(c.UserContext())
		} else {
			dest, perr := model.ParseLocation(req.Destination)
			if perr != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_DESTINATION", "destination must be an absolute URI")
			}
			doc, err = coord.SaveDocument(c.UserContext(), dest)
		}
		if err != nil {
			return writeSaveError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(saveResponse{Document: doc, Notice: service.SaveNotice(nil)})
	}
}

func writeSaveError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrNoPendingScan):
		return writeError(c, fiber.StatusConflict, "NO_PENDING_SCAN", "no scanned document to save")
	case errors.Is(err, service.ErrDestinationNotChosen):
		return writeError(c, fiber.StatusConflict, "DESTINATION_NOT_CHOSEN", "no destination chosen")
	case errors.Is(err, service.ErrDestinationUnavailable):
		return writeError(c, fiber.StatusUnprocessableEntity, "DESTINATION_UNAVAILABLE", string(service.SaveNotice(err)))
	default:
		return writeError(c, fiber.StatusInternalServerError, "SAVE_FAILED", string(service.SaveNotice(err)))
	}
}
