package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"docscan/internal/model"
	"docscan/internal/service"
)

const defaultHeartbeat = 15 * time.Second

// DocumentEvents streams every document snapshot as a server-sent event.
// A comment line is written every heartbeat so a closed connection is noticed
// even when nothing changes.
//
// @Summary Document list events
// @Tags documents
// @Produce text/event-stream
// @Success 200 {string} string "snapshot events"
// @Router /documents/events [get]
func DocumentEvents(streamCtx context.Context, coord service.DocumentCoordinator, heartbeat time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// the fiber context is recycled once the handler returns
		ctx, cancel := context.WithCancel(streamCtx)
		snapshots, err := coord.Observe(ctx)
		if err != nil {
			cancel()
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		c.Set(fiber.HeaderContentType, "text/event-stream")
		c.Set(fiber.HeaderCacheControl, "no-cache")
		c.Set(fiber.HeaderConnection, "keep-alive")
		c.Set("X-Accel-Buffering", "no")

		c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
			defer cancel()
			ticker := time.NewTicker(heartbeat)
			defer ticker.Stop()

			for {
				select {
				case snapshot, ok := <-snapshots:
					if !ok {
						return
					}
					if err := writeSnapshot(w, snapshot); err != nil {
						return
					}
				case <-ticker.C:
					if _, err := w.WriteString(": ping\n\n"); err != nil {
						return
					}
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}))
		return nil
	}
}

func writeSnapshot(w *bufio.Writer, snapshot []model.Document) error {
	if snapshot == nil {
		snapshot = []model.Document{}
	}
	data, err := json.Marshal(&service.DocumentListResult{Items: snapshot, Total: len(snapshot)})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", data)
	return err
}
