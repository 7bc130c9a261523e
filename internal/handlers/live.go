// live.go streams list views as Server-Sent Events. A client gets the
// current list on connect and a fresh copy whenever the underlying
// collection changes, which is what the list pages subscribe to.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/paperhub-api/internal/live"
	"github.com/Shimizu-Technology/paperhub-api/internal/models"
	"github.com/Shimizu-Technology/paperhub-api/internal/store"
)

// feed ties a live topic to the query that renders it.
type feed struct {
	topic    string
	snapshot func(ctx context.Context) (any, error)
}

func (h *Handler) feed(name, uid string) (feed, bool) {
	switch name {
	case "papers-mine":
		return feed{live.TopicOwnerPapers(uid), func(ctx context.Context) (any, error) {
			papers, err := h.Store.ListPapersByOwner(ctx, uid)
			return models.NewListResponse(papers), err
		}}, true
	case "papers-published":
		return feed{live.TopicPublishedPapers, func(ctx context.Context) (any, error) {
			papers, err := h.Store.ListPublishedPapers(ctx, store.DefaultPublishedLimit)
			return models.NewListResponse(papers), err
		}}, true
	case "workspace":
		return feed{live.TopicOwnerAnswers(uid), func(ctx context.Context) (any, error) {
			docs, err := h.Workspace.List(ctx, uid)
			return models.NewListResponse(docs), err
		}}, true
	case "jobs":
		return feed{live.TopicOwnerJobs(uid), func(ctx context.Context) (any, error) {
			jobs, err := h.Store.ListJobsByOwner(ctx, uid, store.DefaultJobsLimit)
			return models.NewListResponse(jobs), err
		}}, true
	case "universities":
		return feed{live.TopicUniversities, func(ctx context.Context) (any, error) {
			unis, err := h.Store.ListUniversities(ctx)
			return models.NewListResponse(unis), err
		}}, true
	}
	return feed{}, false
}

// StreamFeed serves one live list.
// GET /api/v1/live/:feed   (papers-mine, papers-published, workspace, jobs, universities)
//
// Go Pattern: The hub callback never blocks. It does a non-blocking send
// into a 1-slot channel, so a burst of writes collapses into a single
// refresh and a slow client can never stall a publisher.
func (h *Handler) StreamFeed(c *gin.Context) {
	f, ok := h.feed(c.Param("feed"), callerID(c))
	if !ok {
		writeError(c, http.StatusNotFound, "not_found", "Unknown feed. Use papers-mine, papers-published, workspace, jobs or universities")
		return
	}

	changed := make(chan struct{}, 1)
	cancel := h.Hub.Subscribe(f.topic, func(live.Event) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	ctx := c.Request.Context()
	send := func() {
		data, err := f.snapshot(ctx)
		if err != nil {
			if ctx.Err() == nil {
				h.Log.Warn().Err(err).Str("topic", f.topic).Msg("live snapshot failed")
				c.SSEvent("error", models.ErrorResponse{Error: "server_error", Message: "Failed to load", Code: http.StatusInternalServerError})
			}
		} else {
			c.SSEvent("snapshot", data)
		}
		c.Writer.Flush()
	}

	send()

	interval := h.Heartbeat
	if interval <= 0 {
		interval = 25 * time.Second
	}
	heartbeat := time.NewTicker(interval)
	defer heartbeat.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-h.closing:
			return
		case <-changed:
			send()
		case <-heartbeat.C:
			c.SSEvent("ping", time.Now().Unix())
			c.Writer.Flush()
		}
	}
}
