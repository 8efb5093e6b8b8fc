package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"clipforge/internal/types"
	"clipforge/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const wsWriteTimeout = 10 * time.Second

// ProgressSocket streams a job's progress events over a websocket. The
// current state is sent immediately so late subscribers do not wait for
// the next event, and the socket closes once the job is terminal.
func (h *Handler) ProgressSocket(c *gin.Context) {
	jobId := c.Param("jobId")

	job, err := h.Service.GetJob(jobId)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.GetLogger().Error("websocket upgrade failed",
			zap.String("job_id", jobId), zap.Error(err))
		return
	}
	defer conn.Close()

	snapshot := types.ProgressEvent{
		JobId:      job.JobId,
		Status:     job.Status,
		Progress:   job.ProgressPct,
		FailReason: job.FailReason,
	}
	if err := writeEvent(conn, snapshot); err != nil {
		return
	}
	if isTerminalName(job.Status) {
		return
	}

	events := h.Service.Broadcaster.Subscribe(jobId)
	defer h.Service.Broadcaster.Unsubscribe(jobId, events)

	// Drain reads so close frames from the client are processed.
	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-clientGone:
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := writeEvent(conn, event); err != nil {
				return
			}
			if isTerminalName(event.Status) {
				return
			}
		}
	}
}

func writeEvent(conn *websocket.Conn, event types.ProgressEvent) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteJSON(event)
}

func isTerminalName(status string) bool {
	return status == types.JobStatusName(types.JobStatusCompleted) ||
		status == types.JobStatusName(types.JobStatusFailed)
}
