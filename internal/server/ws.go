package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/scopify/benchmark-agent/internal/broadcast"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Browsers connect cross-origin from the product UI; auth is handled
	// upstream, so the origin check mirrors the permissive CORS policy.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleWebSocket streams a job's progress events. The subscription is
// registered before the snapshot is sent so no event can fall between the
// two; late subscribers get the snapshot plus everything that follows, never
// history.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	log := zap.L().With(zap.String("job_id", jobID))

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("ws: upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	events, cancel := s.events.Subscribe(jobID)
	defer cancel()

	if job, ok := s.jobs.Get(jobID); ok {
		snapshot := broadcast.Event{
			JobID:     jobID,
			Status:    string(job.Status),
			Message:   "Connected to status stream",
			Timestamp: time.Now().UTC(),
			Result: map[string]any{
				"current_step":    job.CurrentStep,
				"progress":        job.Progress,
				"steps_completed": job.StepsCompleted,
			},
		}
		if job.Error != "" {
			snapshot.Result["error"] = job.Error
		}
		if job.Report != "" {
			snapshot.Result["report"] = job.Report
		}
		if err := conn.WriteJSON(snapshot); err != nil {
			log.Warn("ws: snapshot write failed", zap.Error(err))
			return
		}
	}

	// Drain client frames so closes are noticed; clients only listen.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				log.Warn("ws: event write failed", zap.Error(err))
				return
			}
		}
	}
}
