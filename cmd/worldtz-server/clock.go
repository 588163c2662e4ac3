package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/codeGROOVE-dev/worldtz/pkg/ticker"
)

const clockWriteTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{}

// handleClock streams one frame of header and cards per second for the
// visitor until the client goes away or the server shuts down.
func (s *server) handleClock(w http.ResponseWriter, r *http.Request) {
	requestID := w.Header().Get("X-Request-ID")
	id, ok := visitorFromCookie(r)
	if !ok {
		s.writeError(w, requestID, http.StatusBadRequest, "Missing visitor",
			"Load the page before opening the clock feed.", "NO_VISITOR")
		return
	}
	seed := s.seeder(w, r)
	local := s.localZone(r)

	c, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Clock upgrade failed", "request_id", requestID, "error", err)
		return
	}
	defer c.Close()
	// The server's read timeout still applies to the hijacked connection.
	if err := c.SetReadDeadline(time.Time{}); err != nil {
		s.logger.Warn("Clock read deadline not cleared", "request_id", requestID, "error", err)
		return
	}

	ctx, cancel := context.WithCancel(s.feedCtx)
	defer cancel()

	// Reading is required to process close and ping frames.
	go func() {
		defer cancel()
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	tick := ticker.New(time.Second, func(context.Context, time.Time) {
		// A page load may replace the state, so look it up on every tick.
		st := s.sessions.GetWith(id, seed)
		frame := s.views.Clock(st.Snapshot(), local, s.now())
		if err := c.SetWriteDeadline(time.Now().Add(clockWriteTimeout)); err != nil {
			cancel()
			return
		}
		if err := c.WriteJSON(frame); err != nil {
			s.logger.Debug("Clock feed closed", "request_id", requestID, "visitor", id, "error", err)
			cancel()
		}
	})
	tick.Start(ctx)
	s.logger.Debug("Clock feed opened", "request_id", requestID, "visitor", id, "zone", local.String())

	<-ctx.Done()
	tick.Stop()

	if err := c.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second)); err != nil {
		s.logger.Debug("Clock close frame not sent", "request_id", requestID, "error", err)
	}
}
