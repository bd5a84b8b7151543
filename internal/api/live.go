package api

import (
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/maxaizer/realjobs/internal/events"
	log "github.com/sirupsen/logrus"
	"net/http"
	"time"
)

const (
	liveBufferSize   = 16
	liveWriteTimeout = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handleLiveComments streams comments created on the job until the client
// disconnects. Slow clients drop messages instead of blocking publishers.
func (s *Server) handleLiveComments(c echo.Context) error {
	jobID := c.Param("id")
	if _, err := s.deps.Jobs.Get(c.Request().Context(), jobID); err != nil {
		return err
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return nil
	}
	defer conn.Close()

	outgoing := make(chan createdCommentResponse, liveBufferSize)
	unsubscribe := s.deps.Feed.Subscribe(jobID, func(event events.CommentCreated) {
		message := createdCommentResponse{
			Comment:       newCommentResponse(event.Comment),
			AuthorName:    event.AuthorName,
			AutoDownvoted: event.AutoDownvoted,
		}
		select {
		case outgoing <- message:
		default:
			log.Warnf("dropping live comment for slow client on job %s", jobID)
		}
	})
	defer unsubscribe()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return nil
		case message := <-outgoing:
			_ = conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
			if err := conn.WriteJSON(message); err != nil {
				return nil
			}
		}
	}
}
