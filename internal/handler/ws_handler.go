package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rtagency/mocktest-backend/internal/middleware"
	"github.com/rtagency/mocktest-backend/internal/response"
	"github.com/rtagency/mocktest-backend/internal/service"
	"github.com/rtagency/mocktest-backend/internal/session"
	ws "github.com/rtagency/mocktest-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allow-list permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams a live attempt over WebSocket: answer saves, palette
// updates, and the graded result push when the server-side timer expires.
type WSHandler struct {
	attempts *service.AttemptService
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(attempts *service.AttemptService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		attempts: attempts,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// AttemptStream godoc
// WS /ws/v1/tests/:test_id/stream
// Upgrades to WebSocket for a started attempt. The session must already
// exist; the REST start endpoint creates it.
func (h *WSHandler) AttemptStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	testID, err := strconv.ParseInt(c.Param("test_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid test ID"})
		return
	}

	rawConn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	conn := ws.NewConn(rawConn)
	defer conn.Close()

	userID := claims.UserID

	sess, err := h.attempts.GetAttempt(userID, testID)
	if err != nil {
		conn.WriteError(string(response.ErrNoActiveAttempt), response.GetMessage(response.ErrNoActiveAttempt))
		return
	}

	wsLog := h.log.With().
		Int("user_id", userID).
		Int64("test_id", testID).
		Logger()

	wsLog.Info().Msg("Candidate connected")

	// Push the graded result when the attempt finalizes, covering the
	// server-side timer expiry the client never asked about.
	pushCtx, stopPush := context.WithCancel(context.Background())
	defer stopPush()
	go func() {
		select {
		case <-pushCtx.Done():
		case result := <-sess.Done():
			conn.WriteTyped(ws.GradedResponse{Event: ws.EventGraded, Result: result})
		}
	}()

	// Opening snapshot so the client can render without a second request.
	conn.WriteTyped(ws.StateResponse{Event: ws.EventState, State: sess.State()})

	for {
		var msg ws.RequestPayload
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		switch msg.Action {
		case ws.ActionPing:
			conn.WriteTyped(ws.PongResponse{Event: ws.EventPong})

		case ws.ActionState:
			conn.WriteTyped(ws.StateResponse{Event: ws.EventState, State: sess.State()})

		case ws.ActionAnswer:
			h.applyAndRespond(conn, sess, sess.SelectAnswer(msg.QuestionID, msg.Value))

		case ws.ActionView:
			h.applyAndRespond(conn, sess, sess.View(msg.Index))

		case ws.ActionSaveNext:
			h.applyAndRespond(conn, sess, sess.SaveAndNext())

		case ws.ActionMark:
			h.applyAndRespond(conn, sess, sess.MarkForReview())

		case ws.ActionClear:
			h.applyAndRespond(conn, sess, sess.ClearResponse())

		case ws.ActionJump:
			h.applyAndRespond(conn, sess, sess.JumpToSubject(msg.Subject))

		case ws.ActionSubmit:
			h.handleSubmit(c.Request.Context(), conn, wsLog, userID, testID, msg.Confirmed)

		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			conn.WriteError(string(response.ErrInvalidPayload), "unknown action: "+string(msg.Action))
		}
	}
}

// applyAndRespond sends the refreshed state on success and a coded error
// otherwise. Rejected operations leave the state unchanged, so no state
// push is needed on error.
func (h *WSHandler) applyAndRespond(conn *ws.Conn, sess *session.Session, err error) {
	if err != nil {
		code := wsErrorCode(err)
		conn.WriteError(string(code), response.GetMessage(code))
		return
	}
	conn.WriteTyped(ws.StateResponse{Event: ws.EventState, State: sess.State()})
}

func (h *WSHandler) handleSubmit(ctx context.Context, conn *ws.Conn, wsLog zerolog.Logger, userID int, testID int64, confirmed bool) {
	result, err := h.attempts.Submit(ctx, userID, testID, confirmed)
	if err != nil {
		code := wsErrorCode(err)
		wsLog.Warn().Err(err).Msg("Submit failed")
		conn.WriteError(string(code), response.GetMessage(code))
		return
	}
	if result == nil {
		// Declined confirmation: nothing changed.
		return
	}

	wsLog.Info().
		Int("marks", result.MarksObtained).
		Float64("score", result.Score).
		Msg("Attempt submitted")

	conn.WriteTyped(ws.GradedResponse{Event: ws.EventGraded, Result: result})
}

// wsErrorCode maps attempt errors to API error codes.
func wsErrorCode(err error) response.ErrCode {
	switch {
	case errors.Is(err, session.ErrNoAnswer):
		return response.ErrAnswerRequired
	case errors.Is(err, session.ErrIndexOutOfRange):
		return response.ErrIndexOutOfRange
	case errors.Is(err, session.ErrUnknownSubject):
		return response.ErrUnknownSubject
	case errors.Is(err, session.ErrFinalized):
		return response.ErrAttemptFinalized
	case errors.Is(err, session.ErrSubmitPending):
		return response.ErrSubmitPending
	case errors.Is(err, session.ErrPersistence):
		return response.ErrResultNotSaved
	case errors.Is(err, service.ErrNoActiveAttempt):
		return response.ErrNoActiveAttempt
	default:
		return response.ErrInternal
	}
}
