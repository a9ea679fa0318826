package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vovakirdan/tui-maze/internal/session"
	"github.com/vovakirdan/tui-maze/internal/tracker"
)

// errNotIdle is returned by start for a session that already ran.
var errNotIdle = errors.New("session is not idle; restart it first")

// SessionController serves the session and leaderboard routes.
type SessionController struct {
	hub    *Hub
	tracer trace.Tracer
}

// NewSessionController creates a controller over hub.
func NewSessionController(hub *Hub, tracer trace.Tracer) *SessionController {
	return &SessionController{hub: hub, tracer: tracer}
}

// Register registers the controller's routes.
func (sc *SessionController) Register(route *gin.RouterGroup) {
	sessions := route.Group("/sessions")
	{
		sessions.POST("", sc.create)
		sessions.GET("/:id", sc.get)
		sessions.POST("/:id/start", sc.start)
		sessions.POST("/:id/move", sc.move)
		sessions.POST("/:id/restart", sc.restart)
		sessions.DELETE("/:id", sc.remove)
	}
	route.GET("/leaderboard", sc.leaderboard)
	route.GET("/healthz", sc.healthz)
}

// create handles session creation requests.
func (sc *SessionController) create(ctx *gin.Context) {
	var request CreateRequest
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&request); err != nil {
			ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
	}

	id, st, err := sc.hub.Create(ctx.Request.Context(), request.Player)
	if err != nil {
		sc.fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, newStateResponse(id, st, sc.hub.cfg.Session.Geometry, true))
}

// get returns the state of a session including its grid.
func (sc *SessionController) get(ctx *gin.Context) {
	id := ctx.Param("id")

	var resp StateResponse
	err := sc.hub.With(id, func(s *session.GameSession) error {
		resp = newStateResponse(id, s.Snapshot(), s.Config().Geometry, true)
		return nil
	})
	if err != nil {
		sc.fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// start moves an idle session to running.
func (sc *SessionController) start(ctx *gin.Context) {
	id := ctx.Param("id")

	var resp StateResponse
	err := sc.hub.With(id, func(s *session.GameSession) error {
		if !s.Start() {
			return errNotIdle
		}
		resp = newStateResponse(id, s.Snapshot(), s.Config().Geometry, false)
		return nil
	})
	if err != nil {
		sc.fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// move evaluates a pointer position.
func (sc *SessionController) move(ctx *gin.Context) {
	var request MoveRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	id := ctx.Param("id")
	reqCtx, span := sc.tracer.Start(ctx.Request.Context(), "session.move")
	defer span.End()

	var resp MoveResponse
	err := sc.hub.With(id, func(s *session.GameSession) error {
		res := s.Move(reqCtx, tracker.Point{X: *request.X, Y: *request.Y})
		resp = MoveResponse{
			Result: res,
			State:  newStateResponse(id, s.Snapshot(), s.Config().Geometry, false),
		}
		return nil
	})
	if err != nil {
		sc.fail(ctx, err)
		return
	}

	span.SetAttributes(
		attribute.String("session.id", id),
		attribute.String("move.result", resp.Result.String()),
	)
	ctx.JSON(http.StatusOK, resp)
}

// restart generates a new maze and returns the idle state with its grid.
func (sc *SessionController) restart(ctx *gin.Context) {
	id := ctx.Param("id")

	var resp StateResponse
	err := sc.hub.With(id, func(s *session.GameSession) error {
		s.Restart(ctx.Request.Context())
		resp = newStateResponse(id, s.Snapshot(), s.Config().Geometry, true)
		return nil
	})
	if err != nil {
		sc.fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// remove deletes a session.
func (sc *SessionController) remove(ctx *gin.Context) {
	if !sc.hub.Delete(ctx.Param("id")) {
		sc.fail(ctx, ErrSessionNotFound)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// leaderboard returns the best times.
func (sc *SessionController) leaderboard(ctx *gin.Context) {
	board := sc.hub.Leaderboard()
	ctx.JSON(http.StatusOK, LeaderboardResponse{
		Key:      board.Key(),
		Capacity: board.Capacity(),
		Times:    board.Times(),
	})
}

func (sc *SessionController) healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": sc.hub.Len()})
}

// fail maps hub errors to HTTP status codes.
func (sc *SessionController) fail(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		ctx.JSON(http.StatusNotFound, ErrorResponse{Error: "session not found"})
	case errors.Is(err, ErrTooManySessions):
		ctx.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "too many sessions"})
	case errors.Is(err, errNotIdle):
		ctx.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	default:
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
