package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"lifeline/internal/app/birth"
	"lifeline/internal/app/ports"
	"lifeline/internal/app/replay"
	"lifeline/internal/app/snapshot"
	"lifeline/internal/app/turn"
	"lifeline/internal/domain/life"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

const prefetchTimeout = 45 * time.Second

type Handler struct {
	BirthUC    birth.UseCase
	TurnUC     turn.UseCase
	SnapshotUC snapshot.UseCase
	ReplayUC   replay.UseCase
	KPI        kpiSnapshotProvider
}

func (h Handler) RegisterRoutes(s *server.Hertz) {
	s.Use(corsMiddleware())

	run := s.Group("/api/run")
	run.POST("", h.createRun)
	run.GET("/:id", h.snapshot)
	run.POST("/:id/turn", h.turn)
	run.GET("/:id/replay", h.replay)

	s.GET("/ops/kpi", h.kpi)
}

type turnRequest struct {
	IdempotencyKey string `json:"idempotency_key"`
	Option         string `json:"option"`
}

func (h Handler) createRun(c context.Context, ctx *app.RequestContext) {
	resp, err := h.BirthUC.Execute(c)
	if err != nil {
		writeError(ctx, err)
		return
	}
	h.prefetch(resp.State.RunID)
	ctx.JSON(consts.StatusCreated, resp)
}

func (h Handler) turn(c context.Context, ctx *app.RequestContext) {
	var body turnRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}

	resp, err := h.TurnUC.Execute(c, turn.Request{
		RunID:          string(ctx.Param("id")),
		IdempotencyKey: body.IdempotencyKey,
		Option:         life.Option(body.Option),
	})
	if err != nil {
		writeError(ctx, err)
		return
	}

	if !resp.Died {
		h.prefetch(string(ctx.Param("id")))
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) snapshot(c context.Context, ctx *app.RequestContext) {
	resp, err := h.SnapshotUC.Execute(c, snapshot.Request{RunID: string(ctx.Param("id"))})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) replay(c context.Context, ctx *app.RequestContext) {
	limit, _ := strconv.Atoi(string(ctx.Query("limit")))
	occurredFrom, _ := strconv.ParseInt(string(ctx.Query("occurred_from")), 10, 64)
	occurredTo, _ := strconv.ParseInt(string(ctx.Query("occurred_to")), 10, 64)
	resp, err := h.ReplayUC.Execute(c, replay.Request{
		RunID:        string(ctx.Param("id")),
		Limit:        limit,
		OccurredFrom: occurredFrom,
		OccurredTo:   occurredTo,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

type kpiSnapshotProvider interface {
	SnapshotAny() any
}

func (h Handler) kpi(_ context.Context, ctx *app.RequestContext) {
	if h.KPI == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "kpi provider not configured")
		return
	}
	ctx.JSON(consts.StatusOK, h.KPI.SnapshotAny())
}

// prefetch warms both option branches of the run's pending offer off the
// request path. Failures only cost the next turn a synchronous generation.
func (h Handler) prefetch(runID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), prefetchTimeout)
		defer cancel()
		if err := h.TurnUC.Prefetch(ctx, runID); err != nil {
			slog.Debug("prefetch skipped", "run_id", runID, "err", err)
		}
	}()
}

func decodeJSON(ctx *app.RequestContext, out any) error {
	body := ctx.Request.Body()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

func writeError(ctx *app.RequestContext, err error) {
	switch {
	case errors.Is(err, turn.ErrInvalidRequest),
		errors.Is(err, snapshot.ErrInvalidRequest),
		errors.Is(err, replay.ErrInvalidRequest):
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, ports.ErrNotFound):
		writeErrorBody(ctx, consts.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ports.ErrRunTerminated):
		writeErrorBody(ctx, consts.StatusConflict, "run_terminated", err.Error())
	case errors.Is(err, turn.ErrNoPendingOffer):
		writeErrorBody(ctx, consts.StatusConflict, "no_pending_offer", err.Error())
	case errors.Is(err, ports.ErrConflict):
		writeErrorBody(ctx, consts.StatusConflict, "conflict", err.Error())
	case errors.Is(err, turn.ErrGenerator),
		errors.Is(err, birth.ErrGenerator),
		errors.Is(err, birth.ErrInvalidPayload):
		writeErrorBody(ctx, consts.StatusServiceUnavailable, "generator_unavailable", err.Error())
	default:
		writeErrorBody(ctx, consts.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
