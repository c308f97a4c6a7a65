package labapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/p-n-ai/pai-lab/internal/lab"
	"github.com/p-n-ai/pai-lab/internal/workbench"
)

const (
	maxFrameBytes          = 16 << 10
	maxDecodeErrorsPerConn = 3
	wsWriteTimeout         = 5 * time.Second
)

// Frame types accepted on the bench socket.
const (
	FrameMix        = "mix"
	FrameSetMode    = "mode.set"
	FrameToggleMode = "mode.toggle"
	FrameAdvance    = "advance"
	FrameReset      = "reset"
	FrameState      = "state"
)

// Frame types sent by the server.
const (
	FrameResult = "result"
	FrameError  = "error"
)

// Frame is the envelope for every websocket message in both directions.
type Frame struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

type wsErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// handleWebsocket upgrades to a command socket bound to one bench. Each
// inbound frame is answered with a result or error frame carrying the same
// request_id.
func (h *Handler) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := h.engine.State(r.Context(), id); err != nil {
		h.writeEngineError(w, err)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Warn("websocket accept failed", "bench_id", id, "error", err)
		return
	}
	defer conn.CloseNow()
	conn.SetReadLimit(maxFrameBytes)

	slog.Info("bench socket connected", "bench_id", id)
	defer slog.Info("bench socket disconnected", "bench_id", id)

	ctx := r.Context()
	decodeErrors := 0
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			if status := websocket.CloseStatus(err); status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway {
				slog.Debug("bench socket read ended", "bench_id", id, "error", err)
			}
			return
		}

		var frame Frame
		if typ != websocket.MessageText || json.Unmarshal(data, &frame) != nil {
			decodeErrors++
			if err := writeFrameError(ctx, conn, "", "INVALID_ARGUMENT", "invalid frame"); err != nil {
				return
			}
			if decodeErrors >= maxDecodeErrorsPerConn {
				conn.Close(websocket.StatusPolicyViolation, "too many invalid frames")
				return
			}
			continue
		}
		decodeErrors = 0

		result, err := h.dispatch(ctx, id, frame)
		if err != nil {
			code, msg := frameErrorFor(err)
			if err := writeFrameError(ctx, conn, frame.RequestID, code, msg); err != nil {
				return
			}
			if errors.Is(err, workbench.ErrBenchNotFound) {
				conn.Close(websocket.StatusNormalClosure, "bench closed")
				return
			}
			continue
		}
		if err := writeFrame(ctx, conn, FrameResult, frame.RequestID, result); err != nil {
			return
		}
	}
}

func (h *Handler) dispatch(ctx context.Context, id string, frame Frame) (any, error) {
	switch frame.Type {
	case FrameMix:
		var req mixRequest
		if err := decodePayload(frame.Payload, &req); err != nil {
			return nil, err
		}
		return h.engine.Mix(ctx, id, req.Container, req.Incoming)
	case FrameSetMode:
		var req modeRequest
		if err := decodePayload(frame.Payload, &req); err != nil {
			return nil, err
		}
		mode, err := lab.ParseMode(req.Mode)
		if err != nil {
			return nil, badRequest("%v", err)
		}
		return h.engine.SetMode(ctx, id, mode)
	case FrameToggleMode:
		return h.engine.ToggleMode(ctx, id)
	case FrameAdvance:
		return h.engine.Advance(ctx, id)
	case FrameReset:
		var req resetRequest
		if err := decodePayload(frame.Payload, &req); err != nil {
			return nil, err
		}
		scope, err := workbench.ParseResetScope(req.Scope)
		if err != nil {
			return nil, badRequest("%v", err)
		}
		return h.engine.Reset(ctx, id, scope)
	case FrameState:
		return h.engine.State(ctx, id)
	default:
		return nil, badRequest("unsupported frame type %q", frame.Type)
	}
}

func decodePayload(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return badRequest("payload is required")
	}
	return decodeJSON(bytes.NewReader(raw), dst)
}

func frameErrorFor(err error) (code, msg string) {
	switch statusFor(err) {
	case http.StatusBadRequest:
		return "INVALID_ARGUMENT", err.Error()
	case http.StatusNotFound:
		return "NOT_FOUND", err.Error()
	default:
		slog.Error("bench socket command failed", "error", err)
		return "INTERNAL", "internal error"
	}
}

func writeFrame(ctx context.Context, conn *websocket.Conn, typ, requestID string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, Frame{Type: typ, RequestID: requestID, Payload: raw})
}

func writeFrameError(ctx context.Context, conn *websocket.Conn, requestID, code, msg string) error {
	return writeFrame(ctx, conn, FrameError, requestID, wsErrorPayload{Code: code, Message: msg})
}
