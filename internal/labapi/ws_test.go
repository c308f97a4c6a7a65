package labapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/p-n-ai/pai-lab/internal/labapi"
	"github.com/p-n-ai/pai-lab/internal/workbench"
)

type wsErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func dialBench(t *testing.T) (*websocket.Conn, context.Context) {
	t.Helper()
	mux := newTestMux(t, workbench.EngineConfig{})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	id := openBench(t, mux)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	conn, _, err := websocket.Dial(ctx, srv.URL+"/v1/benches/"+id+"/ws", nil)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn, ctx
}

func roundTrip(t *testing.T, ctx context.Context, conn *websocket.Conn, frame labapi.Frame) labapi.Frame {
	t.Helper()
	if err := wsjson.Write(ctx, conn, frame); err != nil {
		t.Fatalf("write frame: %v", err)
	}
	var got labapi.Frame
	if err := wsjson.Read(ctx, conn, &got); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return got
}

func TestWebsocket_Mix(t *testing.T) {
	conn, ctx := dialBench(t)

	got := roundTrip(t, ctx, conn, labapi.Frame{
		Type:      labapi.FrameMix,
		RequestID: "r1",
		Payload:   json.RawMessage(`{"container":"AgNO3","incoming":"HCl"}`),
	})
	if got.Type != labapi.FrameResult || got.RequestID != "r1" {
		t.Fatalf("frame = %s/%s, want result/r1", got.Type, got.RequestID)
	}
	var res workbench.MixResult
	if err := json.Unmarshal(got.Payload, &res); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if res.Kind != workbench.MixReacted || res.Reaction == nil || res.Reaction.Type != "precipitation" {
		t.Errorf("mix result = %+v, want precipitation", res)
	}
}

func TestWebsocket_Commands(t *testing.T) {
	conn, ctx := dialBench(t)

	tests := []struct {
		name     string
		frame    labapi.Frame
		wantType string
		wantCode string
	}{
		{"state", labapi.Frame{Type: labapi.FrameState, RequestID: "a"}, labapi.FrameResult, ""},
		{"set mode", labapi.Frame{Type: labapi.FrameSetMode, RequestID: "b", Payload: json.RawMessage(`{"mode":"guided"}`)}, labapi.FrameResult, ""},
		{"toggle", labapi.Frame{Type: labapi.FrameToggleMode, RequestID: "c"}, labapi.FrameResult, ""},
		{"advance", labapi.Frame{Type: labapi.FrameAdvance, RequestID: "d"}, labapi.FrameResult, ""},
		{"reset", labapi.Frame{Type: labapi.FrameReset, RequestID: "e", Payload: json.RawMessage(`{"scope":"full"}`)}, labapi.FrameResult, ""},
		{"bad mode", labapi.Frame{Type: labapi.FrameSetMode, RequestID: "f", Payload: json.RawMessage(`{"mode":"chaos"}`)}, labapi.FrameError, "INVALID_ARGUMENT"},
		{"missing payload", labapi.Frame{Type: labapi.FrameMix, RequestID: "g"}, labapi.FrameError, "INVALID_ARGUMENT"},
		{"unknown type", labapi.Frame{Type: "explode", RequestID: "h"}, labapi.FrameError, "INVALID_ARGUMENT"},
		{"unknown payload field", labapi.Frame{Type: labapi.FrameMix, RequestID: "i", Payload: json.RawMessage(`{"container":"HCl","incoming":"NaOH","volume":3}`)}, labapi.FrameError, "INVALID_ARGUMENT"},
	}

	// Frames share one connection, so order matters.
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := roundTrip(t, ctx, conn, tt.frame)
			if got.Type != tt.wantType {
				t.Fatalf("Type = %q, want %q (payload %s)", got.Type, tt.wantType, got.Payload)
			}
			if got.RequestID != tt.frame.RequestID {
				t.Errorf("RequestID = %q, want %q", got.RequestID, tt.frame.RequestID)
			}
			if tt.wantCode == "" {
				return
			}
			var e wsErrorPayload
			if err := json.Unmarshal(got.Payload, &e); err != nil {
				t.Fatalf("decode error payload: %v", err)
			}
			if e.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", e.Code, tt.wantCode)
			}
		})
	}
}

func TestWebsocket_InvalidFrame(t *testing.T) {
	conn, ctx := dialBench(t)

	if err := conn.Write(ctx, websocket.MessageText, []byte("not json")); err != nil {
		t.Fatalf("write: %v", err)
	}
	var got labapi.Frame
	if err := wsjson.Read(ctx, conn, &got); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if got.Type != labapi.FrameError {
		t.Errorf("Type = %q, want error", got.Type)
	}
}

func TestWebsocket_UnknownBench(t *testing.T) {
	mux := newTestMux(t, workbench.EngineConfig{})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, resp, err := websocket.Dial(ctx, srv.URL+"/v1/benches/missing/ws", nil)
	if err == nil {
		t.Fatal("Dial() should fail for an unknown bench")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Errorf("response = %v, want 404", resp)
	}
	if resp != nil && !strings.Contains(resp.Header.Get("Content-Type"), "json") {
		t.Errorf("Content-Type = %q, want json error", resp.Header.Get("Content-Type"))
	}
}
