package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yndnr/scenelink/internal/app"
	"github.com/yndnr/scenelink/internal/consumer"
	"github.com/yndnr/scenelink/internal/core/scene"
	"github.com/yndnr/scenelink/internal/producer"
	"github.com/yndnr/scenelink/internal/telemetry/logger"
)

type fakeRoles struct {
	ready    bool
	consumer *app.ConsumerStatus
	producer *app.ProducerStatus
}

func (f *fakeRoles) Ready() bool { return f.ready }

func (f *fakeRoles) ConsumerStatus() (app.ConsumerStatus, error) {
	if f.consumer == nil {
		return app.ConsumerStatus{}, scene.ErrRoleDisabled.WithDetails("server")
	}
	return *f.consumer, nil
}

func (f *fakeRoles) ProducerStatus() (app.ProducerStatus, error) {
	if f.producer == nil {
		return app.ProducerStatus{}, scene.ErrRoleDisabled.WithDetails("client")
	}
	return *f.producer, nil
}

func newFakeRoles() *fakeRoles {
	return &fakeRoles{
		ready: true,
		consumer: &app.ConsumerStatus{
			Status: consumer.Status{
				Summary: consumer.Summary{
					Nodes: []consumer.NodeSummary{
						{ID: 1, Name: "Root", Active: true},
						{ID: 2, Name: "Child", ParentID: 1, Active: true, MeshID: 10},
					},
					Meshes: 1,
				},
				Peer: "01J0000000000000000000PEER",
			},
			Endpoint: "tcp://127.0.0.1:5556",
			Peers:    1,
		},
		producer: &app.ProducerStatus{
			Status:    producer.Status{Ticks: 7, Nodes: 2},
			Connected: true,
			Sessions:  1,
		},
	}
}

func do(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("X-Request-ID", "req-test")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("%s: decode body %q: %v", path, rec.Body.String(), err)
	}
	return rec, resp
}

func TestHandler_Health(t *testing.T) {
	h := New(newFakeRoles(), logger.Nop())
	rec, resp := do(t, h, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if resp.Code != "OK" || resp.RequestID != "req-test" {
		t.Errorf("envelope = %+v", resp)
	}
	data, _ := resp.Data.(map[string]any)
	if data["status"] != "healthy" {
		t.Errorf("data = %v", resp.Data)
	}
	if _, ok := data["build"].(map[string]any); !ok {
		t.Error("health should report build info")
	}
}

func TestHandler_Ready(t *testing.T) {
	roles := newFakeRoles()
	roles.producer = nil
	h := New(roles, logger.Nop())

	rec, resp := do(t, h, "/ready")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	data, _ := resp.Data.(map[string]any)
	if data["consumer"] != true || data["producer"] != false {
		t.Errorf("data = %v", resp.Data)
	}

	roles.ready = false
	rec, resp = do(t, h, "/ready")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
	if resp.Code != scene.ErrNotReady.Code {
		t.Errorf("code = %q, want %q", resp.Code, scene.ErrNotReady.Code)
	}
}

func TestHandler_Mirror(t *testing.T) {
	h := New(newFakeRoles(), logger.Nop())

	tests := []struct {
		name      string
		path      string
		wantCode  int
		wantNodes int
	}{
		{"full", "/v1/mirror", http.StatusOK, 2},
		{"without nodes", "/v1/mirror?nodes=false", http.StatusOK, 0},
		{"bad flag", "/v1/mirror?nodes=maybe", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := do(t, h, tt.path)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			data, _ := resp.Data.(map[string]any)
			nodes, _ := data["nodes"].([]any)
			if len(nodes) != tt.wantNodes {
				t.Errorf("nodes = %d, want %d", len(nodes), tt.wantNodes)
			}
			if data["peers"] != float64(1) {
				t.Errorf("peers = %v", data["peers"])
			}
		})
	}
}

func TestHandler_MirrorNode(t *testing.T) {
	h := New(newFakeRoles(), logger.Nop())

	rec, resp := do(t, h, "/v1/mirror/nodes/2")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	data, _ := resp.Data.(map[string]any)
	if data["name"] != "Child" || data["parent_id"] != float64(1) {
		t.Errorf("node = %v", data)
	}

	rec, resp = do(t, h, "/v1/mirror/nodes/99")
	if rec.Code != http.StatusNotFound || resp.Code != scene.ErrNodeNotFound.Code {
		t.Errorf("missing node: status = %d, code = %q", rec.Code, resp.Code)
	}
	if rec.Header().Get("X-Error-Code") != scene.ErrNodeNotFound.Code {
		t.Errorf("X-Error-Code = %q", rec.Header().Get("X-Error-Code"))
	}

	rec, _ = do(t, h, "/v1/mirror/nodes/abc")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad id: status = %d, want 400", rec.Code)
	}
}

func TestHandler_RoleDisabled(t *testing.T) {
	roles := newFakeRoles()
	roles.consumer = nil
	h := New(roles, logger.Nop())

	rec, resp := do(t, h, "/v1/mirror")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if resp.Code != scene.ErrRoleDisabled.Code || resp.Details != "server" {
		t.Errorf("resp = %+v", resp)
	}

	rec, resp = do(t, h, "/v1/producer")
	if rec.Code != http.StatusOK {
		t.Fatalf("producer status = %d", rec.Code)
	}
	data, _ := resp.Data.(map[string]any)
	if data["connected"] != true || data["ticks"] != float64(7) {
		t.Errorf("producer = %v", data)
	}
}

func TestErrorCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{"SL-ROLE-4040", http.StatusNotFound},
		{"SL-SYS-4010", http.StatusUnauthorized},
		{"SL-SYS-4290", http.StatusTooManyRequests},
		{"SL-SYS-5030", http.StatusServiceUnavailable},
		{"SL-SYS-4000", http.StatusBadRequest},
		{"SL-SYS-5000", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := errorCodeToHTTPStatus(tt.code); got != tt.want {
			t.Errorf("errorCodeToHTTPStatus(%q) = %d, want %d", tt.code, got, tt.want)
		}
	}
}
