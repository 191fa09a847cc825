package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dotring/pkg/errors"
	"github.com/matzehuels/dotring/pkg/observability"
	"github.com/matzehuels/dotring/pkg/render/sink"
	"github.com/matzehuels/dotring/pkg/ring"
	"github.com/matzehuels/dotring/pkg/widget"
)

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	return New(append([]Option{WithLogger(log.New(io.Discard))}, opts...)...)
}

func request(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func createWidget(t *testing.T, s *Server, body string) string {
	t.Helper()
	rec := request(t, s, http.MethodPost, "/api/widgets", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body)
	}
	return decodeBody[createResponse](t, rec).ID
}

func eventBody(kind widget.EventKind, p ring.Point, color string) string {
	ev := widget.Event{Kind: kind, X: p.X, Y: p.Y}
	if color != "" {
		ev.Payload = &widget.DragPayload{Color: color}
	}
	data, _ := json.Marshal(ev)
	return string(data)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := request(t, s, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody[map[string]any](t, rec)
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestCreateAndSnapshot(t *testing.T) {
	s := newTestServer(t)
	id := createWidget(t, s, `{"variant": "toggle", "radius": 100}`)

	rec := request(t, s, http.MethodGet, "/api/widgets/"+id, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	snap := decodeBody[sink.Snapshot](t, rec)
	if snap.ID != id || snap.Variant != widget.VariantToggle {
		t.Errorf("snapshot id %q variant %q", snap.ID, snap.Variant)
	}
	if snap.Circle.Radius != 100 || snap.Width != 800 {
		t.Errorf("circle %+v width %v", snap.Circle, snap.Width)
	}
	if snap.RemovalZone == nil {
		t.Error("toggle widget has no removal zone")
	}

	list := decodeBody[struct {
		Widgets []string `json:"widgets"`
		Count   int      `json:"count"`
	}](t, request(t, s, http.MethodGet, "/api/widgets", ""))
	if list.Count != 1 || list.Widgets[0] != id {
		t.Errorf("list = %+v", list)
	}
}

func TestCreateUsesDefaults(t *testing.T) {
	s := newTestServer(t, WithDefaults(widget.Options{Width: 600, Height: 300, Palette: []string{"#123456"}}))

	managed := createWidget(t, s, "")
	snap := decodeBody[sink.Snapshot](t, request(t, s, http.MethodGet, "/api/widgets/"+managed, ""))
	if snap.Width != 600 || snap.Height != 300 {
		t.Errorf("managed size = %vx%v, want 600x300", snap.Width, snap.Height)
	}

	// Another variant keeps the palette but takes its own sizes.
	toggle := createWidget(t, s, `{"variant": "toggle"}`)
	snap = decodeBody[sink.Snapshot](t, request(t, s, http.MethodPost, "/api/widgets/"+toggle+"/dots", `{}`))
	if snap.Width != 800 {
		t.Errorf("toggle width = %v, want 800", snap.Width)
	}
	if len(snap.Dots) != 1 || snap.Dots[0].Color != "#123456" {
		t.Errorf("dots = %+v, want one palette dot", snap.Dots)
	}
}

func TestSetDefaults(t *testing.T) {
	s := newTestServer(t)
	before := createWidget(t, s, "")

	s.SetDefaults(widget.Options{Variant: widget.VariantToggle})
	if got := s.Defaults().Variant; got != widget.VariantToggle {
		t.Fatalf("Defaults().Variant = %q", got)
	}

	after := createWidget(t, s, "")
	snap := decodeBody[sink.Snapshot](t, request(t, s, http.MethodGet, "/api/widgets/"+after, ""))
	if snap.Variant != widget.VariantToggle {
		t.Errorf("new widget variant = %q, want toggle", snap.Variant)
	}
	snap = decodeBody[sink.Snapshot](t, request(t, s, http.MethodGet, "/api/widgets/"+before, ""))
	if snap.Variant != widget.VariantManaged {
		t.Errorf("existing widget variant = %q, want managed", snap.Variant)
	}
}

func TestCreateInvalid(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		name string
		body string
		code errors.Code
	}{
		{"bad json", `{`, errors.ErrCodeInvalidInput},
		{"bad variant", `{"variant": "hex"}`, errors.ErrCodeInvalidVariant},
		{"bad radius", `{"radius": -5}`, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := request(t, s, http.MethodPost, "/api/widgets", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if got := decodeBody[errorBody](t, rec); got.Code != tt.code {
				t.Errorf("code = %s, want %s", got.Code, tt.code)
			}
		})
	}
}

func TestEventRoundTrip(t *testing.T) {
	s := newTestServer(t)
	id := createWidget(t, s, "")
	snap := decodeBody[sink.Snapshot](t, request(t, s, http.MethodGet, "/api/widgets/"+id, ""))
	circle := snap.Circle

	path := "/api/widgets/" + id + "/events"
	for _, deg := range []float64{10, 130, 250} {
		p := circle.PointAt(ring.Radians(deg))
		rec := request(t, s, http.MethodPost, path, eventBody(widget.EventDragOver, p, ""))
		resp := decodeBody[eventResponse](t, rec)
		if !resp.Redraw || !resp.Tooltip.Visible || resp.Cursor != widget.CursorPointer {
			t.Fatalf("dragover response = %+v", resp)
		}
		rec = request(t, s, http.MethodPost, path, eventBody(widget.EventDrop, p, "#00ff00"))
		if rec.Code != http.StatusOK {
			t.Fatalf("drop status = %d", rec.Code)
		}
	}

	final := decodeBody[sink.Snapshot](t, request(t, s, http.MethodGet, "/api/widgets/"+id, ""))
	want := []int{0, 120, 240}
	if len(final.Dots) != len(want) {
		t.Fatalf("dots = %+v", final.Dots)
	}
	for i, d := range final.Dots {
		if d.Degrees != want[i] || d.Color != "#00ff00" {
			t.Errorf("dot %d = %+v", i, d)
		}
	}
	if final.Hover != nil || final.Tooltip.Visible {
		t.Error("hover survived the drop")
	}
}

func TestEventInvalid(t *testing.T) {
	s := newTestServer(t)
	id := createWidget(t, s, "")
	path := "/api/widgets/" + id + "/events"

	for _, body := range []string{`{"kind": "wheel"}`, `not json`, ``} {
		rec := request(t, s, http.MethodPost, path, body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, rec.Code)
			continue
		}
		if got := decodeBody[errorBody](t, rec); got.Code != errors.ErrCodeInvalidEvent {
			t.Errorf("body %q: code = %s", body, got.Code)
		}
	}
}

func TestUnknownWidget(t *testing.T) {
	s := newTestServer(t)
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/widgets/nope"},
		{http.MethodGet, "/api/widgets/nope/svg"},
		{http.MethodPost, "/api/widgets/nope/action"},
		{http.MethodDelete, "/api/widgets/nope/dots"},
		{http.MethodDelete, "/api/widgets/nope"},
	} {
		body := ""
		if tc.method == http.MethodPost {
			body = `{"action": "add"}`
		}
		rec := request(t, s, tc.method, tc.path, body)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s %s: status = %d, want 404", tc.method, tc.path, rec.Code)
			continue
		}
		if got := decodeBody[errorBody](t, rec); got.Code != errors.ErrCodeWidgetNotFound {
			t.Errorf("%s %s: code = %s", tc.method, tc.path, got.Code)
		}
	}
}

func TestPanelEndpoints(t *testing.T) {
	s := newTestServer(t)
	id := createWidget(t, s, "")
	base := "/api/widgets/" + id

	for range 4 {
		request(t, s, http.MethodPost, base+"/dots", `{"color": "#abcdef"}`)
	}

	rec := request(t, s, http.MethodPost, base+"/action", `{"action": "remove"}`)
	snap := decodeBody[sink.Snapshot](t, rec)
	if snap.Action != widget.ActionRemove || snap.Cursor != widget.CursorNotAllowed {
		t.Errorf("action = %q cursor = %q", snap.Action, snap.Cursor)
	}
	if !snap.Panel.SelectorVisible || len(snap.Panel.Options) != 4 {
		t.Errorf("panel = %+v", snap.Panel)
	}

	snap = decodeBody[sink.Snapshot](t, request(t, s, http.MethodDelete, base+"/dots/1", ""))
	var degs []int
	for _, d := range snap.Dots {
		degs = append(degs, d.Degrees)
	}
	if fmt.Sprint(degs) != "[0 120 240]" {
		t.Errorf("after remove = %v, want [0 120 240]", degs)
	}

	for _, tc := range []struct {
		path   string
		status int
		code   errors.Code
	}{
		{base + "/dots/9", http.StatusNotFound, errors.ErrCodeDotNotFound},
		{base + "/dots/x", http.StatusBadRequest, errors.ErrCodeInvalidInput},
	} {
		rec := request(t, s, http.MethodDelete, tc.path, "")
		if rec.Code != tc.status || decodeBody[errorBody](t, rec).Code != tc.code {
			t.Errorf("DELETE %s = %d %s", tc.path, rec.Code, rec.Body)
		}
	}

	rec = request(t, s, http.MethodPost, base+"/action", `{"action": "erase"}`)
	if rec.Code != http.StatusBadRequest || decodeBody[errorBody](t, rec).Code != errors.ErrCodeInvalidAction {
		t.Errorf("bad action = %d %s", rec.Code, rec.Body)
	}

	snap = decodeBody[sink.Snapshot](t, request(t, s, http.MethodPut, base+"/selection", `{"index": 2}`))
	if snap.Selected != 2 {
		t.Errorf("Selected = %d, want 2", snap.Selected)
	}
	snap = decodeBody[sink.Snapshot](t, request(t, s, http.MethodPut, base+"/selection", `{"index": -1}`))
	if snap.Selected != -1 {
		t.Errorf("Selected = %d, want -1", snap.Selected)
	}
	if rec := request(t, s, http.MethodPut, base+"/selection", `{}`); rec.Code != http.StatusBadRequest {
		t.Errorf("selection without index = %d", rec.Code)
	}

	snap = decodeBody[sink.Snapshot](t, request(t, s, http.MethodDelete, base+"/dots", ""))
	if len(snap.Dots) != 0 || snap.Panel.Visible {
		t.Errorf("after clear = %+v", snap)
	}
}

func TestDrawingEndpoints(t *testing.T) {
	s := newTestServer(t)
	id := createWidget(t, s, "")
	base := "/api/widgets/" + id
	request(t, s, http.MethodPost, base+"/dots", "")

	rec := request(t, s, http.MethodGet, base+"/svg", "")
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("svg content type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), `xmlns="http://www.w3.org/2000/svg"`) {
		t.Error("svg document lacks xmlns")
	}
	if rec := request(t, s, http.MethodGet, base+"/svg?fragment=1", ""); strings.Contains(rec.Body.String(), "xmlns") {
		t.Error("svg fragment carries xmlns")
	}

	rec = request(t, s, http.MethodGet, base+"/png?scale=1", "")
	if rec.Code != http.StatusOK || !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")) {
		t.Errorf("png = %d, %d bytes", rec.Code, rec.Body.Len())
	}
	for _, q := range []string{"abc", "0"} {
		if rec := request(t, s, http.MethodGet, base+"/png?scale="+q, ""); rec.Code != http.StatusBadRequest {
			t.Errorf("png scale %q = %d, want 400", q, rec.Code)
		}
	}

	rec = request(t, s, http.MethodGet, base+"/markup", "")
	if !strings.Contains(rec.Body.String(), `data-api="/api/widgets/`+id+`"`) {
		t.Error("markup lacks the widget api path")
	}
	if strings.Contains(rec.Body.String(), "<!doctype html>") {
		t.Error("markup fragment is a full page")
	}
	rec = request(t, s, http.MethodGet, base+"/markup?page=1", "")
	if !strings.HasPrefix(rec.Body.String(), "<!doctype html>") {
		t.Error("markup page lacks doctype")
	}
}

func TestIndexPage(t *testing.T) {
	s := newTestServer(t)

	first := request(t, s, http.MethodGet, "/", "")
	if first.Code != http.StatusOK || !strings.Contains(first.Body.String(), "Drag Dots to Circle") {
		t.Fatalf("index = %d", first.Code)
	}
	request(t, s, http.MethodGet, "/", "")
	if n := s.Registry().Len(); n != 1 {
		t.Errorf("Len() = %d after two page loads, want 1", n)
	}

	toggle := request(t, s, http.MethodGet, "/?variant=toggle", "")
	if !strings.Contains(toggle.Body.String(), "Removal Zone") {
		t.Error("toggle page lacks removal zone")
	}
	if n := s.Registry().Len(); n != 2 {
		t.Errorf("Len() = %d, want 2", n)
	}

	if rec := request(t, s, http.MethodGet, "/?variant=hex", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bad variant = %d", rec.Code)
	}

	// A deleted home widget is recreated.
	for _, id := range s.Registry().IDs() {
		if rec := request(t, s, http.MethodDelete, "/api/widgets/"+id, ""); rec.Code != http.StatusNoContent {
			t.Fatalf("delete = %d", rec.Code)
		}
	}
	request(t, s, http.MethodGet, "/", "")
	if n := s.Registry().Len(); n != 1 {
		t.Errorf("Len() = %d after recreate, want 1", n)
	}
}

func TestRecoverer(t *testing.T) {
	s := newTestServer(t)
	id := createWidget(t, s, "")
	err := s.Registry().Do(context.Background(), id, func(c *widget.Controller) error {
		c.On(widget.EventClick, func(*widget.Controller, widget.Event) bool { panic("boom") })
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	rec := request(t, s, http.MethodPost, "/api/widgets/"+id+"/events", `{"kind": "click"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	// The widget lock was released.
	if rec := request(t, s, http.MethodGet, "/api/widgets/"+id, ""); rec.Code != http.StatusOK {
		t.Errorf("after panic status = %d", rec.Code)
	}
}

type httpRecorder struct {
	observability.NoopHTTPHooks
	requests  int
	responses []int
}

func (h *httpRecorder) OnRequest(context.Context, string, string) { h.requests++ }

func (h *httpRecorder) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	h.responses = append(h.responses, status)
}

func TestHTTPHooks(t *testing.T) {
	rec := &httpRecorder{}
	observability.SetHTTPHooks(rec)
	t.Cleanup(observability.Reset)

	s := newTestServer(t)
	request(t, s, http.MethodGet, "/healthz", "")
	request(t, s, http.MethodGet, "/api/widgets/missing", "")

	if rec.requests != 2 {
		t.Errorf("requests = %d, want 2", rec.requests)
	}
	if fmt.Sprint(rec.responses) != "[200 404]" {
		t.Errorf("responses = %v", rec.responses)
	}
}

func TestListenAndServeShutdown(t *testing.T) {
	s := newTestServer(t, WithShutdownTimeout(time.Second))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe() error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("ListenAndServe() did not return after cancel")
	}
}

func TestListenAndServeBadAddr(t *testing.T) {
	s := newTestServer(t)
	err := s.ListenAndServe(context.Background(), "127.0.0.1:-1")
	if !errors.Is(err, errors.ErrCodeInternal) {
		t.Errorf("ListenAndServe() error = %v, want INTERNAL", err)
	}
}
