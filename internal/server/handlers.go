package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/dotring/pkg/buildinfo"
	"github.com/matzehuels/dotring/pkg/errors"
	"github.com/matzehuels/dotring/pkg/render/sink"
	"github.com/matzehuels/dotring/pkg/widget"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 16

// =============================================================================
// Response helpers
// =============================================================================

type errorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.IsInvalid(err):
		return http.StatusBadRequest
	case errors.IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorBody{Code: code, Message: errors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeBytes(w http.ResponseWriter, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(data)
}

// decode reads an optional JSON body into v. An empty body leaves v as is.
func decode(r *http.Request, v any, code errors.Code) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return errors.Wrap(code, err, "read body")
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrap(code, err, "decode body")
	}
	return nil
}

// withWidget runs fn on the widget named by the {id} URL parameter.
func (s *Server) withWidget(r *http.Request, fn func(*widget.Controller) error) error {
	return s.registry.Do(r.Context(), chi.URLParam(r, "id"), fn)
}

// snapshot runs fn and then captures the widget state.
func (s *Server) snapshot(r *http.Request, fn func(*widget.Controller) error) (sink.Snapshot, error) {
	var snap sink.Snapshot
	err := s.withWidget(r, func(c *widget.Controller) error {
		if fn != nil {
			if err := fn(c); err != nil {
				return err
			}
		}
		snap = sink.TakeSnapshot(c)
		return nil
	})
	snap.ID = chi.URLParam(r, "id")
	return snap, err
}

func (s *Server) respondSnapshot(w http.ResponseWriter, r *http.Request, fn func(*widget.Controller) error) {
	snap, err := s.snapshot(r, fn)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status  string         `json:"status"`
		Widgets int            `json:"widgets"`
		Build   buildinfo.Info `json:"build"`
	}{"ok", s.registry.Len(), buildinfo.Get()})
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	v := s.Defaults().WithDefaults().Variant
	if q := r.URL.Query().Get("variant"); q != "" {
		parsed, err := widget.ParseVariant(q)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		v = parsed
	}

	id, err := s.homeWidget(v)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var page []byte
	err = s.registry.Do(r.Context(), id, func(c *widget.Controller) error {
		var err error
		page, err = sink.RenderMarkup(c,
			sink.WithMarkupID(id),
			sink.WithBasePath(s.basePath),
			sink.WithPage("dotring"),
			sink.WithMarkupContext(r.Context()),
		)
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeBytes(w, "text/html; charset=utf-8", page)
}

type createResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req widget.Options
	if err := decode(r, &req, errors.ErrCodeInvalidInput); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Variant != "" {
		if _, err := widget.ParseVariant(string(req.Variant)); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	id, err := s.registry.Create(s.optionsFor(req.Variant).Merge(req))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Debug("Created widget", "id", id, "variant", req.Variant)
	writeJSON(w, http.StatusCreated, createResponse{ID: id, URL: s.basePath + "/" + id})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	ids := s.registry.IDs()
	writeJSON(w, http.StatusOK, struct {
		Widgets []string `json:"widgets"`
		Count   int      `json:"count"`
	}{ids, len(ids)})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	s.respondSnapshot(w, r, nil)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.registry.Delete(chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	opts := []sink.SVGOption{sink.WithSVGContext(r.Context())}
	if r.URL.Query().Get("fragment") != "" {
		opts = append(opts, sink.WithFragment())
	}
	var data []byte
	err := s.withWidget(r, func(c *widget.Controller) error {
		data = sink.RenderSVG(c, opts...)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeBytes(w, "image/svg+xml", data)
}

func (s *Server) handlePNG(w http.ResponseWriter, r *http.Request) {
	opts := []sink.PNGOption{sink.WithPNGContext(r.Context())}
	if q := r.URL.Query().Get("scale"); q != "" {
		scale, err := strconv.ParseFloat(q, 64)
		if err != nil {
			s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "scale %q", q))
			return
		}
		opts = append(opts, sink.WithScale(scale))
	}
	var data []byte
	err := s.withWidget(r, func(c *widget.Controller) error {
		var err error
		data, err = sink.RenderPNG(c, opts...)
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeBytes(w, "image/png", data)
}

func (s *Server) handleMarkup(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	opts := []sink.MarkupOption{
		sink.WithMarkupID(id),
		sink.WithBasePath(s.basePath),
		sink.WithMarkupContext(r.Context()),
	}
	if r.URL.Query().Get("page") != "" {
		opts = append(opts, sink.WithPage("dotring"))
	}
	var data []byte
	err := s.withWidget(r, func(c *widget.Controller) error {
		var err error
		data, err = sink.RenderMarkup(c, opts...)
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeBytes(w, "text/html; charset=utf-8", data)
}

// eventResponse is a snapshot plus whether the event changed the drawing.
type eventResponse struct {
	Redraw bool `json:"redraw"`
	sink.Snapshot
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	var ev widget.Event
	if err := decode(r, &ev, errors.ErrCodeInvalidEvent); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := ev.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	var redraw bool
	snap, err := s.snapshot(r, func(c *widget.Controller) error {
		redraw = c.Handle(ev)
		// One event is one frame for remote hosts.
		if c.Frame() {
			redraw = true
		}
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, eventResponse{Redraw: redraw, Snapshot: snap})
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Action string `json:"action"`
	}
	if err := decode(r, &req, errors.ErrCodeInvalidInput); err != nil {
		s.writeError(w, r, err)
		return
	}
	action, err := widget.ParseAction(req.Action)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondSnapshot(w, r, func(c *widget.Controller) error {
		return c.SetAction(action)
	})
}

func (s *Server) handleAddDot(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Color string `json:"color"`
	}
	if err := decode(r, &req, errors.ErrCodeInvalidInput); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondSnapshot(w, r, func(c *widget.Controller) error {
		c.Add(req.Color)
		return nil
	})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.respondSnapshot(w, r, func(c *widget.Controller) error {
		c.RemoveAll()
		return nil
	})
}

func (s *Server) handleRemoveDot(w http.ResponseWriter, r *http.Request) {
	index := chi.URLParam(r, "index")
	s.respondSnapshot(w, r, func(c *widget.Controller) error {
		return c.RemoveSelected(index)
	})
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Index *int `json:"index"`
	}
	if err := decode(r, &req, errors.ErrCodeInvalidInput); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Index == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "index is required"))
		return
	}
	s.respondSnapshot(w, r, func(c *widget.Controller) error {
		if *req.Index < 0 {
			c.ClearSelection()
			return nil
		}
		return c.Select(*req.Index)
	})
}
