package server

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/coursegraph/pkg/advisor"
	"github.com/matzehuels/coursegraph/pkg/catalog"
	cgerrors "github.com/matzehuels/coursegraph/pkg/errors"
	"github.com/matzehuels/coursegraph/pkg/hittest"
	"github.com/matzehuels/coursegraph/pkg/layout"
	"github.com/matzehuels/coursegraph/pkg/pipeline"
	"github.com/matzehuels/coursegraph/pkg/render"
	"github.com/matzehuels/coursegraph/pkg/render/sink"
)

var contentTypes = map[string]string{
	pipeline.FormatPNG:      "image/png",
	pipeline.FormatSVG:      "image/svg+xml",
	pipeline.FormatPDF:      "application/pdf",
	pipeline.FormatJSON:     "application/json",
	pipeline.FormatDOT:      "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatGraphviz: "image/svg+xml",
}

// errorResponse is the body of every non-2xx JSON response.
type errorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// hoverResponse is the body of GET /hover.
type hoverResponse struct {
	Hit      bool            `json:"hit"`
	Course   *catalog.Course `json:"course,omitempty"`
	Status   string          `json:"status,omitempty"`
	Surface  *layout.Point   `json:"surface,omitempty"`
	Display  *layout.Point   `json:"display,omitempty"`
	Selected []string        `json:"selected"`
}

// recommendRequest is the body of POST /recommend.
type recommendRequest struct {
	Messages []advisor.Message `json:"messages"`
}

// recommendResponse is the reply to POST /recommend.
type recommendResponse struct {
	Reply   string   `json:"reply"`
	Courses []string `json:"courses"`
	Unknown []string `json:"unknown,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"courses": s.catalog.Len(),
		"catalog": s.catalogHash[:12],
	})
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	opts, err := s.optionsFromQuery(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	opts.Formats = []string{format}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		s.respondError(w, err)
		return
	}

	sel, unknown := pipeline.ResolveSelection(s.catalog, opts.Selection)
	l := pipeline.ComputeLayout(r.Context(), s.catalog, opts)
	artifacts, hit, err := s.runner.RenderWithCacheInfo(r.Context(), s.catalogHash, s.catalog, l, sel, opts)
	if err != nil {
		s.respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("X-Cache", cacheHeader(hit))
	if len(unknown) > 0 {
		w.Header().Set("X-Unknown-Courses", strings.Join(unknown, ","))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(artifacts[format]); err != nil {
		s.logger.Debug("write response", "err", err)
	}
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	opts, err := s.optionsFromQuery(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	if err := opts.ValidateForLayout(); err != nil {
		s.respondError(w, err)
		return
	}

	sel, _ := pipeline.ResolveSelection(s.catalog, opts.Selection)
	l := pipeline.ComputeLayout(r.Context(), s.catalog, opts)
	data, err := sink.RenderJSON(s.catalog, l, sel)
	if err != nil {
		s.respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// handleHover hit-tests x,y. left, top, display_width and display_height
// describe where the diagram is shown; by default it is shown unscaled at
// the origin at its rendered size.
func (s *Server) handleHover(w http.ResponseWriter, r *http.Request) {
	opts, err := s.optionsFromQuery(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	if err := opts.ValidateForLayout(); err != nil {
		s.respondError(w, err)
		return
	}

	q := r.URL.Query()
	var client layout.Point
	var vp hittest.Viewport
	for _, p := range []struct {
		name     string
		dst      *float64
		required bool
	}{
		{"x", &client.X, true},
		{"y", &client.Y, true},
		{"left", &vp.Left, false},
		{"top", &vp.Top, false},
		{"display_width", &vp.DisplayWidth, false},
		{"display_height", &vp.DisplayHeight, false},
	} {
		if err := parseFloat(q, p.name, p.dst, p.required); err != nil {
			s.respondError(w, err)
			return
		}
	}

	sel, _ := pipeline.ResolveSelection(s.catalog, opts.Selection)
	l := pipeline.ComputeLayout(r.Context(), s.catalog, opts)

	vp.SurfaceWidth, vp.SurfaceHeight = opts.Width, opts.Height
	if vp.SurfaceWidth <= 0 || vp.SurfaceHeight <= 0 {
		vp.SurfaceWidth, vp.SurfaceHeight = l.Bounds()
	}
	if vp.SurfaceWidth <= 0 || vp.SurfaceHeight <= 0 {
		vp.SurfaceWidth, vp.SurfaceHeight = sink.DefaultWidth, sink.DefaultHeight
	}
	if !q.Has("display_width") {
		vp.DisplayWidth = vp.SurfaceWidth
	}
	if !q.Has("display_height") {
		vp.DisplayHeight = vp.SurfaceHeight
	}

	resp := hoverResponse{Selected: sel.IDs()}
	if d := hittest.Hover(client, vp, l, s.catalog); d != nil {
		resp.Hit = true
		resp.Course = &d.Course
		resp.Status = render.Classify(s.catalog, sel)[d.Course.ID].String()
		resp.Surface = &d.Surface
		resp.Display = &d.Display
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.respondError(w, cgerrors.Wrap(cgerrors.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}
	if len(req.Messages) == 0 {
		s.respondError(w, cgerrors.New(cgerrors.ErrCodeInvalidInput, "messages must not be empty"))
		return
	}

	reply, err := s.rec.Recommend(r.Context(), req.Messages)
	if err != nil {
		s.logger.Warn("recommendation failed", "err", err)
		s.respondError(w, err)
		return
	}
	known, unknown := s.catalog.Partition(advisor.ExtractCourseIDs(reply))
	s.respondJSON(w, http.StatusOK, recommendResponse{
		Reply:   reply,
		Courses: known,
		Unknown: unknown,
	})
}

// optionsFromQuery reads the selection and geometry parameters.
func (s *Server) optionsFromQuery(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.Options{
		Catalog: s.catalog,
		Logger:  s.logger,
	}
	for _, v := range q["select"] {
		for _, id := range strings.Split(v, ",") {
			if id = strings.ToUpper(strings.TrimSpace(id)); id != "" {
				opts.Selection = append(opts.Selection, id)
			}
		}
	}

	for name, dst := range map[string]*float64{
		"layer_spacing": &opts.HorizontalSpacing,
		"slot_spacing":  &opts.VerticalSpacing,
		"radius":        &opts.NodeRadius,
		"width":         &opts.Width,
		"height":        &opts.Height,
		"scale":         &opts.Scale,
		"inset":         &opts.EdgeInset,
	} {
		if err := parseFloat(q, name, dst, false); err != nil {
			return opts, err
		}
	}
	if v := q.Get("detailed"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, cgerrors.New(cgerrors.ErrCodeInvalidInput, "detailed must be a boolean, got %q", v)
		}
		opts.Detailed = b
	}
	opts.Refresh = q.Get("refresh") == "true"
	return opts, nil
}

func parseFloat(q map[string][]string, name string, dst *float64, required bool) error {
	vs := q[name]
	if len(vs) == 0 || vs[0] == "" {
		if required {
			return cgerrors.New(cgerrors.ErrCodeInvalidInput, "missing parameter %q", name)
		}
		return nil
	}
	f, err := strconv.ParseFloat(vs[0], 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return cgerrors.New(cgerrors.ErrCodeInvalidInput, "%s must be a finite number, got %q", name, vs[0])
	}
	*dst = f
	return nil
}

func cacheHeader(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	switch cgerrors.GetCode(err) {
	case cgerrors.ErrCodeInvalidInput, cgerrors.ErrCodeInvalidFormat, cgerrors.ErrCodeInvalidSelection:
		return http.StatusBadRequest
	case cgerrors.ErrCodeNotFound, cgerrors.ErrCodeCourseNotFound:
		return http.StatusNotFound
	case cgerrors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	case cgerrors.ErrCodeRecommendation, cgerrors.ErrCodeNetwork, cgerrors.ErrCodeRateLimited, cgerrors.ErrCodeTimeout:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Debug("encode response", "err", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	s.respondJSON(w, status, errorResponse{
		Error:   http.StatusText(status),
		Code:    string(cgerrors.GetCode(err)),
		Message: cgerrors.UserMessage(err),
	})
}
