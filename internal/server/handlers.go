package server

import (
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/matzehuels/taskdag/pkg/command"
	"github.com/matzehuels/taskdag/pkg/dag"
	dagerrors "github.com/matzehuels/taskdag/pkg/errors"
	"github.com/matzehuels/taskdag/pkg/guard"
	"github.com/matzehuels/taskdag/pkg/pipeline"
	"github.com/matzehuels/taskdag/pkg/render"
	"github.com/matzehuels/taskdag/pkg/task"
)

const maxPayloadBytes = 1 << 20

// Ids stay untyped until the controller validates them, so a string or a
// fraction is reported as MALFORMED_PAYLOAD instead of a decode error.
type nodePayload struct {
	ID any `json:"id"`
}

type edgePayload struct {
	Source any `json:"source"`
	Target any `json:"target"`
}

type commandResponse struct {
	Command  *command.Command `json:"command,omitempty"`
	Decision *guard.Decision  `json:"decision,omitempty"`
}

type healthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Nodes  int    `json:"nodes"`
	Edges  int    `json:"edges"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	snap, buildErr := s.snapshot, s.buildErr
	s.mu.RUnlock()

	resp := healthResponse{Status: "ok"}
	if snap != nil {
		resp.Nodes, resp.Edges = snap.Stats.NodeCount, snap.Stats.EdgeCount
	}
	status := http.StatusOK
	if buildErr != nil {
		resp.Status, resp.Error = "degraded", buildErr.Error()
		if snap == nil {
			status = http.StatusServiceUnavailable
		}
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.requireSnapshot(w, r)
	if !ok {
		return
	}
	w.Header().Set("ETag", strconv.Quote(snap.ModelHash))
	if match := r.Header.Get("If-None-Match"); match != "" && match == strconv.Quote(snap.ModelHash) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, snap.Model)
}

func (s *Server) handleArtifact(format render.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, ok := s.requireSnapshot(w, r)
		if !ok {
			return
		}

		var opts render.Options
		if v := r.URL.Query().Get("detailed"); v != "" {
			detailed, err := strconv.ParseBool(v)
			if err != nil {
				s.writeError(w, r, dagerrors.Wrap(dagerrors.ErrCodeInvalidInput, err, "detailed: %q is not a boolean", v))
				return
			}
			opts.Detailed = detailed
		}
		if id, focused, err := s.store.Focus(r.Context()); err != nil {
			s.logger.Warn("read focus", "err", err)
		} else if focused {
			opts.Focus = &id
		}

		out, cached, err := s.runner.Render(r.Context(), snap.Model, format, opts)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", format.ContentType())
		w.Header().Set("X-Cache", cacheStatus(cached))
		_, _ = w.Write(out)
	}
}

func (s *Server) handleFocus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok, err := s.store.Focus(ctx)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !ok {
		s.writeError(w, r, dagerrors.New(dagerrors.ErrCodeNotFound, "no task is focused"))
		return
	}
	records, err := s.store.Load(ctx)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	i := task.Index(records, id)
	if i < 0 {
		s.writeError(w, r, dagerrors.New(dagerrors.ErrCodeNotFound, "focused task %d no longer exists", id))
		return
	}
	writeJSON(w, http.StatusOK, records[i])
}

func (s *Server) handleSelectNode(w http.ResponseWriter, r *http.Request) {
	var p nodePayload
	if !s.decode(w, r, &p) {
		return
	}
	s.cmdMu.Lock()
	defer s.cmdMu.Unlock()

	g, ok := s.requireFullGraph(w, r)
	if !ok {
		return
	}
	cmd, err := s.controller.SelectNode(r.Context(), g, p.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, commandResponse{Command: &cmd})
}

func (s *Server) handleSelectEdge(w http.ResponseWriter, r *http.Request) {
	var p edgePayload
	if !s.decode(w, r, &p) {
		return
	}
	s.cmdMu.Lock()
	defer s.cmdMu.Unlock()

	g, ok := s.requireFullGraph(w, r)
	if !ok {
		return
	}
	cmd, err := s.controller.SelectEdge(r.Context(), g, p.Source, p.Target)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, commandResponse{Command: &cmd})
}

// handleProposeEdge answers 201 for an added dependency, 200 with the
// decision for a duplicate (nothing changes) and 409 for any other
// rejection.
func (s *Server) handleProposeEdge(w http.ResponseWriter, r *http.Request) {
	var p edgePayload
	if !s.decode(w, r, &p) {
		return
	}
	s.cmdMu.Lock()
	defer s.cmdMu.Unlock()

	g, ok := s.requireFullGraph(w, r)
	if !ok {
		return
	}
	cmd, d, err := s.controller.ProposeEdge(r.Context(), g, p.Source, p.Target)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, commandResponse{Command: &cmd, Decision: &d})
	case d.Silent():
		writeJSON(w, http.StatusOK, commandResponse{Decision: &d})
	default:
		s.writeError(w, r, err, withReason(d.Reason))
	}
}

// requireSnapshot returns the current snapshot or writes a 503 naming the
// build error.
func (s *Server) requireSnapshot(w http.ResponseWriter, r *http.Request) (*pipeline.Result, bool) {
	s.mu.RLock()
	snap, buildErr := s.snapshot, s.buildErr
	s.mu.RUnlock()
	if snap != nil {
		return snap, true
	}
	writeNoLayout(w, buildErr)
	return nil, false
}

// requireFullGraph returns the unfiltered graph interactions are checked
// against, or writes the same 503 as requireSnapshot.
func (s *Server) requireFullGraph(w http.ResponseWriter, r *http.Request) (*dag.Graph, bool) {
	s.mu.RLock()
	full, buildErr := s.full, s.buildErr
	s.mu.RUnlock()
	if full != nil {
		return full, true
	}
	writeNoLayout(w, buildErr)
	return nil, false
}

func writeNoLayout(w http.ResponseWriter, buildErr error) {
	err := dagerrors.New(dagerrors.ErrCodeInternal, "no layout available")
	if buildErr != nil {
		code := dagerrors.GetCode(buildErr)
		if code == "" {
			code = dagerrors.ErrCodeInternal
		}
		err = dagerrors.New(code, "no layout available: %s", dagerrors.UserMessage(buildErr))
	}
	writeErrorStatus(w, http.StatusServiceUnavailable, err)
}

// decode reads a JSON object payload. Numbers are kept as json.Number so ids
// are validated exactly.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		s.writeError(w, r, dagerrors.Wrap(dagerrors.ErrCodeMalformedPayload, err, "decode request body"))
		return false
	}
	return true
}

func cacheStatus(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}
