package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/emurenMRz/bounceview/bounce"
	"github.com/emurenMRz/bounceview/internal/mailbox"
)

// ParseResponse is the body returned by POST /api/parse.
type ParseResponse struct {
	ID         uuid.UUID       `json:"id"`
	Results    []bounce.Result `json:"results"`
	Suppressed int             `json:"suppressed,omitempty"`
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// mailboxError maps a mailbox error onto a status code.
func (s *Server) mailboxError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, mailbox.ErrNotFound):
		http.NotFound(w, r)
	case errors.Is(err, mailbox.ErrInvalidName):
		http.Error(w, "Invalid mailbox name", http.StatusBadRequest)
	default:
		s.logger.Error("mailbox access failed", "path", r.URL.Path, "error", err)
		http.Error(w, "Failed to read mailbox", http.StatusInternalServerError)
	}
}

func (s *Server) handleMailboxes(w http.ResponseWriter, r *http.Request) {
	names, err := s.mailboxes.Names()
	if err != nil {
		s.logger.Error("listing mailboxes failed", "error", err)
		http.Error(w, "Failed to read directory", http.StatusInternalServerError)
		return
	}
	writeJSON(w, names)
}

func (s *Server) handleEmails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	sums, err := s.mailboxes.Summaries(name, s.handler)
	if err != nil {
		s.mailboxError(w, r, err)
		return
	}
	writeJSON(w, sums)
}

// message loads the raw message named by the route variables.
func (s *Server) message(w http.ResponseWriter, r *http.Request) (string, bool) {
	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		http.Error(w, "Invalid email ID", http.StatusBadRequest)
		return "", false
	}
	raw, err := s.mailboxes.Message(vars["name"], id)
	if err != nil {
		s.mailboxError(w, r, err)
		return "", false
	}
	return raw, true
}

func (s *Server) handleEmail(w http.ResponseWriter, r *http.Request) {
	raw, ok := s.message(w, r)
	if !ok {
		return
	}
	results := s.metrics.Parse(s.handler, raw)
	if results == nil {
		results = []bounce.Result{}
	}
	writeJSON(w, results)
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	raw, ok := s.message(w, r)
	if !ok {
		return
	}
	writeJSON(w, s.handler.Analyze(raw))
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxSize))
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			http.Error(w, "Message too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "Failed to read message", http.StatusBadRequest)
		return
	}
	if len(raw) == 0 {
		http.Error(w, "Empty message", http.StatusBadRequest)
		return
	}

	id, err := uuid.NewV7()
	if err != nil {
		s.logger.Error("generating request id failed", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	resp := ParseResponse{ID: id, Results: s.metrics.Parse(s.handler, string(raw))}
	if resp.Results == nil {
		resp.Results = []bounce.Result{}
	}

	if s.store != nil {
		n, err := s.store.Record(r.Context(), resp.Results)
		if err != nil {
			s.logger.Error("recording suppressions failed", "id", id, "error", err)
			http.Error(w, "Failed to record suppressions", http.StatusInternalServerError)
			return
		}
		resp.Suppressed = n
	}

	s.logger.Info("message parsed", "id", id, "results", len(resp.Results), "suppressed", resp.Suppressed)
	writeJSON(w, resp)
}

func (s *Server) handleListSuppressions(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.List(r.Context())
	if err != nil {
		s.logger.Error("listing suppressions failed", "error", err)
		http.Error(w, "Failed to list suppressions", http.StatusInternalServerError)
		return
	}
	writeJSON(w, entries)
}

func (s *Server) handleGetSuppression(w http.ResponseWriter, r *http.Request) {
	e, ok, err := s.store.Get(r.Context(), mux.Vars(r)["recipient"])
	if err != nil {
		s.logger.Error("reading suppression failed", "error", err)
		http.Error(w, "Failed to read suppression", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, e)
}

func (s *Server) handleDeleteSuppression(w http.ResponseWriter, r *http.Request) {
	removed, err := s.store.Remove(r.Context(), mux.Vars(r)["recipient"])
	if err != nil {
		s.logger.Error("removing suppression failed", "error", err)
		http.Error(w, "Failed to remove suppression", http.StatusInternalServerError)
		return
	}
	if !removed {
		http.NotFound(w, r)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
