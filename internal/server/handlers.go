package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"recipeimport/internal/domain"
	"recipeimport/internal/infrastructure/translate"
	"recipeimport/internal/usecase"
)

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateSession(w, r)
	case http.MethodGet:
		session, err := s.workflow.ActiveSession(r.Context())
		if err != nil {
			s.writeFailure(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, session)
	default:
		s.writeError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Document string            `json:"document"`
		Source   string            `json:"source"`
		Images   map[string][]byte `json:"images"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		s.writeError(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	session, err := s.workflow.StartSession(r.Context(), usecase.StartInput{
		Document: request.Document,
		Source:   request.Source,
		Images:   request.Images,
	})
	if err != nil {
		s.writeFailure(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, map[string]any{
		"session": session,
		"stats":   session.Stats(),
	})
}

func (s *Server) handleSessionDetail(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/import/sessions/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" {
		s.writeError(w, "session id required", http.StatusBadRequest)
		return
	}

	switch {
	case sub == "" && r.Method == http.MethodGet:
		session, err := s.workflow.Session(r.Context(), id)
		if err != nil {
			s.writeFailure(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, session)
	case sub == "" && r.Method == http.MethodDelete:
		if err := s.workflow.AbandonSession(r.Context(), id); err != nil {
			s.writeFailure(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]string{"status": string(domain.SessionAbandoned)})
	case sub == "actions" && r.Method == http.MethodPost:
		s.handleAction(w, r, id)
	case sub == "import-remaining" && r.Method == http.MethodPost:
		s.handleImportRemaining(w, r, id)
	default:
		s.writeError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request, id string) {
	var action usecase.Action
	if err := json.NewDecoder(r.Body).Decode(&action); err != nil {
		s.writeError(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	result, err := s.workflow.Apply(r.Context(), id, action)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleImportRemaining(w http.ResponseWriter, r *http.Request, id string) {
	results, session, err := s.workflow.ImportRemaining(r.Context(), id)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
		"stats":   session.Stats(),
	})
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request struct {
		Recipe domain.ParsedRecipe `json:"recipe"`
		Mode   string              `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		s.writeError(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	result := s.engine.Translate(r.Context(), request.Recipe, translate.ParseMode(request.Mode))
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encode JSON response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeFailure maps the workflow error taxonomy onto HTTP statuses;
// anything unclassified becomes a generic internal failure.
func (s *Server) writeFailure(w http.ResponseWriter, err error) {
	switch usecase.ErrorKind(err) {
	case usecase.KindInput:
		s.writeError(w, err.Error(), http.StatusBadRequest)
	case usecase.KindNotFound:
		s.writeError(w, err.Error(), http.StatusNotFound)
	case usecase.KindUpstream:
		s.writeError(w, err.Error(), http.StatusBadGateway)
	default:
		s.logger.Error("request failed", "error", err)
		s.writeError(w, "internal error", http.StatusInternalServerError)
	}
}
