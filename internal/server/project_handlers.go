package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"seosuite/internal/store"
)

// ProjectListResponse lists projects and marks the active one.
type ProjectListResponse struct {
	Projects []store.Project `json:"projects"`
	ActiveID string          `json:"active_id,omitempty"`
	Total    int             `json:"total"`
}

// ProjectRequest creates or renames a project.
type ProjectRequest struct {
	Name string `json:"name"`
}

// KeywordListResponse lists a project's master keywords.
type KeywordListResponse struct {
	Keywords []store.MasterKeyword `json:"keywords"`
	Total    int                   `json:"total"`
}

// AddKeywordsRequest adds master keywords in order.
type AddKeywordsRequest struct {
	Keywords []store.KeywordInput `json:"keywords"`
}

// handleListProjects handles GET /api/projects
func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	projects, err := s.deps.Store.ListProjects(ctx)
	if err != nil {
		s.respondFailure(w, r, err)
		return
	}
	active, err := s.deps.Store.ActiveProject(ctx)
	if err != nil {
		s.respondFailure(w, r, err)
		return
	}

	resp := ProjectListResponse{Projects: projects, Total: len(projects)}
	if active != nil {
		resp.ActiveID = active.ID
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// handleCreateProject handles POST /api/projects
func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req ProjectRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	project, err := s.deps.Store.CreateProject(r.Context(), req.Name)
	if err != nil {
		s.respondFailure(w, r, err)
		return
	}
	s.log.Info("Project created", "id", project.ID, "name", project.Name)
	s.respondJSON(w, http.StatusCreated, project)
}

// handleGetProject handles GET /api/projects/{id}
func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	project, err := s.deps.Store.GetProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondFailure(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, project)
}

// handleRenameProject handles PATCH /api/projects/{id}
func (s *Server) handleRenameProject(w http.ResponseWriter, r *http.Request) {
	var req ProjectRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	project, err := s.deps.Store.RenameProject(r.Context(), chi.URLParam(r, "id"), req.Name)
	if err != nil {
		s.respondFailure(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, project)
}

// handleDeleteProject handles DELETE /api/projects/{id}
func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.deps.Store.DeleteProject(r.Context(), id); err != nil {
		s.respondFailure(w, r, err)
		return
	}
	s.log.Info("Project deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// handleActivateProject handles POST /api/projects/{id}/activate
func (s *Server) handleActivateProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if err := s.deps.Store.SetActiveProject(ctx, id); err != nil {
		s.respondFailure(w, r, err)
		return
	}
	project, err := s.deps.Store.GetProject(ctx, id)
	if err != nil {
		s.respondFailure(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, project)
}

// handleGetState handles GET /api/projects/{id}/state
func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	state, err := s.deps.Store.LoadState(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondFailure(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, state)
}

// handleSaveState handles PUT /api/projects/{id}/state
func (s *Server) handleSaveState(w http.ResponseWriter, r *http.Request) {
	var state store.ProjectState
	if !s.decodeJSON(w, r, &state) {
		return
	}

	if err := s.deps.Store.SaveState(r.Context(), chi.URLParam(r, "id"), state); err != nil {
		s.respondFailure(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, state)
}

// handleListKeywords handles GET /api/projects/{id}/keywords
func (s *Server) handleListKeywords(w http.ResponseWriter, r *http.Request) {
	keywords, err := s.deps.Store.ListKeywords(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondFailure(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, KeywordListResponse{Keywords: keywords, Total: len(keywords)})
}

// handleAddKeywords handles POST /api/projects/{id}/keywords
func (s *Server) handleAddKeywords(w http.ResponseWriter, r *http.Request) {
	var req AddKeywordsRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if len(req.Keywords) == 0 {
		s.respondError(w, http.StatusBadRequest, "keywords: at least one keyword is required")
		return
	}

	added, err := s.deps.Store.AddKeywords(r.Context(), chi.URLParam(r, "id"), req.Keywords)
	if err != nil {
		s.respondFailure(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, KeywordListResponse{Keywords: added, Total: len(added)})
}

// handleUpdateKeyword handles PATCH /api/projects/{id}/keywords/{keywordID}
func (s *Server) handleUpdateKeyword(w http.ResponseWriter, r *http.Request) {
	var update store.KeywordUpdate
	if !s.decodeJSON(w, r, &update) {
		return
	}

	keyword, err := s.deps.Store.UpdateKeyword(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "keywordID"), update)
	if err != nil {
		s.respondFailure(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, keyword)
}

// handleDeleteKeyword handles DELETE /api/projects/{id}/keywords/{keywordID}
func (s *Server) handleDeleteKeyword(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Store.DeleteKeyword(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "keywordID")); err != nil {
		s.respondFailure(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
