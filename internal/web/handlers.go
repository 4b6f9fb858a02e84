// Copyright (c) 2026 Gitident Team
// Gitident - Git identity manager
// This source code is licensed under the MIT license found in the LICENSE file.

package web

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/toeirei/gitident/internal/core"
	"github.com/toeirei/gitident/internal/model"
)

type listResponse[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

func page[T any](r *http.Request, items []T) listResponse[T] {
	offset, limit := paging(r)
	return listResponse[T]{Items: core.Page(items, offset, limit), Total: len(items), Offset: offset, Limit: limit}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) prerequisites(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.CheckPrerequisites(r.Context()))
}

// Identities

func (s *Server) listIdentities(w http.ResponseWriter, r *http.Request) {
	ids, err := s.svc.ListIdentities()
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page(r, ids))
}

func (s *Server) createIdentity(w http.ResponseWriter, r *http.Request) {
	var req core.CreateIdentityRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	id, err := s.svc.CreateIdentity(req)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, id)
}

func (s *Server) getIdentity(w http.ResponseWriter, r *http.Request) {
	id, err := s.svc.GetIdentity(chi.URLParam(r, "name"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, id)
}

func (s *Server) updateIdentity(w http.ResponseWriter, r *http.Request) {
	var req core.UpdateIdentityRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	id, err := s.svc.UpdateIdentity(chi.URLParam(r, "name"), req)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, id)
}

func (s *Server) syncIdentities(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.SyncIdentities()
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Projects

func projectID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid project ID")
		return 0, false
	}
	return id, true
}

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	ps, err := s.svc.ListProjects()
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page(r, ps))
}

func (s *Server) addProject(w http.ResponseWriter, r *http.Request) {
	var req core.AddProjectRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	p, err := s.svc.AddProject(r.Context(), req)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(w, r)
	if !ok {
		return
	}
	p, err := s.svc.GetProject(id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) updateProject(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(w, r)
	if !ok {
		return
	}
	var req core.UpdateProjectRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	p, err := s.svc.UpdateProject(id, req)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) deleteProject(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(w, r)
	if !ok {
		return
	}
	if err := s.svc.RemoveProject(id); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type configureRequest struct {
	IdentityName string `json:"identity_name"`
}

type configureResponse struct {
	Project *model.Project    `json:"project,omitempty"`
	State   model.ConfigState `json:"state"`
	Detail  string            `json:"detail,omitempty"`
}

func (s *Server) configureProject(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(w, r)
	if !ok {
		return
	}
	var req configureRequest
	if r.ContentLength != 0 {
		if err := decode(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}
	p, err := s.svc.ConfigureProject(r.Context(), id, req.IdentityName)
	if err != nil {
		if p == nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, statusFor(err), configureResponse{Project: p, State: p.State, Detail: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, configureResponse{Project: p, State: p.State})
}

func (s *Server) validateProject(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(w, r)
	if !ok {
		return
	}
	p, err := s.svc.ValidateProject(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"valid": true, "project": p})
}
