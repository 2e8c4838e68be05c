package server

import (
	"errors"
	"net/http"

	"github.com/bestsplit/bestsplit/internal/models"
)

var errNotAMember = errors.New("you must be a member of this group")

type groupRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Members     []string `json:"members"`
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if !decodeBody(w, r, &req) {
		return
	}

	group, err := s.groups.CreateGroup(r.Context(), req.Name, req.Description, UserID(r.Context()), req.Members)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, group)
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.groups.ListGroupsForMember(r.Context(), UserID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if groups == nil {
		groups = []*models.Group{}
	}
	writeJSON(w, http.StatusOK, groups)
}

func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	group, ok := s.memberGroup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, group)
}

func (s *Server) handleUpdateGroup(w http.ResponseWriter, r *http.Request) {
	group, ok := s.memberGroup(w, r)
	if !ok {
		return
	}

	var req groupRequest
	if !decodeBody(w, r, &req) {
		return
	}
	group.Name = req.Name
	group.Description = req.Description
	group.Members = req.Members

	if err := s.groups.UpdateGroup(r.Context(), group); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

func (s *Server) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	group, ok := s.memberGroup(w, r)
	if !ok {
		return
	}
	if err := s.groups.DeleteGroup(r.Context(), group.ID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	group, ok := s.memberGroup(w, r)
	if !ok {
		return
	}

	var req struct {
		UserID string `json:"userId"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.groups.AddMember(r.Context(), group.ID, req.UserID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	group, ok := s.memberGroup(w, r)
	if !ok {
		return
	}
	if err := s.groups.RemoveMember(r.Context(), group.ID, r.PathValue("userId")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// memberGroup loads the {id} group and verifies the caller is a member.
func (s *Server) memberGroup(w http.ResponseWriter, r *http.Request) (*models.Group, bool) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid group id"))
		return nil, false
	}
	group, err := s.groups.GetGroup(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return nil, false
	}
	if !group.HasMember(UserID(r.Context())) {
		writeError(w, http.StatusForbidden, errNotAMember)
		return nil, false
	}
	return group, true
}
