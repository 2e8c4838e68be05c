package server

import (
	"net/http"
)

type balanceResponse struct {
	GroupID    int64                        `json:"groupId"`
	Members    []string                     `json:"members"`
	Matrix     map[string]map[string]string `json:"matrix"`
	ComputedAt int64                        `json:"computedAt"`
}

func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	group, ok := s.memberGroup(w, r)
	if !ok {
		return
	}

	result, err := s.balances.Refresh(r.Context(), group.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	matrix := make(map[string]map[string]string, len(result.Matrix))
	for from, row := range result.Matrix {
		out := make(map[string]string, len(row))
		for to, amount := range row {
			out[to] = amount.StringFixed(2)
		}
		matrix[from] = out
	}
	writeJSON(w, http.StatusOK, balanceResponse{
		GroupID:    result.GroupID,
		Members:    result.Members,
		Matrix:     matrix,
		ComputedAt: result.ComputedAt.UnixMilli(),
	})
}

func (s *Server) handleSyncGroup(w http.ResponseWriter, r *http.Request) {
	group, ok := s.memberGroup(w, r)
	if !ok {
		return
	}
	if err := s.sync.SyncGroup(r.Context(), group.ID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	entries, err := s.feed.BuildFeed(r.Context(), UserID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
