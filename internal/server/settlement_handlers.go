package server

import (
	"net/http"

	"github.com/bestsplit/bestsplit/internal/models"
)

type settlementRequest struct {
	FromUserID  string  `json:"fromUserId"`
	ToUserID    string  `json:"toUserId"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

func (s *Server) handleListSettlements(w http.ResponseWriter, r *http.Request) {
	group, ok := s.memberGroup(w, r)
	if !ok {
		return
	}
	settlements, err := s.settlements.ListSettlements(r.Context(), group.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if settlements == nil {
		settlements = []*models.Settlement{}
	}
	writeJSON(w, http.StatusOK, settlements)
}

func (s *Server) handleRecordSettlement(w http.ResponseWriter, r *http.Request) {
	group, ok := s.memberGroup(w, r)
	if !ok {
		return
	}

	var req settlementRequest
	if !decodeBody(w, r, &req) {
		return
	}
	settlement := &models.Settlement{
		GroupID:     group.ID,
		FromUserID:  req.FromUserID,
		ToUserID:    req.ToUserID,
		Amount:      req.Amount,
		Description: req.Description,
	}
	if err := s.settlements.RecordSettlement(r.Context(), settlement); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, settlement)
}
