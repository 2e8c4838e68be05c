package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/bestsplit/bestsplit/internal/calculator"
	"github.com/bestsplit/bestsplit/internal/models"
	"github.com/bestsplit/bestsplit/internal/service"
)

type expenseRequest struct {
	Description  string            `json:"description"`
	Amount       float64           `json:"amount"`
	PaidBy       string            `json:"paidBy"`
	Participants []string          `json:"participants"`
	SplitMode    string            `json:"splitMode"`
	CustomShares map[string]string `json:"customShares"`
}

func (req *expenseRequest) toInput(groupID int64) (service.ExpenseInput, error) {
	input := service.ExpenseInput{
		GroupID:      groupID,
		Description:  req.Description,
		Amount:       req.Amount,
		PaidBy:       req.PaidBy,
		Participants: req.Participants,
		CustomShares: req.CustomShares,
	}
	switch strings.ToUpper(req.SplitMode) {
	case "", "EQUAL":
		input.Mode = calculator.SplitEqual
	case "CUSTOM":
		input.Mode = calculator.SplitCustom
	default:
		return input, fmt.Errorf("unknown split mode %q", req.SplitMode)
	}
	return input, nil
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	group, ok := s.memberGroup(w, r)
	if !ok {
		return
	}
	expenses, err := s.expenses.ListExpenses(r.Context(), group.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if expenses == nil {
		expenses = []*models.Expense{}
	}
	writeJSON(w, http.StatusOK, expenses)
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	group, ok := s.memberGroup(w, r)
	if !ok {
		return
	}

	var req expenseRequest
	if !decodeBody(w, r, &req) {
		return
	}
	input, err := req.toInput(group.ID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	expense, err := s.expenses.AddExpense(r.Context(), input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, expense)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	group, ok := s.memberGroup(w, r)
	if !ok {
		return
	}
	expenseID, err := pathID(r, "expenseId")
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid expense id"))
		return
	}

	var req expenseRequest
	if !decodeBody(w, r, &req) {
		return
	}
	input, err := req.toInput(group.ID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	expense, err := s.expenses.UpdateExpense(r.Context(), expenseID, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, expense)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	group, ok := s.memberGroup(w, r)
	if !ok {
		return
	}
	expenseID, err := pathID(r, "expenseId")
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid expense id"))
		return
	}
	if err := s.expenses.DeleteExpense(r.Context(), group.ID, expenseID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
