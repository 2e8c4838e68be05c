// Package server exposes the core services over an HTTP JSON API.
package server

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bestsplit/bestsplit/internal/activity"
	"github.com/bestsplit/bestsplit/internal/auth"
	"github.com/bestsplit/bestsplit/internal/service"
	"github.com/bestsplit/bestsplit/internal/syncer"
)

// Server holds the handlers' dependencies.
type Server struct {
	groups      *service.GroupService
	expenses    *service.ExpenseService
	settlements *service.SettlementService
	balances    *service.BalanceService
	feed        *activity.Aggregator
	sync        *syncer.Synchronizer
	authn       auth.Authenticator
	jwt         *auth.JWTManager
}

// New creates a Server.
func New(
	groups *service.GroupService,
	expenses *service.ExpenseService,
	settlements *service.SettlementService,
	balances *service.BalanceService,
	feed *activity.Aggregator,
	sync *syncer.Synchronizer,
	authn auth.Authenticator,
	jwt *auth.JWTManager,
) *Server {
	return &Server{
		groups:      groups,
		expenses:    expenses,
		settlements: settlements,
		balances:    balances,
		feed:        feed,
		sync:        sync,
		authn:       authn,
		jwt:         jwt,
	}
}

// Handler builds the full route table wrapped in logging and CORS
// middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.Handle("GET /metrics", promhttp.Handler())

	api := http.NewServeMux()
	api.HandleFunc("POST /api/groups", s.handleCreateGroup)
	api.HandleFunc("GET /api/groups", s.handleListGroups)
	api.HandleFunc("GET /api/groups/{id}", s.handleGetGroup)
	api.HandleFunc("PUT /api/groups/{id}", s.handleUpdateGroup)
	api.HandleFunc("DELETE /api/groups/{id}", s.handleDeleteGroup)
	api.HandleFunc("POST /api/groups/{id}/members", s.handleAddMember)
	api.HandleFunc("DELETE /api/groups/{id}/members/{userId}", s.handleRemoveMember)

	api.HandleFunc("GET /api/groups/{id}/expenses", s.handleListExpenses)
	api.HandleFunc("POST /api/groups/{id}/expenses", s.handleAddExpense)
	api.HandleFunc("PUT /api/groups/{id}/expenses/{expenseId}", s.handleUpdateExpense)
	api.HandleFunc("DELETE /api/groups/{id}/expenses/{expenseId}", s.handleDeleteExpense)

	api.HandleFunc("GET /api/groups/{id}/settlements", s.handleListSettlements)
	api.HandleFunc("POST /api/groups/{id}/settlements", s.handleRecordSettlement)

	api.HandleFunc("GET /api/groups/{id}/balances", s.handleBalances)
	api.HandleFunc("POST /api/groups/{id}/sync", s.handleSyncGroup)
	api.HandleFunc("GET /api/activity", s.handleActivity)

	mux.Handle("/api/", s.authMiddleware(api))

	return loggingMiddleware(corsMiddleware(mux))
}

// pathID parses the named numeric path segment.
func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}
