package router

import (
	"net/http"
	"secure-banking-api/handler"
	"secure-banking-api/model"

	_ "secure-banking-api/docs"

	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Users    *handler.UserHandler
	Accounts *handler.AccountHandler
	Health   *handler.HealthHandler
	Verifier handler.TokenVerifier
}

// NewRouter builds the API. Middleware order, outermost first: CORS, request
// logging, then the auth gate, so preflights and rejected requests are still logged.
func NewRouter(h Handlers, allowedOrigins []string) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /health", handler.ErrorHandlingMiddleware(h.Health.HealthCheck))
	mux.Handle("GET /swagger/", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	mux.Handle("POST /api/auth/register", handler.ErrorHandlingMiddleware(h.Users.Register))
	mux.Handle("POST /api/auth/login", handler.ErrorHandlingMiddleware(h.Users.Login))

	mux.Handle("GET /api/account/balance", handler.ErrorHandlingMiddleware(h.Accounts.GetBalance))
	mux.Handle("POST /api/account/deposit", handler.ErrorHandlingMiddleware(h.Accounts.Deposit))
	mux.Handle("POST /api/account/withdraw", handler.ErrorHandlingMiddleware(h.Accounts.Withdraw))
	mux.Handle("POST /api/account/transfer", handler.ErrorHandlingMiddleware(h.Accounts.Transfer))
	mux.Handle("GET /api/account/transactions", handler.ErrorHandlingMiddleware(h.Accounts.ListTransactions))

	mux.Handle("GET /api/admin/users", handler.RequireRole(model.RoleAdmin, handler.ErrorHandlingMiddleware(h.Users.ListUsers)))
	mux.Handle("GET /api/admin/accounts", handler.RequireRole(model.RoleAdmin, handler.ErrorHandlingMiddleware(h.Accounts.ListAccounts)))

	var root http.Handler = mux
	root = handler.AuthMiddleware(h.Verifier)(root)
	root = handler.RequestLogger(root)
	root = handler.CORS(allowedOrigins, root)
	return root
}
