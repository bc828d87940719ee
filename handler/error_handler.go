package handler

import (
	"net/http"
	"secure-banking-api/common"
)

// ErrorHandlingMiddleware adapts an AppError-returning handler to http.HandlerFunc.
func ErrorHandlingMiddleware(next func(http.ResponseWriter, *http.Request) *common.AppError) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := next(w, r); err != nil {
			err.Send(w)
		}
	}
}
