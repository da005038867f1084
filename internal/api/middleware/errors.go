package middleware

import (
	"net/http"

	"github.com/Togather-Foundation/listings/internal/api/problem"
)

func writeTooMany(w http.ResponseWriter, r *http.Request, env string) {
	problem.Write(w, r, http.StatusTooManyRequests, "Too many requests, please try again later.", nil, env)
}

func writeTooLarge(w http.ResponseWriter, r *http.Request, env string) {
	problem.Write(w, r, http.StatusRequestEntityTooLarge, "Request body too large", nil, env)
}
