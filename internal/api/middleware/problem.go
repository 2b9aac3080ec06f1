package middleware

import (
	"net/http"

	"github.com/remindful/remindful/internal/api/models"
)

// writeProblem writes a problem response from inside the middleware chain.
// The response package depends on this one, so its helpers are not usable
// here.
func writeProblem(w http.ResponseWriter, r *http.Request, problem *models.Problem) {
	problem.Instance = r.URL.Path
	problem.Write(w)
}
