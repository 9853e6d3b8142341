package health

import (
	"encoding/json"
	"net/http"
)

// Response is the payload for the health endpoint.
type Response struct {
	Status  string   `json:"status"`
	Backend string   `json:"backend"`
	Kinds   []string `json:"kinds"`
}

// Handler returns a plain HTTP handler for the health check endpoint. It reports the
// configured backend and the resource kinds it serves.
func Handler(backend string, kinds []string) http.HandlerFunc {
	body := Response{Status: "healthy", Backend: backend, Kinds: kinds}
	if body.Kinds == nil {
		body.Kinds = []string{}
	}
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	}
}
