package handlers

import (
	"encoding/json"
	"net/http"
)

// RootHandler serves the service banner on / and 404s everything else that
// falls through the mux.
type RootHandler struct{}

func (h RootHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"service": "balcao",
		"status":  "online",
	})
}
