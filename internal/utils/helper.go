package utils

import (
	"encoding/json"
	"net/http"
	"strings"
)

func WriteJSONError(w http.ResponseWriter, kind, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": kind, "message": message})
}

// Truncate cuts s to at most n runes, for log fields.
func Truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n]) + "..."
}
