package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeBody decodes a JSON body into dst and runs its validate tags. The
// returned message is safe to send back to the caller.
func decodeBody(r *http.Request, dst interface{}) (string, bool) {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return "invalid request body", false
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return strings.ToLower(verrs[0].Field()) + " is " + describeTag(verrs[0].Tag()), false
		}
		return "invalid request body", false
	}
	return "", true
}

func describeTag(tag string) string {
	switch tag {
	case "required":
		return "required"
	case "max":
		return "too long"
	default:
		return "invalid"
	}
}

func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "nexttalk-dash",
	})
}

func Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "NextTalk Dash API"})
}
