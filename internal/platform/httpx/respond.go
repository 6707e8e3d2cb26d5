package httpx

import (
	"encoding/json"
	"mime"
	"net/http"
)

// ErrorBody is the JSON error document.
type ErrorBody struct {
	StatusCode int    `json:"status_code"`
	ErrorCode  string `json:"error_code"`
	Message    string `json:"message"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Fail sends an ErrorBody.
func Fail(w http.ResponseWriter, status int, code, message string) {
	JSON(w, status, ErrorBody{
		StatusCode: status,
		ErrorCode:  code,
		Message:    message,
	})
}

// NoContent sends 204.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// IsJSON reports whether the request declares an application/json body.
// Media type parameters such as charset are accepted.
func IsJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

// RequireJSON rejects requests whose body is not declared as JSON with 415.
func RequireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsJSON(r) {
			RespondError(w, ErrUnsupportedMediaType)
			return
		}
		next.ServeHTTP(w, r)
	})
}
