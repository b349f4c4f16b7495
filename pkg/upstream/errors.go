package upstream

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// HTTPError is a non-2xx answer from the commerce API.
type HTTPError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("upstream %s %s returned %d", e.Method, e.Path, e.Status)
}

func (e *HTTPError) StatusCode() int      { return e.Status }
func (e *HTTPError) Endpoint() string     { return e.Method + " " + e.Path }
func (e *HTTPError) ResponseBody() string { return e.Body }

// publicMessage prefers the API's own message for client errors, since those are actionable.
func (e *HTTPError) publicMessage() string {
	if e.Status >= http.StatusInternalServerError {
		return "storefront backend unavailable"
	}
	var payload struct {
		Message string `json:"message"`
		Error   any    `json:"error"`
	}
	if err := json.Unmarshal([]byte(e.Body), &payload); err == nil {
		if msg := strings.TrimSpace(payload.Message); msg != "" {
			return msg
		}
		if msg, ok := payload.Error.(string); ok && strings.TrimSpace(msg) != "" {
			return strings.TrimSpace(msg)
		}
	}
	if text := http.StatusText(e.Status); text != "" {
		return strings.ToLower(text)
	}
	return "upstream request failed"
}
