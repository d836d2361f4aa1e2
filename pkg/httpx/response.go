package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
)

// ErrBodyTooLarge reports a request body over the ReadJSON limit.
var ErrBodyTooLarge = errors.New("httpx: request body too large")

// maxBodyBytes bounds request bodies; broker requests are tiny.
const maxBodyBytes = 1 << 20

// WriteJSON writes v as a JSON response with the given status code. It also
// marks the response uncacheable, credentials must never end up in a shared
// cache.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

// ReadJSON decodes the request body into v, rejecting unknown fields and
// oversized bodies.
func ReadJSON(r *http.Request, v any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return ErrBodyTooLarge
		}
		return err
	}
	return nil
}
