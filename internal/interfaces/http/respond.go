package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
)

// messageResponse is the JSON error body used by the item routes.
type messageResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Message: message})
}

var errBodyTooLarge = errors.New("request body too large")

// decodeFields reads the named string fields from a JSON or form-encoded
// body. Missing fields decode as "", as do JSON 0 and false. Other non-string
// JSON scalars are kept in their textual form so numeric costs survive
// untouched.
func decodeFields(w http.ResponseWriter, r *http.Request, maxBytes int64, names ...string) (map[string]string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	fields := make(map[string]string, len(names))
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "application/json" {
		var body map[string]any
		dec := json.NewDecoder(r.Body)
		dec.UseNumber()
		if err := dec.Decode(&body); err != nil {
			return nil, classifyBodyError(err)
		}
		for _, name := range names {
			fields[name] = scalarString(body[name])
		}
		return fields, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, classifyBodyError(err)
	}
	for _, name := range names {
		fields[name] = r.PostForm.Get(name)
	}
	return fields, nil
}

func classifyBodyError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return errBodyTooLarge
	}
	return fmt.Errorf("invalid request body: %w", err)
}

func scalarString(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		// A numeric zero counts as a missing field, like false.
		if f, err := v.Float64(); err == nil && f == 0 {
			return ""
		}
		return v.String()
	case bool:
		if !v {
			return ""
		}
		return "true"
	default:
		// Objects and arrays are not valid field values.
		return ""
	}
}
