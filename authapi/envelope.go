// Package authapi defines the wire contract of the Auth Service REST API
// (base path /api/v1/auth): the response envelope, the request and response
// payloads for every endpoint, and the client-side error taxonomy.
package authapi

import "encoding/json"

// Envelope is the standard wrapper returned by every Auth Service endpoint.
// Success is the authoritative failure signal: a body with Success=false is a
// failure regardless of the HTTP status it arrived with.
type Envelope struct {
	Success   bool              `json:"success"`
	Data      json.RawMessage   `json:"data,omitempty"`
	Error     string            `json:"error,omitempty"`
	ErrorCode string            `json:"error_code,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
}

// Decode unmarshals the envelope's data payload into out. A nil or empty
// payload leaves out untouched.
func (e *Envelope) Decode(out any) error {
	if out == nil || len(e.Data) == 0 {
		return nil
	}
	return json.Unmarshal(e.Data, out)
}
