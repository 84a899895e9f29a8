package types

// EmitARequest is the body of POST /events/a.
type EmitARequest struct {
	FieldA1 int64 `json:"field_a1"`
	FieldA2 bool  `json:"field_a2"`
}

// EmitBRequest is the body of POST /events/b.
type EmitBRequest struct {
	FieldB1 float64 `json:"field_b1"`
	FieldB2 int32   `json:"field_b2"`
}

// EmitResponse reports a completed dispatch.
type EmitResponse struct {
	// Kind of the event that was dispatched.
	Kind Kind `json:"kind"`
	// Number of clients the driver holds.
	Clients int `json:"clients"`
	// Per-client failures when the driver isolates handler errors.
	Failures []ClientFailure `json:"failures,omitempty"`
}

// ClientFailure describes one handler failure in an isolated dispatch.
type ClientFailure struct {
	// Position of the client in registration order.
	Index  int    `json:"index"`
	Client string `json:"client"`
	Error  string `json:"error"`
}

// ClientsResponse lists the registered clients in dispatch order.
type ClientsResponse struct {
	Clients []string `json:"clients"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	Error string `json:"error"`
	// HTTP status code.
	Code int `json:"code"`
}
