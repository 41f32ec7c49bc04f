/*
Package response writes the API envelope.

HTTP status mapping lives here only; the domain and application layers never
see status codes. Internal failures are answered with a fixed message and the
real error only goes to the log, together with the stack of the place it was
raised.

Envelope:

	success: { status: true, message: "...", data: {...}, request_id: "..." }
	failure: { status: false, message: "...", error: "ERROR_CODE", request_id: "..." }
*/
package response

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "request_id"

// Response is the envelope of every JSON answer.
type Response struct {
	Status    bool        `json:"status"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"` // error code, never the error detail
	RequestID string      `json:"request_id,omitempty"`
}
