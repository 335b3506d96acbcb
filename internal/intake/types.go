// Package intake serves the observation ingress: the request-serving path
// where an authorized scorer reports per-UID rewards between cycles. It only
// appends to the observation buffer; the score vector itself is owned by the
// cycle loop and never touched from here.
package intake

import "github.com/taoillium/bittensor-subnet-taoillium/internal/observation"

const (
	SignatureHeader = "x-signature"
	HotkeyHeader    = "x-hotkey"
	TimestampHeader = "x-timestamp"

	// maxTimestampSkew bounds how old a signed request may be, in seconds.
	maxTimestampSkew = 300
)

// ObservationRequest is the signed payload POSTed to /observations.
type ObservationRequest struct {
	Observations []observation.Observation `json:"observations"`
}

// StdResponse is the uniform envelope for intake responses.
type StdResponse[T any] struct {
	Body  T       `json:"body"`
	Error *string `json:"error"`
}

func createResponse[T any](body T, err error) StdResponse[T] {
	if err != nil {
		errMsg := err.Error()
		return StdResponse[T]{
			Body:  body,
			Error: &errMsg,
		}
	}
	return StdResponse[T]{
		Body:  body,
		Error: nil,
	}
}
