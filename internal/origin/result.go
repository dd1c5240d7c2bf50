package origin

import "github.com/sdko-org/content-gateway/internal/headers"

// Result is the tagged outcome of one origin fetch. A non-success origin
// status is an expected business outcome (Failure), not an error; only
// transport-level faults carry a cause.
type Result interface {
	result()
}

type Success struct {
	Status  int
	Body    []byte
	Headers *headers.Map
}

type Failure struct {
	Status int
}

type TransportError struct {
	Cause error
}

func (Success) result()        {}
func (Failure) result()        {}
func (TransportError) result() {}
