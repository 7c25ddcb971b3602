package imagegen

// TransportError wraps a failure of the generator call itself. Its message
// is the underlying message, unchanged.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return e.Err.Error() }

func (e *TransportError) Unwrap() error { return e.Err }
