package txbuilder

// ValidationError marks input that was rejected before assembly. Nothing
// carrying this error ever reached the network.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "validation failed"
	}
	return "invalid " + e.Field + ": " + e.Reason
}
