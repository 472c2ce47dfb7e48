package shared

// ChangeResult is the outcome of a single change handler in an update
// pipeline. An update proceeds only while every handler returns an
// accepting result; the first rejection aborts the whole update.
type ChangeResult struct {
	err *DomainError
}

// Accept returns an accepting change result
func Accept() ChangeResult {
	return ChangeResult{}
}

// Reject returns a rejecting change result carrying the reason
func Reject(err *DomainError) ChangeResult {
	return ChangeResult{err: err}
}

// Rejected reports whether the change was rejected
func (r ChangeResult) Rejected() bool {
	return r.err != nil
}

// Err returns the rejection reason, or nil for an accepting result
func (r ChangeResult) Err() error {
	if r.err == nil {
		return nil
	}
	return r.err
}

// Reason returns the rejection reason as a DomainError, or nil
func (r ChangeResult) Reason() *DomainError {
	return r.err
}
