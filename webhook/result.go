package webhook

/* Status represents the terminal outcome of processing one delivery
 * Follows the lifecycle: Received -> Verified -> Decoded -> Succeeded/Ignored/Failed
 */
type Status int

const (
	Succeeded Status = iota + 1
	Ignored
	Failed
)

// String returns the string representation of the status
func (s Status) String() string {
	switch s {
	case Succeeded:
		return "succeeded"
	case Ignored:
		return "ignored"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the outcome of processing one delivery.
// Exactly one of Summary (Succeeded/Ignored) or Err (Failed) is meaningful.
type Result struct {
	Status  Status
	Summary string
	Err     error
}

// Succeed builds a Succeeded result with a human-readable summary
func Succeed(summary string) Result {
	return Result{Status: Succeeded, Summary: summary}
}

// Ignore builds an Ignored result with the reason it was skipped
func Ignore(reason string) Result {
	return Result{Status: Ignored, Summary: reason}
}

// Fail builds a Failed result carrying the terminal error
func Fail(err error) Result {
	return Result{Status: Failed, Err: err}
}
