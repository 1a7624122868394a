package signals

// State records how a collaborator call ended.
type State int

const (
	// StateSkipped means the collaborator was never asked, for example
	// because no VIN was supplied or the source is not configured.
	StateSkipped State = iota
	StateOK
	// StateAbsent means the collaborator answered with no data.
	StateAbsent
	// StateFailed means the call errored or timed out.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateSkipped:
		return "skipped"
	case StateOK:
		return "ok"
	case StateAbsent:
		return "absent"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the tagged result of one collaborator call. The zero value is
// a skipped call.
type Outcome[T any] struct {
	State  State
	Value  T
	Reason string
}

// OK wraps a successful value.
func OK[T any](v T) Outcome[T] {
	return Outcome[T]{State: StateOK, Value: v}
}

// Absent marks an answered call with nothing to report.
func Absent[T any](reason string) Outcome[T] {
	return Outcome[T]{State: StateAbsent, Reason: reason}
}

// Failed marks a call that errored.
func Failed[T any](err error) Outcome[T] {
	return Outcome[T]{State: StateFailed, Reason: err.Error()}
}

// Skipped marks a call that was never made.
func Skipped[T any](reason string) Outcome[T] {
	return Outcome[T]{State: StateSkipped, Reason: reason}
}

// Get returns the value and whether the call succeeded.
func (o Outcome[T]) Get() (T, bool) {
	return o.Value, o.State == StateOK
}

// OK reports whether the call succeeded.
func (o Outcome[T]) OK() bool { return o.State == StateOK }

// Asked reports whether the collaborator was called at all.
func (o Outcome[T]) Asked() bool { return o.State != StateSkipped }
