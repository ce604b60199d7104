package verdict

// Kind is the closed set of safety classifications.
type Kind string

// Verdict kinds.
const (
	Allowed  Kind = "allowed"
	Rejected Kind = "rejected"
)

// RejectionMessage is the user-facing error set on the rejection path.
const RejectionMessage = "This type of query is not allowed. Please try again with a search for game-related topics."

// Verdict is the safety gate's decision for a single query.
// Only Allow and Reject construct one, so there is no unknown state to route.
type Verdict struct {
	allowed bool
	reason  string
}

// Allow returns a passing verdict.
func Allow() Verdict { return Verdict{allowed: true} }

// Reject returns a failing verdict with the model-supplied reason.
func Reject(reason string) Verdict { return Verdict{reason: reason} }

// Kind returns Allowed or Rejected.
func (v Verdict) Kind() Kind {
	if v.allowed {
		return Allowed
	}
	return Rejected
}

// IsAllowed reports whether the query may proceed.
func (v Verdict) IsAllowed() bool { return v.allowed }

// Reason returns the violation reason (empty for allowed verdicts).
func (v Verdict) Reason() string { return v.reason }
