package toolbridge

// Outcome classifies how the Dispatcher handled one request of a batch.
type Outcome int

const (
	// OutcomeHandled: both decode stages succeeded and the effect ran without error.
	OutcomeHandled Outcome = iota
	// OutcomeUnknown: the name matches no declared capability. Err is ErrUnknownCapability;
	// the outcome does not count as a failure.
	OutcomeUnknown
	// OutcomeSkipped: an earlier request in the same batch already carried this name.
	OutcomeSkipped
	// OutcomeMalformed: the argument payload failed to decode; the effect did not run.
	OutcomeMalformed
	// OutcomeEffectFailed: the effect returned an error or panicked.
	OutcomeEffectFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeHandled:
		return "handled"
	case OutcomeUnknown:
		return "unknown"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeMalformed:
		return "malformed"
	case OutcomeEffectFailed:
		return "effect_failed"
	default:
		return "invalid"
	}
}

// Failed reports whether the outcome is a local failure (malformed payload or effect error).
func (o Outcome) Failed() bool {
	return o == OutcomeMalformed || o == OutcomeEffectFailed
}

// CallResult is the dispatch outcome of one request. Err is set only for failed outcomes.
type CallResult struct {
	ID      string
	Name    string
	Outcome Outcome
	Err     error
}

// Report lists one CallResult per request, in batch order.
type Report struct {
	Results []CallResult
}

// Result returns the first result with the given correlation id.
func (r Report) Result(id string) (CallResult, bool) {
	for _, res := range r.Results {
		if res.ID == id {
			return res, true
		}
	}
	return CallResult{}, false
}

// Count returns the number of results with the given outcome.
func (r Report) Count(o Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == o {
			n++
		}
	}
	return n
}
