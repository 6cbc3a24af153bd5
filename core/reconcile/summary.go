package reconcile

// State is the lifecycle position of one change during apply.
type State string

const (
	// StatePending is a change that was not attempted, as in a dry run.
	StatePending State = "pending"
	// StateApplying is a change whose backend call is in progress.
	StateApplying State = "applying"
	// StateApplied is a change the target accepted or already reflected.
	StateApplied State = "applied"
	// StateSkipped is a change left out on purpose, see Result.Reason.
	StateSkipped State = "skipped"
	// StateFailed is a change the target rejected.
	StateFailed State = "failed"
)

// Result is the outcome of one change.
type Result struct {
	Change Change `json:"change"`
	State  State  `json:"state"`
	// Reason explains a skip or an idempotent success.
	Reason string `json:"reason,omitempty"`
	// Error is the failure cause as text.
	Error string `json:"error,omitempty"`
	// Err is the failure cause for errors.Is classification.
	Err error `json:"-"`
}

// Tally counts results by terminal state.
type Tally struct {
	Pending int `json:"pending"`
	Applied int `json:"applied"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

func (t *Tally) add(s State) {
	switch s {
	case StateApplied:
		t.Applied++
	case StateSkipped:
		t.Skipped++
	case StateFailed:
		t.Failed++
	default:
		t.Pending++
	}
}

// Summary is the structured outcome of one apply pass.
type Summary struct {
	Current string                 `json:"current"`
	Desired string                 `json:"desired"`
	DryRun  bool                   `json:"dry_run"`
	Results []Result               `json:"results"`
	Totals  Tally                  `json:"totals"`
	ByType  map[Type]map[Op]*Tally `json:"by_type"`
}

func newSummary(diff *Diff, dryRun bool) *Summary {
	s := &Summary{
		Current: diff.Current,
		Desired: diff.Desired,
		DryRun:  dryRun,
		Results: make([]Result, len(diff.Changes)),
	}
	for i, ch := range diff.Changes {
		s.Results[i] = Result{Change: ch, State: StatePending}
	}
	return s
}

func (s *Summary) finalize() {
	s.Totals = Tally{}
	s.ByType = make(map[Type]map[Op]*Tally)
	for _, r := range s.Results {
		s.Totals.add(r.State)
		ops := s.ByType[r.Change.Type]
		if ops == nil {
			ops = make(map[Op]*Tally)
			s.ByType[r.Change.Type] = ops
		}
		if ops[r.Change.Op] == nil {
			ops[r.Change.Op] = &Tally{}
		}
		ops[r.Change.Op].add(r.State)
	}
}

// Failures returns the failed results in apply order.
func (s *Summary) Failures() []Result {
	var out []Result
	for _, r := range s.Results {
		if r.State == StateFailed {
			out = append(out, r)
		}
	}
	return out
}

// Changes returns the diff entries the summary was built from.
func (s *Summary) Changes() []Change {
	out := make([]Change, len(s.Results))
	for i, r := range s.Results {
		out[i] = r.Change
	}
	return out
}
