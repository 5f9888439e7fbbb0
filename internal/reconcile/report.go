package reconcile

// Report aggregates the outcomes of one apply pass, in phase order.
type Report struct {
	Outcomes []Outcome
}

// FailureGroup collects the failure messages recorded for one container.
type FailureGroup struct {
	Label    string
	Messages []string
}

// Empty reports whether nothing was attempted.
func (r *Report) Empty() bool {
	return r == nil || len(r.Outcomes) == 0
}

// Succeeded counts fulfilled outcomes.
func (r *Report) Succeeded() int {
	if r == nil {
		return 0
	}
	count := 0
	for _, o := range r.Outcomes {
		if o.Status == OutcomeFulfilled {
			count++
		}
	}
	return count
}

// Failed counts rejected outcomes.
func (r *Report) Failed() int {
	if r == nil {
		return 0
	}
	return len(r.Outcomes) - r.Succeeded()
}

// Failures groups rejected outcomes by container label, in first-failure
// order. The success count is announced separately from this list.
func (r *Report) Failures() []FailureGroup {
	if r == nil {
		return nil
	}
	var groups []FailureGroup
	index := make(map[string]int)
	for _, o := range r.Outcomes {
		if o.Status != OutcomeRejected {
			continue
		}
		at, ok := index[o.Label]
		if !ok {
			at = len(groups)
			index[o.Label] = at
			groups = append(groups, FailureGroup{Label: o.Label})
		}
		groups[at].Messages = append(groups[at].Messages, o.Err)
	}
	return groups
}
