package synchronizer

// Action is the kind of decision taken for one element.
type Action string

const (
	// ActionAdded means a missing element was created by name.
	ActionAdded Action = "added"
	// ActionAddedItem means a missing array item was appended.
	ActionAddedItem Action = "added_item"
	// ActionRejected means the host refused to create the element.
	ActionRejected Action = "rejected"
	// ActionSkipped means no value could be written.
	ActionSkipped Action = "skipped"
	// ActionChanged means the value differed and was written.
	ActionChanged Action = "changed"
	// ActionUnchanged means the value already matched.
	ActionUnchanged Action = "unchanged"
	// ActionRebuilt means an array was removed and filled again.
	ActionRebuilt Action = "rebuilt"
)

// Decision describes what happened to one element.
type Decision struct {
	Path   string `json:"path"`
	Action Action `json:"action"`
	Before string `json:"before,omitempty"`
	After  string `json:"after,omitempty"`
	// Reason explains skips and rejections.
	Reason string `json:"reason,omitempty"`
	// DryRun marks decisions that were reported but not applied.
	DryRun bool `json:"dry_run,omitempty"`
}

// Summary counts decisions by action.
type Summary struct {
	Added     int `json:"added"`
	Changed   int `json:"changed"`
	Unchanged int `json:"unchanged"`
	Skipped   int `json:"skipped"`
	Rejected  int `json:"rejected"`
	Rebuilt   int `json:"rebuilt"`
}

// Add merges another summary into s.
func (s *Summary) Add(o Summary) {
	s.Added += o.Added
	s.Changed += o.Changed
	s.Unchanged += o.Unchanged
	s.Skipped += o.Skipped
	s.Rejected += o.Rejected
	s.Rebuilt += o.Rebuilt
}

// Writes returns the number of decisions that modified, or would modify, the record tree.
func (s Summary) Writes() int {
	return s.Added + s.Changed + s.Rebuilt
}

// Trace collects decisions in the order they were taken.
type Trace struct {
	Decisions []Decision `json:"decisions"`
}

// Record appends a decision. It is meant to be used as Options.Observer.
func (t *Trace) Record(d Decision) {
	t.Decisions = append(t.Decisions, d)
}

// Summary counts the collected decisions.
func (t *Trace) Summary() Summary {
	var s Summary
	for _, d := range t.Decisions {
		switch d.Action {
		case ActionAdded, ActionAddedItem:
			s.Added++
		case ActionChanged:
			s.Changed++
		case ActionUnchanged:
			s.Unchanged++
		case ActionSkipped:
			s.Skipped++
		case ActionRejected:
			s.Rejected++
		case ActionRebuilt:
			s.Rebuilt++
		}
	}
	return s
}
