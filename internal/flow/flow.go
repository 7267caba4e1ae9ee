package flow

// StepKind distinguishes action steps from capture steps.
type StepKind int

const (
	// StepAction runs its handler and always falls through to the next step.
	StepAction StepKind = iota
	// StepCapture suspends the flow until the next inbound message, validates
	// it and either advances or re-prompts.
	StepCapture
)

// ActionFunc is the body of an action step.
type ActionFunc func(c *Ctx) error

// CaptureFunc is the body of a capture step, invoked with the validated value.
type CaptureFunc func(c *Ctx, value string) error

// ValidateFunc checks a raw inbound message. A non-nil error re-prompts with
// the error text and leaves the cursor untouched. The returned string is the
// normalized value handed to the capture body.
type ValidateFunc func(raw string) (string, error)

// Step is one unit of flow execution.
type Step struct {
	Kind     StepKind
	Key      string // capture steps only; unique within the flow
	Validate ValidateFunc
	Action   ActionFunc
	Capture  CaptureFunc
}

// Flow is an immutable, triggerable sequence of steps. Flows are registered
// once at startup and never mutated afterwards.
type Flow struct {
	Name     string
	Keywords []string // case-sensitive trigger words, substring-matched
	Welcome  bool     // lifecycle trigger: session with no prior history
	Steps    []Step
}

// New starts building a flow.
func New(name string) *Flow {
	return &Flow{Name: name}
}

// On sets keyword triggers for the flow.
func (f *Flow) On(keywords ...string) *Flow {
	f.Keywords = keywords
	return f
}

// OnWelcome marks the flow as the lifecycle-triggered entry for sessions with
// no prior history.
func (f *Flow) OnWelcome() *Flow {
	f.Welcome = true
	return f
}

// AddAction appends an action step.
func (f *Flow) AddAction(fn ActionFunc) *Flow {
	f.Steps = append(f.Steps, Step{Kind: StepAction, Action: fn})
	return f
}

// AddCapture appends a capture step identified by key.
func (f *Flow) AddCapture(key string, validate ValidateFunc, fn CaptureFunc) *Flow {
	f.Steps = append(f.Steps, Step{Kind: StepCapture, Key: key, Validate: validate, Capture: fn})
	return f
}

// captureIndex returns the index of the capture step with the given key, or
// -1 if the flow has none.
func (f *Flow) captureIndex(key string) int {
	for i, st := range f.Steps {
		if st.Kind == StepCapture && st.Key == key {
			return i
		}
	}
	return -1
}
