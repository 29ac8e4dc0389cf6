package schema

// WorkflowDefinition is an ordered list of step invocations loaded from a
// package's workflow catalog. Definitions are immutable after parsing.
type WorkflowDefinition struct {
	Package string
	Name    string
	Steps   []StepDefinition
}

// StepDefinition is the declarative per-node data for one step invocation:
// which plugin runs, which context keys its named slots bind to, and any
// literal parameters fixed at authoring time.
//
// A step argument may arrive through a context-bound input or a literal
// parameter; steps resolve in that order, then fall back to a hard default.
type StepDefinition struct {
	ID      string
	Plugin  string
	Inputs  map[string]string // slot name -> context key to read
	Outputs map[string]string // slot name -> context key to write
	Params  map[string]Value  // slot name -> literal value
}

// InputKey returns the context key bound to an input slot, if declared.
func (s *StepDefinition) InputKey(slot string) (string, bool) {
	key, ok := s.Inputs[slot]
	return key, ok
}

// OutputKey returns the context key bound to an output slot, if declared.
func (s *StepDefinition) OutputKey(slot string) (string, bool) {
	key, ok := s.Outputs[slot]
	return key, ok
}

// CallStep builds the minimal StepDefinition a control-flow step uses to
// invoke another plugin through the registry: id and plugin only, no
// bindings of its own.
func CallStep(pluginID string) *StepDefinition {
	return &StepDefinition{ID: pluginID, Plugin: pluginID}
}
