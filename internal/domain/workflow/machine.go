package workflow

import "fmt"

// Machine is a configured state machine holding a current state
type Machine struct {
	current     State
	transitions map[State]map[Trigger]State
}

// Builder collects transitions before building machines
type Builder struct {
	transitions map[State]map[Trigger]State
}

// Configuration adds transitions out of a single state
type Configuration struct {
	builder *Builder
	from    State
}

// NewBuilder creates an empty builder
func NewBuilder() *Builder {
	return &Builder{transitions: make(map[State]map[Trigger]State)}
}

// Configure returns the configuration for transitions out of state
func (b *Builder) Configure(state State) *Configuration {
	if !state.IsValid() {
		panic(fmt.Sprintf("invalid state: %s", state))
	}
	if _, ok := b.transitions[state]; !ok {
		b.transitions[state] = make(map[Trigger]State)
	}
	return &Configuration{builder: b, from: state}
}

// Permit allows trigger to move the machine to target
func (c *Configuration) Permit(trigger Trigger, target State) *Configuration {
	if !target.IsValid() {
		panic(fmt.Sprintf("invalid target state: %s", target))
	}
	c.builder.transitions[c.from][trigger] = target
	return c
}

// Build creates a machine in the initial state. Machines built from the same
// builder do not share state.
func (b *Builder) Build(initial State) *Machine {
	if !initial.IsValid() {
		panic(fmt.Sprintf("invalid initial state: %s", initial))
	}
	copied := make(map[State]map[Trigger]State, len(b.transitions))
	for from, byTrigger := range b.transitions {
		m := make(map[Trigger]State, len(byTrigger))
		for trigger, to := range byTrigger {
			m[trigger] = to
		}
		copied[from] = m
	}
	return &Machine{current: initial, transitions: copied}
}

// LoadLifecycle returns a builder configured for Idle -> Loading -> Loaded|Failed.
// Any state may start a new load or be reset to Idle.
func LoadLifecycle() *Builder {
	b := NewBuilder()

	b.Configure(StateIdle).
		Permit(TriggerLoad, StateLoading).
		Permit(TriggerReset, StateIdle)

	b.Configure(StateLoading).
		Permit(TriggerLoad, StateLoading).
		Permit(TriggerSucceed, StateLoaded).
		Permit(TriggerFail, StateFailed).
		Permit(TriggerReset, StateIdle)

	b.Configure(StateLoaded).
		Permit(TriggerLoad, StateLoading).
		Permit(TriggerReset, StateIdle)

	b.Configure(StateFailed).
		Permit(TriggerLoad, StateLoading).
		Permit(TriggerReset, StateIdle)

	return b
}

// NewLoadMachine builds a load lifecycle machine starting in Idle
func NewLoadMachine() *Machine {
	return LoadLifecycle().Build(StateIdle)
}

// State returns the current state
func (m *Machine) State() State {
	return m.current
}

// Fire applies trigger, leaving the state unchanged when it is not permitted
func (m *Machine) Fire(trigger Trigger) error {
	to, ok := m.transitions[m.current][trigger]
	if !ok {
		return fmt.Errorf("%w: cannot fire trigger %s from state %s", ErrInvalidTransition, trigger, m.current)
	}
	m.current = to
	return nil
}
