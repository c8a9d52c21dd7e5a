// Package machine implements the fixed-capacity state-machine registry
// backing the language's MACHINE declarations.
//
// Machines, states and transitions are appended once during program
// initialization; only the current state changes afterward. Events with no
// matching transition from the current state are silently ignored; client
// code relies on events being no-ops outside relevant states. Transition
// matching is first-registered-wins.
//
// The registry is not synchronized; it must be driven from a single task.
package machine

import (
	"go.uber.org/zap"

	"github.com/minibasic/basic-runtime/errors"
)

// Capacity limits, matching the device runtime.
const (
	MaxMachines    = 8
	MaxStates      = 16
	MaxTransitions = 64
)

// Handle identifies a machine within a Registry. Handles are stable
// integer indexes.
type Handle int32

// Invalid is the sentinel returned when a machine cannot be created.
const Invalid Handle = -1

// UnknownState is returned by State for handles that do not address a
// machine.
const UnknownState = "UNKNOWN"

// Transition is a (from, event, to) edge.
type Transition struct {
	From  string
	Event string
	To    string
}

// Snapshot is a read-only view of one machine, used by the simulator and
// the inspector TUI.
type Snapshot struct {
	Name        string
	States      []string
	Transitions []Transition
	Current     string
}

type fsm struct {
	name        string
	states      []string
	transitions []Transition
	current     int // index into states; valid whenever states is non-empty
}

func (m *fsm) stateIndex(name string) int {
	for i, s := range m.states {
		if s == name {
			return i
		}
	}
	return -1
}

// Registry holds up to MaxMachines named machines addressed by handle.
type Registry struct {
	logger   *zap.Logger
	machines []*fsm
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the registry's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) { r.logger = logger }
}

// NewRegistry creates an empty machine registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) machine(h Handle) *fsm {
	if h < 0 || int(h) >= len(r.machines) {
		return nil
	}
	return r.machines[h]
}

// Create registers a new machine and returns its handle, or Invalid when
// the registry is full. A full registry is not fatal.
func (r *Registry) Create(name string) Handle {
	if len(r.machines) >= MaxMachines {
		r.logger.Warn("machine registry full",
			zap.String("name", name),
			zap.Int("max", MaxMachines))
		return Invalid
	}
	h := Handle(len(r.machines))
	r.machines = append(r.machines, &fsm{name: name})
	return h
}

// AddState appends a state. The first state added becomes the machine's
// current state. Past capacity the registration is rejected with an error
// rather than silently dropped.
func (r *Registry) AddState(h Handle, name string) error {
	m := r.machine(h)
	if m == nil {
		return errors.InvalidHandle(errors.StageMachine, "machine_add_state", int32(h))
	}
	if len(m.states) >= MaxStates {
		return errors.Capacity(errors.StageMachine, "states", MaxStates)
	}
	m.states = append(m.states, name)
	return nil
}

// AddTransition appends a (from, event, to) edge. from and to are not
// validated against declared states here; that check belongs to the
// compiler's semantic analysis. Past capacity the registration is rejected
// with an error.
func (r *Registry) AddTransition(h Handle, from, event, to string) error {
	m := r.machine(h)
	if m == nil {
		return errors.InvalidHandle(errors.StageMachine, "machine_add_transition", int32(h))
	}
	if len(m.transitions) >= MaxTransitions {
		return errors.Capacity(errors.StageMachine, "transitions", MaxTransitions)
	}
	m.transitions = append(m.transitions, Transition{From: from, Event: event, To: to})
	return nil
}

// Event delivers an event. The first transition in registration order whose
// from-state matches the current state and whose event label matches moves
// the machine to the target state, provided the target is declared. With no
// match the call is a no-op, as is an empty event name or an invalid handle.
func (r *Registry) Event(h Handle, event string) {
	m := r.machine(h)
	if m == nil || event == "" || len(m.states) == 0 {
		return
	}
	current := m.states[m.current]
	for _, t := range m.transitions {
		if t.From == current && t.Event == event {
			if idx := m.stateIndex(t.To); idx >= 0 {
				m.current = idx
				return
			}
		}
	}
}

// State returns the current state's name, UnknownState for an invalid
// handle and the empty string for a machine with no states yet.
func (r *Registry) State(h Handle) string {
	m := r.machine(h)
	if m == nil {
		return UnknownState
	}
	if len(m.states) == 0 {
		return ""
	}
	return m.states[m.current]
}

// Len returns the number of registered machines.
func (r *Registry) Len() int {
	return len(r.machines)
}

// Snapshot returns a read-only view of one machine, with ok false for an
// invalid handle.
func (r *Registry) Snapshot(h Handle) (Snapshot, bool) {
	m := r.machine(h)
	if m == nil {
		return Snapshot{}, false
	}
	s := Snapshot{
		Name:        m.name,
		States:      append([]string(nil), m.states...),
		Transitions: append([]Transition(nil), m.transitions...),
	}
	if len(m.states) > 0 {
		s.Current = m.states[m.current]
	}
	return s, true
}

// Snapshots returns views of all machines in handle order.
func (r *Registry) Snapshots() []Snapshot {
	out := make([]Snapshot, 0, len(r.machines))
	for h := range r.machines {
		s, _ := r.Snapshot(Handle(h))
		out = append(out, s)
	}
	return out
}
