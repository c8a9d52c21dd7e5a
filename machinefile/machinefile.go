// Package machinefile loads declarative state-machine definitions from YAML
// for off-device simulation and the inspector TUI.
//
// A definition file mirrors what the compiler lowers MACHINE blocks into:
//
//	machines:
//	  - name: traffic
//	    states: [RED, GREEN, YELLOW]
//	    transitions:
//	      - {from: RED, event: TIMER, to: GREEN}
//	      - {from: GREEN, event: TIMER, to: YELLOW}
//	      - {from: YELLOW, event: TIMER, to: RED}
//
// The first declared state is the machine's initial state. Validation here
// plays the role of the compiler's semantic analysis: transition endpoints
// must be declared states, which the runtime engine deliberately does not
// check.
package machinefile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/minibasic/basic-runtime/errors"
	"github.com/minibasic/basic-runtime/machine"
)

// File is a parsed machine definition document.
type File struct {
	Machines []Machine `yaml:"machines"`
}

// Machine declares one state machine.
type Machine struct {
	Name        string       `yaml:"name"`
	States      []string     `yaml:"states"`
	Transitions []Transition `yaml:"transitions"`
}

// Transition declares one (from, event, to) edge.
type Transition struct {
	From  string `yaml:"from"`
	Event string `yaml:"event"`
	To    string `yaml:"to"`
}

// Parse unmarshals and validates a definition document.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.New(errors.StageMachineFile, errors.KindInvalidInput).
			Detail("malformed YAML").
			Cause(err).
			Build()
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// ParseFile reads and parses a definition file from disk.
func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read machine file: %w", err)
	}
	return Parse(data)
}

// Validate checks design-time constraints: non-empty names, no duplicate
// states, declared transition endpoints and non-empty event labels.
func (f *File) Validate() error {
	if len(f.Machines) == 0 {
		return errors.InvalidInput(errors.StageMachineFile, "no machines declared")
	}
	seen := make(map[string]bool, len(f.Machines))
	for _, m := range f.Machines {
		if m.Name == "" {
			return errors.InvalidInput(errors.StageMachineFile, "machine with empty name")
		}
		if seen[m.Name] {
			return errors.New(errors.StageMachineFile, errors.KindInvalidInput).
				Detail("duplicate machine %q", m.Name).
				Build()
		}
		seen[m.Name] = true
		if err := m.validate(); err != nil {
			return err
		}
	}
	return nil
}

func (m *Machine) validate() error {
	if len(m.States) == 0 {
		return errors.New(errors.StageMachineFile, errors.KindInvalidInput).
			Detail("machine %q declares no states", m.Name).
			Build()
	}
	states := make(map[string]bool, len(m.States))
	for _, s := range m.States {
		if s == "" {
			return errors.New(errors.StageMachineFile, errors.KindInvalidInput).
				Detail("machine %q declares an empty state name", m.Name).
				Build()
		}
		if states[s] {
			return errors.New(errors.StageMachineFile, errors.KindInvalidInput).
				Detail("machine %q declares state %q twice", m.Name, s).
				Build()
		}
		states[s] = true
	}
	for i, t := range m.Transitions {
		if t.Event == "" {
			return errors.New(errors.StageMachineFile, errors.KindInvalidInput).
				Detail("machine %q transition %d has an empty event", m.Name, i).
				Build()
		}
		if !states[t.From] {
			return errors.New(errors.StageMachineFile, errors.KindNotFound).
				Detail("machine %q transition %d: from-state %q not declared", m.Name, i, t.From).
				Build()
		}
		if !states[t.To] {
			return errors.New(errors.StageMachineFile, errors.KindNotFound).
				Detail("machine %q transition %d: to-state %q not declared", m.Name, i, t.To).
				Build()
		}
	}
	return nil
}

// Register replays the definitions through a registry in declaration order,
// the way generated code would at program start. Returns the handle for
// each machine.
func (f *File) Register(reg *machine.Registry) ([]machine.Handle, error) {
	handles := make([]machine.Handle, 0, len(f.Machines))
	for _, m := range f.Machines {
		h := reg.Create(m.Name)
		if h == machine.Invalid {
			return handles, errors.Capacity(errors.StageMachineFile, "machines", machine.MaxMachines)
		}
		for _, s := range m.States {
			if err := reg.AddState(h, s); err != nil {
				return handles, fmt.Errorf("machine %q: %w", m.Name, err)
			}
		}
		for _, t := range m.Transitions {
			if err := reg.AddTransition(h, t.From, t.Event, t.To); err != nil {
				return handles, fmt.Errorf("machine %q: %w", m.Name, err)
			}
		}
		handles = append(handles, h)
	}
	return handles, nil
}
