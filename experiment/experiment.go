// Package experiment holds the flow cytometry data model: a set of tubes
// (samples), each with its own events and a unique combination of condition
// values drawn from a shared, typed schema.
//
// An Experiment is not safe for concurrent writes. Reads (Table, Channels,
// Levels, and the views built on them) may run concurrently with one another
// but not with AddCondition, AddTube or RemoveTube.
package experiment

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Experiment aggregates tubes under a shared condition schema.
type Experiment struct {
	schema *Schema
	locked bool

	tubes  []*Tube
	keys   map[string]TubeID
	nextID TubeID

	// channels is the union of tube channels in first-seen order.
	channels []string
}

// New returns an empty Experiment with an empty, unlocked schema.
func New() *Experiment {
	return &Experiment{
		schema: NewSchema(),
		keys:   make(map[string]TubeID),
		nextID: 1,
	}
}

// AddCondition declares a condition. Conditions must all be declared before
// the first tube is added.
func (e *Experiment) AddCondition(name string, t ConditionType) error {
	if e.locked {
		return errors.Wrapf(ErrSchemaLocked, "cannot add condition %q after tubes were added", name)
	}

	return e.schema.Declare(name, t)
}

// Finalize locks the schema without adding a tube.
func (e *Experiment) Finalize() {
	e.locked = true
}

// Locked reports whether the schema can still change.
func (e *Experiment) Locked() bool {
	return e.locked
}

// Conditions returns a copy of the schema.
func (e *Experiment) Conditions() *Schema {
	return e.schema.clone()
}

// AddTube validates conditions against the schema and appends a new tube.
// Every declared condition must be present and no undeclared key may
// appear. The call is atomic: on error the Experiment is unchanged.
func (e *Experiment) AddTube(name string, data EventData, conditions map[string]interface{}) (TubeID, error) {
	if err := data.check(); err != nil {
		return 0, errors.Wrapf(err, "tube %q", name)
	}

	normalized := make(map[string]interface{}, len(conditions))
	for key, value := range conditions {
		v, err := e.schema.Validate(key, value)
		if err != nil {
			return 0, errors.Wrapf(err, "tube %q", name)
		}
		normalized[key] = v
	}

	for _, declared := range e.schema.names {
		if _, exists := normalized[declared]; !exists {
			return 0, errors.Wrapf(ErrUnknownCondition, "tube %q is missing a value for condition %q", name, declared)
		}
	}

	key := conditionKey(normalized)
	if other, exists := e.keys[key]; exists {
		return 0, errors.Wrapf(ErrDuplicateConditionValues, "tube %q has the same conditions as tube %q", name, e.mustTube(other).Name)
	}

	// Past this point nothing can fail.
	if len(e.tubes) > 0 && !sameChannelSet(e.channels, data.Channels) {
		log.WithFields(log.Fields{
			"tube":       name,
			"channels":   data.Channels,
			"experiment": e.channels,
		}).Warnln("Tube channels differ from the experiment; missing values will be null")
	}

	t := &Tube{
		ID:         e.nextID,
		Name:       name,
		data:       data,
		conditions: normalized,
	}
	e.nextID++

	e.tubes = append(e.tubes, t)
	e.keys[key] = t.ID
	e.locked = true
	e.channels = unionChannels(e.channels, data.Channels)

	return t.ID, nil
}

// RemoveTube drops a tube. The schema stays locked.
func (e *Experiment) RemoveTube(id TubeID) error {
	for i, t := range e.tubes {
		if t.ID != id {
			continue
		}

		delete(e.keys, conditionKey(t.conditions))
		e.tubes = append(e.tubes[:i], e.tubes[i+1:]...)

		e.channels = nil
		for _, remaining := range e.tubes {
			e.channels = unionChannels(e.channels, remaining.data.Channels)
		}
		return nil
	}

	return errors.Wrapf(ErrUnknownTube, "tube id %d", id)
}

// Tube returns the tube with the given handle.
func (e *Experiment) Tube(id TubeID) (*Tube, error) {
	for _, t := range e.tubes {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, errors.Wrapf(ErrUnknownTube, "tube id %d", id)
}

func (e *Experiment) mustTube(id TubeID) *Tube {
	t, err := e.Tube(id)
	if err != nil {
		panic(err)
	}
	return t
}

// Tubes returns the tubes in insertion order.
func (e *Experiment) Tubes() []*Tube {
	return append([]*Tube(nil), e.tubes...)
}

// Len is the number of tubes.
func (e *Experiment) Len() int {
	return len(e.tubes)
}

// Events is the total number of events across all tubes.
func (e *Experiment) Events() int {
	n := 0
	for _, t := range e.tubes {
		n += t.data.Len()
	}
	return n
}

// Channels returns the union of the tubes' channels, in the order they were
// first seen. Tubes that lack a channel contribute null values for it in
// the combined table.
func (e *Experiment) Channels() []string {
	return append([]string(nil), e.channels...)
}

// CommonChannels returns the channels that every tube acquired.
func (e *Experiment) CommonChannels() []string {
	out := make([]string, 0, len(e.channels))
	for _, ch := range e.channels {
		everywhere := true
		for _, t := range e.tubes {
			if _, exists := t.data.Column(ch); !exists {
				everywhere = false
				break
			}
		}
		if everywhere {
			out = append(out, ch)
		}
	}
	return out
}

// HasChannel reports whether any tube acquired channel.
func (e *Experiment) HasChannel(channel string) bool {
	for _, ch := range e.channels {
		if ch == channel {
			return true
		}
	}
	return false
}

// Levels returns the distinct values of a condition across tubes, in order of
// first appearance.
func (e *Experiment) Levels(condition string) ([]interface{}, error) {
	if !e.schema.Has(condition) {
		return nil, errors.Wrapf(ErrUnknownCondition, "%q", condition)
	}

	seen := make(map[interface{}]struct{})
	out := make([]interface{}, 0)
	for _, t := range e.tubes {
		v := t.conditions[condition]
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}

	return out, nil
}

func unionChannels(existing, added []string) []string {
	seen := make(map[string]struct{}, len(existing))
	for _, ch := range existing {
		seen[ch] = struct{}{}
	}
	for _, ch := range added {
		if _, exists := seen[ch]; exists {
			continue
		}
		seen[ch] = struct{}{}
		existing = append(existing, ch)
	}
	return existing
}

func sameChannelSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, ch := range a {
		set[ch] = struct{}{}
	}
	for _, ch := range b {
		if _, exists := set[ch]; !exists {
			return false
		}
	}
	return true
}
