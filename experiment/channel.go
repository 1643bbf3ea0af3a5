package experiment

import "github.com/pkg/errors"

// Channel is a reference to a measurement column, declared by some owner (a
// view or an operation). The owner is only used to describe validation
// failures.
type Channel struct {
	Name  string
	Owner string
}

// NewChannel returns a channel reference named name, declared by owner.
func NewChannel(name, owner string) Channel {
	return Channel{Name: name, Owner: owner}
}

// Validate checks that the channel exists on exp. It does not modify exp.
func (c Channel) Validate(exp *Experiment) error {
	if c.Name == "" {
		return errors.Wrapf(ErrUnknownChannel, "%s: no channel set", c.Owner)
	}

	if !exp.HasChannel(c.Name) {
		return errors.Wrapf(ErrUnknownChannel, "%s: channel %q is not in the experiment (have %v)", c.Owner, c.Name, exp.channels)
	}

	return nil
}

func (c Channel) String() string {
	return c.Name
}
