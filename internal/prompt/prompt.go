package prompt

import (
	"fmt"
)

// Prompter asks the user for input. Implementations fail only when the
// underlying terminal cannot be read or written; any answer, including an
// empty one, is accepted.
type Prompter interface {
	// Ask asks a free-text question. An empty answer yields def; when def is
	// empty and allowEmpty is false the question is repeated.
	Ask(question, def string, allowEmpty bool) (string, error)

	// Confirm asks a yes/no question.
	Confirm(question string, def bool) (bool, error)

	// Select asks the user to pick one of items and returns its index.
	// def is the index chosen on an empty answer.
	Select(question string, items []string, def int) (int, error)
}

// Decision is the outcome of an explicit confirmation step.
type Decision int

const (
	// Proceed means the user accepted.
	Proceed Decision = iota
	// Decline means the user refused. It is a normal outcome, not an error.
	Decline
)

func (d Decision) String() string {
	switch d {
	case Proceed:
		return "proceed"
	case Decline:
		return "decline"
	default:
		return fmt.Sprintf("Decision(%d)", int(d))
	}
}

// Offer asks a yes/no question defaulting to yes and maps the answer to a Decision.
func Offer(p Prompter, question string) (Decision, error) {
	ok, err := p.Confirm(question, true)
	if err != nil {
		return Decline, err
	}
	if !ok {
		return Decline, nil
	}
	return Proceed, nil
}

// Defaults answers every question with its default. It backs --yes.
type Defaults struct{}

// Ask returns def.
func (Defaults) Ask(_, def string, _ bool) (string, error) { return def, nil }

// Confirm returns def.
func (Defaults) Confirm(_ string, def bool) (bool, error) { return def, nil }

// Select returns def, clamped into range.
func (Defaults) Select(_ string, items []string, def int) (int, error) {
	if len(items) == 0 {
		return 0, fmt.Errorf("nothing to select from")
	}
	if def < 0 || def >= len(items) {
		return 0, nil
	}
	return def, nil
}
