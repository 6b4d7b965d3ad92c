// Package prune plans and applies the removal of unreachable files and
// unused methods. Planning only asks questions; nothing touches the file
// system until a plan is applied.
package prune

import (
	"errors"
	"strings"
)

// ErrCanceled is returned when the user cancels a removal pass.
var ErrCanceled = errors.New("removal canceled")

// Prompter asks the user a question and returns the raw answer.
type Prompter interface {
	Ask(question string) (string, error)
}

// PrompterFunc adapts a function to the Prompter interface.
type PrompterFunc func(question string) (string, error)

// Ask implements Prompter.
func (f PrompterFunc) Ask(question string) (string, error) {
	return f(question)
}

// Choice is a single-letter answer.
type Choice byte

const (
	ChoiceNo        Choice = 'n'
	ChoiceYes       Choice = 'y'
	ChoiceAll       Choice = 'a'
	ChoiceCancel    Choice = 'c'
	ChoiceRecursive Choice = 'r'
	ChoiceFile      Choice = 'f'
)

// ParseChoice reduces an answer to its first lower-cased character. An
// empty answer means no.
func ParseChoice(answer string) Choice {
	answer = strings.ToLower(strings.TrimSpace(answer))
	if answer == "" {
		return ChoiceNo
	}
	return Choice(answer[0])
}

// Policy says whether a decision is asked or taken as yes.
type Policy int

const (
	PolicyAsk Policy = iota
	PolicyForce
)
