package confirm

import (
	"fmt"

	"github.com/manifoldco/promptui"
)

// Decider produces a conflict decision for one filename.
type Decider interface {
	Decide(filename string) (Decision, error)
}

// StaticDecider always answers the same way. Backs the skip and
// overwrite conflict policies, and tests.
type StaticDecider Decision

func (s StaticDecider) Decide(string) (Decision, error) {
	return Decision(s), nil
}

// PromptDecider asks on the terminal.
type PromptDecider struct{}

func (PromptDecider) Decide(filename string) (Decision, error) {
	prompt := promptui.Select{
		Label: fmt.Sprintf("'%s' already exists in the destination", filename),
		Items: []string{"Skip", "Overwrite"},
	}

	_, result, err := prompt.Run()
	if err != nil {
		return "", err
	}
	if result == "Overwrite" {
		return DecisionOverwrite, nil
	}
	return DecisionSkip, nil
}
