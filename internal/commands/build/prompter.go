package build

import "github.com/charmbracelet/huh"

// Prompter abstracts the install confirmation prompt for testability.
type Prompter interface {
	Confirm(title, description string) (bool, error)
}

// huhPrompter is the production Prompter backed by a huh form.
type huhPrompter struct{}

func (huhPrompter) Confirm(title, description string) (bool, error) {
	var confirmed bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(title).
			Description(description).
			Affirmative("Yes").
			Negative("No").
			Value(&confirmed),
	))
	if err := form.Run(); err != nil {
		return false, err
	}
	return confirmed, nil
}

// defaultPrompter can be overridden in tests to simulate user input.
var defaultPrompter Prompter = huhPrompter{}
