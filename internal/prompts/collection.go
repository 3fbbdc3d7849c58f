// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package prompts

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
)

// CollectionOption is one entry of the collection picker.
type CollectionOption struct {
	Name  string
	Label string
}

// SelectCollection asks the user to pick one of the configured collections.
func SelectCollection(title string, options []CollectionOption) (string, error) {
	if len(options) == 0 {
		return "", errors.New("no collections configured")
	}

	opts := make([]huh.Option[string], 0, len(options))
	for _, o := range options {
		label := o.Name
		if o.Label != "" && o.Label != o.Name {
			label = fmt.Sprintf("%s (%s)", o.Name, o.Label)
		}
		opts = append(opts, huh.NewOption(label, o.Name))
	}

	var selected string
	if err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(title).
				Options(opts...).
				Filtering(true).
				Value(&selected).
				Height(10),
		),
	).WithTheme(Theme()).Run(); err != nil {
		return "", err
	}
	return selected, nil
}

// Confirm asks a yes/no question.
func Confirm(title, affirmative, negative string) (bool, error) {
	var confirmed bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative(affirmative).
				Negative(negative).
				Value(&confirmed),
		),
	).WithTheme(Theme()).Run()
	return confirmed, err
}
