// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package prompts

import (
	"github.com/charmbracelet/huh"
)

// InitAnswers holds the values collected by the init wizard.
type InitAnswers struct {
	Kind       string
	TokenEnv   string
	SandboxDSN string
	Seed       string
	Addr       string
	Env        string

	// First collection to register; Name may be left empty.
	CollectionName  string
	CollectionIDEnv string
	CollectionLabel string
}

// RunInitForm runs the interactive form for the init command.
// It fills a with user input; fields already set are used as defaults.
func RunInitForm(a *InitAnswers) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Remote platform").
				Options(
					huh.NewOption("Notion workspace (REST API)", "notion"),
					huh.NewOption("Local sandbox (SQLite)", "sandbox"),
				).
				Value(&a.Kind),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Environment variable holding the API token").
				Placeholder("NOTION_API_KEY").
				Value(&a.TokenEnv).
				Validate(requiredValidator("token variable")),
		).WithHideFunc(func() bool { return a.Kind != "notion" }),
		huh.NewGroup(
			huh.NewInput().
				Title("Sandbox database file").
				Placeholder("records.db").
				Value(&a.SandboxDSN).
				Validate(requiredValidator("database file")),
			huh.NewInput().
				Title("Seed file (optional)").
				Placeholder("seed.yaml").
				Value(&a.Seed),
		).WithHideFunc(func() bool { return a.Kind != "sandbox" }),
		huh.NewGroup(
			huh.NewInput().
				Title("Listen address").
				Placeholder(":3000").
				Value(&a.Addr),
			huh.NewSelect[string]().
				Title("Environment").
				Options(
					huh.NewOption("Development", "development"),
					huh.NewOption("Production", "production"),
				).
				Value(&a.Env),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("First collection name (optional)").
				Placeholder("e.g., products").
				Value(&a.CollectionName).
				Validate(func(s string) error {
					if s == "" {
						return nil
					}
					return collectionNameValidator(map[string]struct{}{})(s)
				}),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Environment variable holding its database id").
				Placeholder("e.g., PRODUCT_DATA").
				Value(&a.CollectionIDEnv).
				Validate(requiredValidator("id variable")),
			huh.NewInput().
				Title("Label").
				Placeholder("e.g., Products").
				Value(&a.CollectionLabel),
		).WithHideFunc(func() bool { return a.CollectionName == "" }),
	).WithTheme(Theme()).Run()
}
