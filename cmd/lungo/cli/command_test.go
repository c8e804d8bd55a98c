// Copyright 2026 The Lungo Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestExecuteDispatchesSubcommand(t *testing.T) {
	var ran bool
	root := &Command{
		Name: "lungo",
		Subcommands: []*Command{
			{
				Name: "machines",
				Run: func(_ context.Context, args []string, _ *slog.Logger) error {
					ran = true
					if len(args) != 0 {
						t.Errorf("args = %v, want empty", args)
					}
					return nil
				},
			},
		},
	}

	if err := root.Execute(context.Background(), []string{"machines"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !ran {
		t.Error("subcommand did not run")
	}
}

func TestExecuteUnknownSubcommandSuggests(t *testing.T) {
	root := &Command{
		Name: "lungo",
		Subcommands: []*Command{
			{Name: "machines", Summary: "list machines"},
			{Name: "login", Summary: "sign in"},
		},
	}

	err := root.Execute(context.Background(), []string{"machnes"})
	if err == nil {
		t.Fatal("expected error for unknown command")
	}
	if !strings.Contains(err.Error(), `did you mean "machines"`) {
		t.Errorf("error %q has no suggestion", err)
	}
}

func TestExecuteUnknownFlagSuggests(t *testing.T) {
	command := &Command{
		Name: "machines",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("machines", pflag.ContinueOnError)
			fs.Bool("json", false, "output as JSON")
			return fs
		},
		Run: func(context.Context, []string, *slog.Logger) error { return nil },
	}

	err := command.Execute(context.Background(), []string{"--jsno"})
	if err == nil {
		t.Fatal("expected error for unknown flag")
	}
	if !strings.Contains(err.Error(), "--json") {
		t.Errorf("error %q does not suggest --json", err)
	}
}

func TestExecuteFlagsReachRun(t *testing.T) {
	var serial string
	command := &Command{
		Name: "on",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("on", pflag.ContinueOnError)
			fs.StringVar(&serial, "serial", "", "machine serial number")
			return fs
		},
		Run: func(context.Context, []string, *slog.Logger) error { return nil },
	}

	if err := command.Execute(context.Background(), []string{"--serial", "SN123"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if serial != "SN123" {
		t.Errorf("serial = %q", serial)
	}
}

func TestExecuteSubcommandRequired(t *testing.T) {
	root := &Command{
		Name:        "lungo",
		Subcommands: []*Command{{Name: "machines"}},
	}
	if err := root.Execute(context.Background(), nil); err == nil {
		t.Error("expected error when no subcommand given")
	}
}

func TestPrintHelpListsSubcommands(t *testing.T) {
	root := &Command{
		Name: "lungo",
		Subcommands: []*Command{
			{Name: "machines", Summary: "List the machines on the account"},
			{Name: "login", Summary: "Sign in to the cloud"},
		},
		Examples: []Example{
			{Description: "List machines", Command: "lungo machines"},
		},
	}

	var output strings.Builder
	root.PrintHelp(&output)

	for _, want := range []string{"machines", "List the machines", "lungo machines", "Commands:"} {
		if !strings.Contains(output.String(), want) {
			t.Errorf("help output missing %q", want)
		}
	}
}

func TestFullName(t *testing.T) {
	root := &Command{Name: "lungo"}
	child := &Command{Name: "machines", parent: root}
	if got := child.fullName(); got != "lungo machines" {
		t.Errorf("fullName = %q", got)
	}
}
