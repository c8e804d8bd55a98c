// Copyright 2026 The Lungo Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete lungo CLI command tree.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lungo-project/lungo/cmd/lungo/cli"
	"github.com/lungo-project/lungo/lib/version"
)

// Root builds and returns the complete lungo CLI command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "lungo",
		Description: `Lungo: control La Marzocco espresso machines from the terminal.

Authenticate once with "lungo login"; every other command uses the
saved session transparently, refreshing tokens as they expire.`,
		Subcommands: []*cli.Command{
			LoginCommand(),
			LogoutCommand(),
			MachinesCommand(),
			StatusCommand(),
			OnCommand(),
			OffCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, args []string, _ *slog.Logger) error {
					fmt.Printf("lungo %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Authenticate (saves credentials locally)",
				Command:     "lungo login",
			},
			{
				Description: "See your machines and their status",
				Command:     "lungo machines",
			},
			{
				Description: "Turn the machine on and wait until it can brew",
				Command:     "lungo on --wait",
			},
			{
				Description: "Send the machine to standby",
				Command:     "lungo off",
			},
		},
	}
}
