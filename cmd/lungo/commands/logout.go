// Copyright 2026 The Lungo Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/lungo-project/lungo/cmd/lungo/cli"
	"github.com/lungo-project/lungo/lib/credentials"
)

// LogoutCommand returns the "logout" command. Logout clears the stored
// tokens but keeps the installation key: the cloud ties the key to the
// installation, not to the session, and a kept key spares the next
// login a re-registration round trip.
func LogoutCommand() *cli.Command {
	return &cli.Command{
		Name:    "logout",
		Summary: "Clear stored credentials",
		Description: `Remove the saved session tokens from the credential file.

The installation key registered on first login is preserved, so a
subsequent "lungo login" reuses it instead of registering a new one.`,
		Usage: "lungo logout",
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			if err := credentials.Clear(); err != nil {
				return cli.Internal("clear credentials: %w", err)
			}
			fmt.Fprintln(os.Stderr, "Logged out")
			return nil
		},
	}
}
