// Copyright 2026 The Lungo Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/lungo-project/lungo/cmd/lungo/cli"
	"github.com/lungo-project/lungo/lib/credentials"
	"github.com/lungo-project/lungo/lib/lamarzocco"
)

// authenticatedClient loads the stored credentials and builds a cloud
// client around them. Tokens rotated during a command are written back
// to the credential file, so the next invocation picks up where this
// one left off.
func authenticatedClient(logger *slog.Logger) (*lamarzocco.Client, error) {
	creds, err := credentials.Load()
	if err != nil {
		return nil, cli.Validation("%v", err)
	}

	client, err := lamarzocco.NewClient(lamarzocco.Config{
		Credentials: creds,
		Logger:      logger,
		OnTokensRefreshed: func(updated *credentials.Credentials) error {
			return credentials.Save(updated)
		},
	})
	if err != nil {
		return nil, cli.Internal("create client: %w", err)
	}
	return client, nil
}

// mapAPIError converts a cloud-client error into a categorized command
// error. Rejected sessions clear the stored tokens (keeping the
// installation key, which survives logins) so the user starts clean.
func mapAPIError(err error, action string) error {
	if errors.Is(err, lamarzocco.ErrReauthenticate) {
		if clearErr := credentials.Clear(); clearErr != nil {
			return cli.Internal("%s: %v (and clearing stale credentials failed: %v)",
				action, err, clearErr)
		}
		return cli.Validation("%s: session expired — stored credentials cleared, run \"lungo login\" again", action)
	}

	if lamarzocco.IsNotFound(err) {
		return cli.NotFound("%s: %w", action, err)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return cli.Transient("%s: %w", action, err)
	}
	var apiErr *lamarzocco.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode >= 500 {
		return cli.Transient("%s: %w", action, err)
	}

	return cli.Internal("%s: %w", action, err)
}

// resolveMachine picks the machine a power or status command targets.
// With an explicit serial the machine must exist on the account; with
// no serial the account must have exactly one machine.
func resolveMachine(ctx context.Context, client *lamarzocco.Client, serial string) (lamarzocco.Machine, error) {
	machines, err := client.Machines(ctx)
	if err != nil {
		return lamarzocco.Machine{}, mapAPIError(err, "list machines")
	}

	if serial != "" {
		for _, machine := range machines {
			if machine.SerialNumber == serial {
				return machine, nil
			}
		}
		return lamarzocco.Machine{}, cli.NotFound("no machine with serial %q on this account", serial)
	}

	switch len(machines) {
	case 0:
		return lamarzocco.Machine{}, cli.NotFound("no machines registered on this account")
	case 1:
		return machines[0], nil
	default:
		serials := make([]string, len(machines))
		for i, machine := range machines {
			serials[i] = fmt.Sprintf("%s (%s)", machine.SerialNumber, machine.DisplayName())
		}
		return lamarzocco.Machine{}, cli.Validation(
			"multiple machines on this account — pick one with --serial:\n  %s",
			strings.Join(serials, "\n  "))
	}
}
