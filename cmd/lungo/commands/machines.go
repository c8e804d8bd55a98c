// Copyright 2026 The Lungo Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/lungo-project/lungo/cmd/lungo/cli"
	"github.com/lungo-project/lungo/lib/lamarzocco"
)

type machinesParams struct {
	cli.JSONOutput
}

// machineEntry is one row of "lungo machines" output.
type machineEntry struct {
	Name         string `json:"name"`
	Model        string `json:"model,omitempty"`
	SerialNumber string `json:"serialNumber"`
	Connected    bool   `json:"connected"`
	Status       string `json:"status"`
}

// MachinesCommand returns the "machines" command listing every machine
// on the account with its live status.
func MachinesCommand() *cli.Command {
	var params machinesParams

	return &cli.Command{
		Name:    "machines",
		Summary: "List machines on the account",
		Description: `List the machines registered to your account.

Each row shows the machine name (and model), serial number, and the
current status fetched from its dashboard. Disconnected machines show
"Unavailable" without a dashboard fetch.`,
		Usage: "lungo machines [flags]",
		Examples: []cli.Example{
			{
				Description: "List machines as a table",
				Command:     "lungo machines",
			},
			{
				Description: "List machines as JSON",
				Command:     "lungo machines --json",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("machines", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}

			client, err := authenticatedClient(logger)
			if err != nil {
				return err
			}

			machines, err := client.Machines(ctx)
			if err != nil {
				return mapAPIError(err, "list machines")
			}

			entries := make([]machineEntry, 0, len(machines))
			for _, machine := range machines {
				entries = append(entries, machineEntry{
					Name:         machine.DisplayName(),
					Model:        machine.Model,
					SerialNumber: machine.SerialNumber,
					Connected:    machine.Connected,
					Status:       machineStatusString(ctx, client, machine, logger),
				})
			}

			if done, err := params.EmitJSON(entries); done {
				return err
			}

			if len(entries) == 0 {
				fmt.Fprintln(os.Stderr, "No machines registered on this account")
				return nil
			}

			tw := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
			fmt.Fprintln(tw, "NAME\tSERIAL\tSTATUS")
			for _, entry := range entries {
				name := entry.Name
				if entry.Model != "" && entry.Model != entry.Name {
					name = fmt.Sprintf("%s (%s)", entry.Name, entry.Model)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", name, entry.SerialNumber, entry.Status)
			}
			return tw.Flush()
		},
	}
}

// machineStatusString fetches the machine's dashboard and renders its
// status. Disconnected machines are "Unavailable"; a failed dashboard
// fetch degrades to "Unknown" rather than failing the whole listing.
func machineStatusString(ctx context.Context, client *lamarzocco.Client, machine lamarzocco.Machine, logger *slog.Logger) string {
	if !machine.Connected {
		return "Unavailable"
	}
	status, err := client.Dashboard(ctx, machine.SerialNumber)
	if err != nil {
		logger.Warn("dashboard fetch failed", "serial", machine.SerialNumber, "error", err)
		return "Unknown"
	}
	return status.StatusString(client.Now())
}
