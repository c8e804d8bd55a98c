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
)

type statusParams struct {
	cli.JSONOutput
	Serial string `json:"-" flag:"serial,s" desc:"machine serial number (optional with a single machine)"`
}

// statusDetail is the JSON form of "lungo status" output.
type statusDetail struct {
	Name         string `json:"name"`
	Model        string `json:"model,omitempty"`
	SerialNumber string `json:"serialNumber"`
	Location     string `json:"location,omitempty"`
	Connected    bool   `json:"connected"`
	Status       string `json:"status"`
	Ready        bool   `json:"ready"`
}

// StatusCommand returns the "status" command showing one machine's
// current state in detail.
func StatusCommand() *cli.Command {
	var params statusParams

	return &cli.Command{
		Name:    "status",
		Summary: "Show a machine's current status",
		Description: `Show the current status of a machine.

With a single machine on the account --serial is optional. The status
line follows the machine's heating state: Standby, On (Ready), On
(Ready in N mins), or Unknown when the machine reports nothing.`,
		Usage: "lungo status [flags]",
		Examples: []cli.Example{
			{
				Description: "Show status of the only machine on the account",
				Command:     "lungo status",
			},
			{
				Description: "Show status of a specific machine",
				Command:     "lungo status --serial MR123456",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("status", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}

			client, err := authenticatedClient(logger)
			if err != nil {
				return err
			}

			machine, err := resolveMachine(ctx, client, params.Serial)
			if err != nil {
				return err
			}

			detail := statusDetail{
				Name:         machine.DisplayName(),
				Model:        machine.Model,
				SerialNumber: machine.SerialNumber,
				Location:     machine.Location,
				Connected:    machine.Connected,
				Status:       "Unavailable",
			}
			if machine.Connected {
				status, err := client.Dashboard(ctx, machine.SerialNumber)
				if err != nil {
					return mapAPIError(err, "fetch dashboard")
				}
				detail.Status = status.StatusString(client.Now())
				detail.Ready = status.IsReady()
			}

			if done, err := params.EmitJSON(detail); done {
				return err
			}

			tw := tabwriter.NewWriter(os.Stdout, 2, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "Name:\t%s\n", detail.Name)
			if detail.Model != "" {
				fmt.Fprintf(tw, "Model:\t%s\n", detail.Model)
			}
			fmt.Fprintf(tw, "Serial:\t%s\n", detail.SerialNumber)
			if detail.Location != "" {
				fmt.Fprintf(tw, "Location:\t%s\n", detail.Location)
			}
			fmt.Fprintf(tw, "Connected:\t%t\n", detail.Connected)
			fmt.Fprintf(tw, "Status:\t%s\n", detail.Status)
			return tw.Flush()
		},
	}
}
