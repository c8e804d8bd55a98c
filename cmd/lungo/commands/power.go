// Copyright 2026 The Lungo Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/lungo-project/lungo/cmd/lungo/cli"
	"github.com/lungo-project/lungo/cmd/lungo/commands/readywait"
)

type onParams struct {
	Serial string `json:"-" flag:"serial,s" desc:"machine serial number (optional with a single machine)"`
	Wait   bool   `json:"-" flag:"wait,w"   desc:"wait until the machine is ready to brew"`
}

// OnCommand returns the "on" command switching a machine to brewing mode.
func OnCommand() *cli.Command {
	var params onParams

	return &cli.Command{
		Name:    "on",
		Summary: "Turn a machine on",
		Description: `Switch a machine into brewing mode.

The command returns as soon as the cloud accepts the mode change; the
machine then takes several minutes to heat. With --wait, the command
polls the machine's dashboard and shows a spinner until the coffee
boiler reports ready.`,
		Usage: "lungo on [flags]",
		Examples: []cli.Example{
			{
				Description: "Turn on the only machine on the account",
				Command:     "lungo on",
			},
			{
				Description: "Turn on a specific machine and wait until it is ready",
				Command:     "lungo on --serial MR123456 --wait",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("on", &params)
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

			if err := client.SetPower(ctx, machine.SerialNumber, true); err != nil {
				return mapAPIError(err, "turn on "+machine.DisplayName())
			}
			fmt.Fprintf(os.Stderr, "Turned on %s\n", machine.DisplayName())

			if !params.Wait {
				return nil
			}

			err = readywait.Wait(ctx, readywait.Config{
				Client: client,
				Serial: machine.SerialNumber,
				Name:   machine.DisplayName(),
			})
			if err != nil {
				return mapAPIError(err, "wait for "+machine.DisplayName())
			}
			return nil
		},
	}
}

type offParams struct {
	Serial string `json:"-" flag:"serial,s" desc:"machine serial number (optional with a single machine)"`
}

// OffCommand returns the "off" command switching a machine to standby.
func OffCommand() *cli.Command {
	var params offParams

	return &cli.Command{
		Name:    "off",
		Summary: "Turn a machine off",
		Description: `Switch a machine into standby mode.`,
		Usage:       "lungo off [flags]",
		Examples: []cli.Example{
			{
				Description: "Turn off the only machine on the account",
				Command:     "lungo off",
			},
			{
				Description: "Turn off a specific machine",
				Command:     "lungo off --serial MR123456",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("off", &params)
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

			if err := client.SetPower(ctx, machine.SerialNumber, false); err != nil {
				return mapAPIError(err, "turn off "+machine.DisplayName())
			}
			fmt.Fprintf(os.Stderr, "Turned off %s\n", machine.DisplayName())
			return nil
		},
	}
}
