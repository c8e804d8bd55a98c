// Copyright 2026 The Lungo Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/lungo-project/lungo/cmd/lungo/cli"
	"github.com/lungo-project/lungo/lib/credentials"
	"github.com/lungo-project/lungo/lib/installkey"
	"github.com/lungo-project/lungo/lib/lamarzocco"
	"github.com/lungo-project/lungo/lib/secret"
)

// loginParams holds the parameters for the login command.
type loginParams struct {
	Username     string `json:"-" flag:"username,u"   desc:"account email (default: prompt)"`
	PasswordFile string `json:"-" flag:"password-file" desc:"path to file containing password, or - to read from stdin (default: prompt)"`
}

// LoginCommand returns the "login" command for authenticating against
// the La Marzocco cloud and saving the session locally.
func LoginCommand() *cli.Command {
	var params loginParams

	return &cli.Command{
		Name:    "login",
		Summary: "Authenticate and save credentials",
		Description: `Log in to the La Marzocco cloud and save the session locally.

After login, commands like "lungo machines" and "lungo on" use the
saved session transparently. Tokens are refreshed automatically and
written back to the credential file as they rotate.

The credential file is stored at ~/.config/lungo/credentials.yaml (or
$LUNGO_CREDENTIALS_FILE if set, or $XDG_CONFIG_HOME/lungo/credentials.yaml).
The file is written with mode 0600 since it contains access tokens.

On first login an installation key (a P-256 keypair plus a derived
secret) is generated and registered with the cloud. The key is kept in
the credential file and reused across logins; without it the cloud
rejects signed requests.`,
		Usage: "lungo login [flags]",
		Examples: []cli.Example{
			{
				Description: "Log in interactively (prompts for email and password)",
				Command:     "lungo login",
			},
			{
				Description: "Log in with password from a file",
				Command:     "lungo login --username you@example.com --password-file /path/to/password",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("login", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}

			username := params.Username
			if username == "" {
				var err error
				username, err = promptUsername()
				if err != nil {
					return cli.Validation("read username: %v", err)
				}
			}

			passwordBuffer, err := readLoginPassword(params.PasswordFile)
			if err != nil {
				return err
			}
			defer passwordBuffer.Close()

			ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
			defer cancel()

			client, err := lamarzocco.NewClient(lamarzocco.Config{Logger: logger})
			if err != nil {
				return cli.Internal("create client: %w", err)
			}

			key, err := ensureInstallationKey(ctx, client, logger)
			if err != nil {
				return err
			}

			creds, err := client.Login(ctx, username, passwordBuffer.String(), key)
			if err != nil {
				if lamarzocco.IsUnauthorized(err) {
					return cli.Validation("%v", err)
				}
				return mapAPIError(err, "login")
			}

			if err := credentials.Save(creds); err != nil {
				return cli.Internal("save credentials: %w", err)
			}

			fmt.Fprintf(os.Stderr, "Logged in as %s\n", creds.Username)
			// Save succeeded, so the path resolves.
			if path, err := credentials.FilePath(); err == nil {
				fmt.Fprintf(os.Stderr, "Credentials saved to %s\n", path)
			}
			return nil
		},
	}
}

// ensureInstallationKey loads the installation key from the credential
// file, or generates and registers a fresh one on first login. The key
// is persisted before login so a failed password attempt does not force
// a re-registration.
func ensureInstallationKey(ctx context.Context, client *lamarzocco.Client, logger *slog.Logger) (*installkey.InstallationKey, error) {
	key, err := credentials.LoadInstallationKey()
	if err != nil {
		return nil, cli.Internal("load installation key: %w", err)
	}
	if key != nil {
		return key, nil
	}

	key, err = installkey.Generate(installkey.NewInstallationID())
	if err != nil {
		return nil, cli.Internal("generate installation key: %w", err)
	}
	logger.Debug("registering new installation key", "installation_id", key.InstallationID)

	if err := client.Register(ctx, key); err != nil {
		return nil, mapAPIError(err, "register installation key")
	}
	if err := credentials.SaveInstallationKey(key); err != nil {
		return nil, cli.Internal("save installation key: %w", err)
	}
	return key, nil
}

// promptUsername reads the account email from the terminal. Unlike the
// password this echoes normally, so a plain line read is enough.
func promptUsername() (string, error) {
	fmt.Fprint(os.Stderr, "Email: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	username := strings.TrimSpace(line)
	if username == "" {
		return "", fmt.Errorf("username is empty")
	}
	return username, nil
}

// readLoginPassword reads the account password. An empty path prompts
// interactively with echo disabled; "-" reads the first line of stdin;
// anything else is a file path.
func readLoginPassword(passwordFile string) (*secret.Buffer, error) {
	if passwordFile == "" {
		buffer, err := secret.Prompt("Password")
		if err != nil {
			return nil, cli.Validation("%v (use --password-file when not on a terminal)", err)
		}
		return buffer, nil
	}

	buffer, err := secret.ReadFromPath(passwordFile)
	if err != nil {
		return nil, cli.Validation("read password: %v", err)
	}
	return buffer, nil
}
