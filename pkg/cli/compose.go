package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/glovebox-dev/glovebox/pkg/cli/config"
	"github.com/glovebox-dev/glovebox/pkg/repository/memory"
	"github.com/glovebox-dev/glovebox/pkg/usecase"
)

// cmdCompose prints the exact prompt a question would produce, without
// calling the engine. Useful for debugging the context assembly.
func cmdCompose() *cli.Command {
	var profilePath string
	var persona string

	return &cli.Command{
		Name:      "compose",
		Usage:     "Print the composed prompt for a question without running the model",
		ArgsUsage: "<question>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to the TOML profile",
				Sources:     cli.EnvVars("GLOVEBOX_CONFIG"),
				Destination: &profilePath,
			},
			&cli.StringFlag{
				Name:        "persona",
				Usage:       "Override the persona line",
				Destination: &persona,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() == 0 {
				return goerr.New("question argument is required")
			}
			question := c.Args().First()

			profile, err := config.LoadProfile(profilePath)
			if err != nil {
				return goerr.Wrap(err, "failed to load profile")
			}

			reference, err := profile.ReferenceText()
			if err != nil {
				return err
			}
			repo := memory.New(reference, memory.WithSeedLogs(profile.ToSeedLogs()))

			snapshot, err := repo.Knowledge().Snapshot(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to snapshot knowledge store")
			}

			if persona == "" {
				persona = profile.Persona
			}
			if persona == "" {
				persona = usecase.DefaultPersona(profile.ToVehicleProfile())
			}

			fmt.Println(usecase.ComposePrompt(snapshot, question, persona))
			return nil
		},
	}
}
