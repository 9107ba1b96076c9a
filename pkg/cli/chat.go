package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/glovebox-dev/glovebox/pkg/agent/tool"
	"github.com/glovebox-dev/glovebox/pkg/agent/tool/glovebox"
	"github.com/glovebox-dev/glovebox/pkg/cli/config"
	"github.com/glovebox-dev/glovebox/pkg/domain/model"
	"github.com/glovebox-dev/glovebox/pkg/domain/types"
	"github.com/glovebox-dev/glovebox/pkg/repository/memory"
	"github.com/glovebox-dev/glovebox/pkg/service/vision"
	"github.com/glovebox-dev/glovebox/pkg/usecase"
)

var (
	userColor      = color.New(color.FgCyan, color.Bold)
	assistantColor = color.New(color.FgGreen)
	systemColor    = color.New(color.FgYellow)
	errorColor     = color.New(color.FgRed, color.Bold)
)

func cmdChat() *cli.Command {
	var profilePath string
	var narrate bool
	var noTools bool
	var engineCfg config.Engine

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to the TOML profile",
			Sources:     cli.EnvVars("GLOVEBOX_CONFIG"),
			Destination: &profilePath,
		},
		&cli.BoolFlag{
			Name:        "narrate-tools",
			Usage:       "Ask the model to narrate tool results in a second round-trip",
			Value:       true,
			Sources:     cli.EnvVars("GLOVEBOX_NARRATE_TOOLS"),
			Destination: &narrate,
		},
		&cli.BoolFlag{
			Name:        "no-tools",
			Usage:       "Disable tool calling entirely",
			Sources:     cli.EnvVars("GLOVEBOX_NO_TOOLS"),
			Destination: &noTools,
		},
	}
	flags = append(flags, engineCfg.Flags()...)

	return &cli.Command{
		Name:  "chat",
		Usage: "Start the interactive assistant",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			profile, err := config.LoadProfile(profilePath)
			if err != nil {
				return goerr.Wrap(err, "failed to load profile")
			}

			uc, err := buildChat(ctx, profile, &engineCfg, chatPolicy{
				narrate:    profile.Assistant.Narrate(),
				narrateSet: c.IsSet("narrate-tools"),
				narrateCLI: narrate,
				tools:      profile.Assistant.Tools() && !noTools,
			})
			if err != nil {
				return err
			}

			return runREPL(ctx, uc)
		},
	}
}

type chatPolicy struct {
	narrate    bool
	narrateSet bool
	narrateCLI bool
	tools      bool
}

// buildChat wires profile and flags into a ready-to-start orchestrator.
func buildChat(ctx context.Context, profile *config.Profile, engineCfg *config.Engine, policy chatPolicy) (*usecase.ChatUseCase, error) {
	reference, err := profile.ReferenceText()
	if err != nil {
		return nil, err
	}
	repo := memory.New(reference, memory.WithSeedLogs(profile.ToSeedLogs()))

	engine, err := engineCfg.Configure(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure engine")
	}

	registry := tool.NewRegistry()
	for _, t := range glovebox.New(repo) {
		if err := registry.Register(t); err != nil {
			return nil, goerr.Wrap(err, "failed to register tool")
		}
	}

	narrate := policy.narrate
	if policy.narrateSet {
		narrate = policy.narrateCLI
	}

	opts := []usecase.ChatOption{
		usecase.WithVehicle(profile.ToVehicleProfile()),
		usecase.WithNarrateToolResults(narrate),
		usecase.WithToolsEnabled(policy.tools),
		usecase.WithCompletionOptions(model.CompletionOptions{
			Temperature: profile.Assistant.Temperature,
			MaxTokens:   profile.Assistant.MaxTokens,
		}),
	}
	if profile.Persona != "" {
		opts = append(opts, usecase.WithPersona(profile.Persona))
	}

	return usecase.NewChat(repo, engine, registry, vision.NewScenarioObserver(), opts...), nil
}

func runREPL(ctx context.Context, uc *usecase.ChatUseCase) error {
	ctx = tool.WithUpdate(ctx, func(_ context.Context, msg string) {
		systemColor.Printf(">> %s\n", msg)
	})

	uc.Start(ctx, func(ctx context.Context) {
		_ = uc.Welcome(ctx)
	})

	systemColor.Println("LOADING MODEL...")
	for !uc.Ready() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}

	printed := 0
	printed = printNewMessages(ctx, uc, printed)
	systemColor.Println(`Type a question, or: log <text> | scan <path> | actions | accept <id> | reject <id> | quit`)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		userColor.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		verb, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)

		var err error
		switch verb {
		case "quit", "exit":
			return nil
		case "log":
			_, err = uc.AppendLogEntry(ctx, rest)
		case "scan":
			err = submitScan(ctx, uc, rest)
		case "actions":
			err = printActions(ctx, uc)
		case "accept":
			err = uc.AcceptAction(ctx, types.ActionID(rest))
		case "reject":
			err = uc.RejectAction(ctx, types.ActionID(rest))
		case "ask":
			err = uc.SubmitUserMessage(ctx, rest)
		default:
			err = uc.SubmitUserMessage(ctx, line)
		}

		if err != nil {
			printTurnError(err)
		}
		printed = printNewMessages(ctx, uc, printed)
	}
}

func submitScan(ctx context.Context, uc *usecase.ChatUseCase, path string) error {
	imagePath, err := vision.NewFileCapture(path).Capture(ctx)
	if err != nil {
		return err
	}
	return uc.SubmitImage(ctx, imagePath)
}

// printNewMessages renders conversation messages appended since the last
// call and returns the new high-water mark.
func printNewMessages(ctx context.Context, uc *usecase.ChatUseCase, printed int) int {
	msgs, err := uc.Conversation(ctx)
	if err != nil {
		printTurnError(err)
		return printed
	}

	for _, msg := range msgs[printed:] {
		switch msg.Role {
		case types.RoleUser:
			// The user already saw their own input.
		case types.RoleAssistant:
			assistantColor.Println(msg.Text)
		}
	}
	return len(msgs)
}

func printActions(ctx context.Context, uc *usecase.ChatUseCase) error {
	actions, err := uc.Actions(ctx)
	if err != nil {
		return err
	}
	if len(actions) == 0 {
		systemColor.Println("No suggested actions.")
		return nil
	}

	for _, action := range actions {
		fmt.Printf("%s [%s] %s: %s\n", action.ID, action.Status, action.Title, action.Description)
	}
	return nil
}

func printTurnError(err error) {
	switch {
	case errors.Is(err, types.ErrEngineNotReady):
		errorColor.Println("MODEL STILL LOADING. TRY AGAIN.")
	case errors.Is(err, types.ErrTurnInFlight):
		errorColor.Println("BUSY. WAIT FOR THE CURRENT ANSWER.")
	case errors.Is(err, types.ErrInvalidInput):
		// Nothing to do for blank input.
	case errors.Is(err, types.ErrNotFound):
		errorColor.Println("NO SUCH ACTION.")
	case errors.Is(err, types.ErrCaptureFailed):
		errorColor.Println("IMAGE NOT READABLE.")
	default:
		errorColor.Printf("ERROR: %v\n", err)
	}
}
