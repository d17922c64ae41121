// Command desktop is the windowed Ruber Taxi client.
//
// By default it runs a game locally from the config directory. With
// --remote it joins a session on a running server instead: held keys go to
// the server over the WebSocket feed and the broadcast snapshots are drawn.
//
//	desktop --config classic
//	desktop --remote a1b2 --server http://localhost:8080
//
// Controls: W/S accelerate and reverse, A/D steer, X brake, SPACE handbrake,
// E buy fuel or food, J toggle jobs, R reset, ESC quit.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/rubertaxi/game/config"
	"github.com/wricardo/mcp-training/rubertaxi/game/engine"
	"github.com/wricardo/mcp-training/rubertaxi/logging"
)

func main() {
	_ = godotenv.Load()

	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "desktop: %v\n", err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "desktop",
		Usage: "play Ruber Taxi in a window",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config-dir", Value: "configs", Usage: "directory containing game configurations", Sources: cli.EnvVars("CONFIG_DIR")},
			&cli.StringFlag{Name: "config", Usage: "config ID to play locally (defaults to classic)"},
			&cli.StringFlag{Name: "remote", Usage: "join this server session instead of playing locally"},
			&cli.StringFlag{Name: "server", Value: "http://localhost:8080", Usage: "server URL for --remote", Sources: cli.EnvVars("RUBER_SERVER")},
			&cli.FloatFlag{Name: "scale", Value: 0.75, Usage: "window scale"},
			&cli.BoolFlag{Name: "debug", Usage: "enable debug logging"},
		},
		Action: run,
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	level := "info"
	if cmd.Bool("debug") {
		level = "debug"
	}
	logger := logging.Component(logging.New(logging.Options{Level: level, Pretty: true}), "desktop")

	configs, err := config.NewManager(cmd.String("config-dir"))
	if err != nil {
		return err
	}

	source, err := openSource(ctx, cmd, configs, logger)
	if err != nil {
		return err
	}
	defer source.Close()

	game := NewGame(source, ebitenKeyboard{})
	w, h := game.Layout(0, 0)
	scale := cmd.Float("scale")
	if scale <= 0 {
		scale = 1
	}

	ebiten.SetWindowTitle("Ruber Taxi: " + source.Title())
	ebiten.SetWindowSize(int(float64(w)*scale), int(float64(h)*scale))
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(int(time.Second / engine.StepDuration))

	logger.Info().Str("title", source.Title()).Msg("starting window")
	return ebiten.RunGame(game)
}

func openSource(ctx context.Context, cmd *cli.Command, configs *config.Manager, logger zerolog.Logger) (Source, error) {
	if id := cmd.String("remote"); id != "" {
		return dialRemote(ctx, cmd.String("server"), id, configs, logger)
	}

	cfg := configs.GetDefault()
	if name := cmd.String("config"); name != "" {
		loaded, err := configs.LoadConfig(name)
		if err != nil {
			return nil, fmt.Errorf("failed to load config %q: %w", name, err)
		}
		cfg = loaded
	}
	return newLocalSource(cfg)
}
