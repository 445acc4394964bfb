// Command fujao is the lost-pet reporting client: register and sign in, browse
// reported animals, submit a lost-animal report with photo and location, and
// claim a found animal. All business logic lives in the remote backend; this
// binary is form handling and device glue.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"fujao/internal/api"
	"fujao/internal/config"
	"fujao/internal/device"
	"fujao/internal/localstore"
	"fujao/internal/model"
	"fujao/internal/session"
)

// app carries the wired dependencies into every subcommand.
type app struct {
	cfg      *config.Config
	log      zerolog.Logger
	store    *localstore.Store
	session  *session.Manager
	api      *api.Client
	gate     *device.Gate
	location device.LocationProvider
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := &app{}
	rootCmd := newRootCommand(a)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fujao: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fujao",
		Short: "Encontre e cadastre animais perdidos",
		Long: `Fujão is a lost-pet reporting client. It talks to the fujao backend to
register accounts, list lost animals, submit new reports with photo and GPS
location, and claim recovered animals.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.store != nil {
				a.store.Close()
			}
		},
	}
	cmd.AddCommand(
		newRegisterCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newProfileCmd(a),
		newAnimalsCmd(a),
		newPhotoCmd(a),
		newReportCmd(a),
		newFoundCmd(a),
		newClaimCmd(a),
	)
	return cmd
}

func (a *app) init() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(level)
	}
	a.log = logger

	store, err := localstore.Open(cfg.StatePath("fujao.db"))
	if err != nil {
		return err
	}
	a.store = store
	a.session = session.NewManager(store)
	a.api = api.New(cfg.APIBaseURL, logger)
	a.gate = device.NewGate(store, stdinPrompter)
	a.location = pickLocationProvider(cfg)
	return nil
}

// pickLocationProvider prefers an external locator command and falls back to a
// fixed coordinate from the environment.
func pickLocationProvider(cfg *config.Config) device.LocationProvider {
	if cfg.LocationCommand != "" {
		return device.CommandLocation{Command: cfg.LocationCommand}
	}
	if cfg.FixedLatitude != nil && cfg.FixedLongitude != nil {
		return device.FixedLocation{Coordinate: model.GeoCoordinate{
			Latitude:  *cfg.FixedLatitude,
			Longitude: *cfg.FixedLongitude,
		}}
	}
	return device.Unavailable{}
}

// stdinPrompter plays the role of the OS permission dialog.
func stdinPrompter(capability device.Capability, rationale string) bool {
	if rationale != "" {
		fmt.Println(rationale)
	}
	fmt.Printf("Permitir acesso a %s? [s/N] ", capability)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "s" || answer == "sim" || answer == "y" || answer == "yes"
}

// askLine reads one input line, using the flag value when already provided.
func askLine(label, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	fmt.Printf("%s: ", label)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
