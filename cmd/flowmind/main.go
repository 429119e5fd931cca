package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/willofcode/flowmind/internal/cli"
	"github.com/willofcode/flowmind/internal/cli/backups"
	"github.com/willofcode/flowmind/internal/cli/commitments"
	"github.com/willofcode/flowmind/internal/cli/profiles"
	"github.com/willofcode/flowmind/internal/cli/schedule"
	"github.com/willofcode/flowmind/internal/cli/settings"
	"github.com/willofcode/flowmind/internal/cli/system"
	"github.com/willofcode/flowmind/internal/config"
	"github.com/willofcode/flowmind/internal/constants"
	"github.com/willofcode/flowmind/internal/errors"
	"github.com/willofcode/flowmind/internal/keyring"
	"github.com/willofcode/flowmind/internal/logger"
	"github.com/willofcode/flowmind/internal/storage"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Database file path or PostgreSQL connection string. Credentials must NOT be embedded in the connection string; use the environment, .pgpass or 'flowmind keyring set database' instead." type:"string" default:"${default_config}"`
	Debug   bool   `help:"Log debug output to stderr."`
	Person  string `help:"Default person ID." env:"FLOWMIND_PERSON" default:"me"`
	EnvFile string `help:"Environment file to load before reading configuration." name:"env-file" default:".env"`

	Init     system.InitCmd       `cmd:"" help:"Initialize flowmind storage."`
	Doctor   system.DoctorCmd     `cmd:"" help:"Run health checks and diagnostics."`
	Settings settings.SettingsCmd `cmd:"" help:"Manage application settings."`
	Serve    system.ServeCmd      `cmd:"" help:"Serve the HTTP API."`
	Profile  struct {
		Set  profiles.ProfileSetCmd  `cmd:"" help:"Set a person's wake and sleep times."`
		Show profiles.ProfileShowCmd `cmd:"" help:"Show stored profiles." default:"withargs"`
	} `cmd:"" help:"Manage active-hours profiles."`
	Commitment struct {
		Add    commitments.CommitmentAddCmd    `cmd:"" help:"Add a commitment to the local calendar."`
		List   commitments.CommitmentListCmd   `cmd:"" help:"List calendar entries for a day." default:"withargs"`
		Delete commitments.CommitmentDeleteCmd `cmd:"" help:"Delete a calendar entry."`
	} `cmd:"" help:"Manage commitments on the local calendar."`
	Windows  schedule.WindowsCmd  `cmd:"" help:"Show busy blocks, free windows and the activity policy for a day."`
	Generate schedule.GenerateCmd `cmd:"" help:"Fill a day's free windows with activities, once per day."`
	Reset    schedule.ResetCmd    `cmd:"" help:"Reopen a day so activities can be generated again."`
	Backup   struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`
	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store a secret in the OS keyring."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove a secret from the OS keyring."`
		Status system.KeyringStatusCmd `cmd:"" help:"Show which secrets are stored." default:"1"`
	} `cmd:"" help:"Manage secrets in the OS keyring."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Fills the free time around your commitments with short wellness activities."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":        constants.Version,
			"default_config": constants.DefaultConfigPath,
		},
	)
	command := ctx.Command()

	configDir, err := storage.ConfigDir(CLI.Config)
	if err != nil {
		errors.Fatal(err)
	}
	if err := logger.Init(logger.Config{
		Debug:     CLI.Debug,
		ConfigDir: configDir,
		Stderr:    strings.HasPrefix(command, "serve"),
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}

	cfg, err := config.Load(CLI.EnvFile)
	if err != nil {
		errors.Fatal(err)
	}
	cfg.ResolveOpenAIKey()

	store, err := openStore(CLI.Config)
	if err != nil {
		errors.Fatal(err)
	}
	defer store.Close()

	appCtx := &cli.Context{
		Store:  store,
		Config: cfg,
		Person: CLI.Person,
	}

	// init and doctor handle their own loading; keyring never touches the store.
	if !skipsLoad(command) {
		if err := store.Load(); err != nil {
			errors.Fatal(err)
		}
	}

	if err := ctx.Run(appCtx); err != nil {
		store.Close()
		errors.Fatal(err)
	}
}

// openStore uses a PostgreSQL connection string from the keyring when
// --config was left at its default.
func openStore(configFlag string) (storage.Provider, error) {
	if configFlag == constants.DefaultConfigPath {
		if conn := keyring.Lookup(keyring.SecretDatabase); conn != "" {
			logger.Debug("Using database connection from keyring")
			return storage.OpenTrusted(conn)
		}
	}
	return storage.Open(configFlag)
}

func skipsLoad(command string) bool {
	for _, prefix := range []string{"init", "doctor", "keyring"} {
		if strings.HasPrefix(command, prefix) {
			return true
		}
	}
	return false
}
