package system

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/willofcode/flowmind/internal/cli"
	"github.com/willofcode/flowmind/internal/keyring"
	"github.com/willofcode/flowmind/internal/storage/postgres"
)

// KeyringSetCmd stores a secret in the OS keyring. The value is prompted for
// when omitted so it does not end up in shell history.
type KeyringSetCmd struct {
	Secret string `arg:"" help:"Secret to store: database or openai." enum:"database,db,openai"`
	Value  string `arg:"" optional:"" help:"Secret value. Prompted for when omitted."`
}

func (cmd *KeyringSetCmd) Run(ctx *cli.Context) error {
	secret, err := keyring.ParseSecret(cmd.Secret)
	if err != nil {
		return err
	}

	value := strings.TrimSpace(cmd.Value)
	if value == "" {
		if err := huh.NewInput().
			Title(fmt.Sprintf("Enter %s", secretLabel(secret))).
			EchoMode(huh.EchoModePassword).
			Value(&value).
			Run(); err != nil {
			return fmt.Errorf("input cancelled: %w", err)
		}
		value = strings.TrimSpace(value)
	}

	if secret == keyring.SecretDatabase {
		if err := checkConnString(value); err != nil {
			return err
		}
	}

	if err := keyring.Set(secret, value); err != nil {
		return err
	}

	fmt.Printf("✓ %s stored in OS keyring\n", capitalize(secretLabel(secret)))
	if secret == keyring.SecretDatabase {
		fmt.Println("  flowmind will use it when --config is not given")
	}
	return nil
}

// checkConnString accepts PostgreSQL URLs and DSNs. Embedded passwords are
// allowed here since the keyring itself is encrypted.
func checkConnString(connStr string) error {
	if !postgres.IsConnString(connStr) && !strings.Contains(connStr, "host=") {
		return errors.New("connection string must be a valid PostgreSQL connection string")
	}
	if _, err := postgres.ValidateConnString(connStr); err != nil {
		if errors.Is(err, postgres.ErrEmbeddedCredentials) {
			fmt.Println("⚠️  Warning: Connection string contains embedded credentials.")
			fmt.Println("   It will be stored as-is in the encrypted OS keyring.")
			return nil
		}
		return fmt.Errorf("invalid connection string: %w", err)
	}
	return nil
}

type KeyringDeleteCmd struct {
	Secret string `arg:"" help:"Secret to delete: database or openai." enum:"database,db,openai"`
}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	secret, err := keyring.ParseSecret(cmd.Secret)
	if err != nil {
		return err
	}
	if err := keyring.Delete(secret); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("no %s found in keyring", secretLabel(secret))
		}
		return err
	}
	fmt.Printf("✓ %s deleted from OS keyring\n", capitalize(secretLabel(secret)))
	return nil
}

type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		fmt.Println("❌ OS keyring is not available on this system")
		return keyring.ErrKeyringUnavailable
	}
	fmt.Println("✓ OS keyring is available")

	for _, s := range []keyring.Secret{keyring.SecretDatabase, keyring.SecretOpenAI} {
		v, err := keyring.Get(s)
		switch {
		case err == nil && s == keyring.SecretDatabase:
			fmt.Printf("✓ %s is stored: %s\n", capitalize(secretLabel(s)), maskPassword(v))
		case err == nil:
			fmt.Printf("✓ %s is stored\n", capitalize(secretLabel(s)))
		case errors.Is(err, keyring.ErrNotFound):
			fmt.Printf("ℹ No %s stored\n", secretLabel(s))
		default:
			return err
		}
	}
	return nil
}

func secretLabel(s keyring.Secret) string {
	if s == keyring.SecretOpenAI {
		return "OpenAI API key"
	}
	return "database connection string"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// maskPassword hides the password of a PostgreSQL URL or DSN.
func maskPassword(connStr string) string {
	if postgres.IsConnString(connStr) {
		idx := strings.Index(connStr, "://")
		rest := connStr[idx+3:]
		at := strings.LastIndex(rest, "@")
		if at == -1 {
			return connStr
		}
		userInfo := rest[:at]
		if colon := strings.Index(userInfo, ":"); colon != -1 {
			return connStr[:idx+3] + userInfo[:colon] + ":****" + rest[at:]
		}
		return connStr
	}

	fields := strings.Fields(connStr)
	for i, f := range fields {
		if strings.HasPrefix(strings.ToLower(f), "password=") {
			fields[i] = "password=****"
		}
	}
	return strings.Join(fields, " ")
}
