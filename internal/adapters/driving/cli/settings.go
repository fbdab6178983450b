package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/coursecheck/internal/core/domain"
	"github.com/custodia-labs/coursecheck/internal/core/services"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure analysis thresholds, storage backends and AI providers.

Settings live in config.toml under the configuration directory.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set KEY [VALUE]",
	Short: "Change one setting",
	Long: `Change one setting by its dotted key.

Secrets (API keys and tokens) are prompted for without echo when VALUE is
omitted. Lists are comma separated.

Examples:
  coursecheck settings set analysis.threshold 0.3
  coursecheck settings set corpus.backend sqlite
  coursecheck settings set embedding.api_key
  coursecheck settings set analysis.extra_stopwords "emnet,studentene"`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List configurable keys",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		for _, key := range services.SettingKeys() {
			cmd.Println(key)
		}
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if err := ensureSettings(); err != nil {
		return err
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	a := settings.Analysis
	cmd.Println("[Analysis]")
	cmd.Printf("  Overlap threshold: %.2f (scores above %.2f%% are reported)\n", a.OverlapThreshold, a.OverlapThreshold*100)
	cmd.Printf("  Explain threshold: %.2f%%\n", a.ExplainThreshold)
	cmd.Printf("  Explanations per minute: %d\n", a.ExplainRequestsPerMinute)
	if len(a.ExtraStopwords) > 0 {
		cmd.Printf("  Extra stopwords: %s\n", strings.Join(a.ExtraStopwords, ", "))
	}
	cmd.Println()

	c := settings.Corpus
	cmd.Println("[Corpus]")
	cmd.Printf("  Backend: %s\n", c.Backend.Description())
	switch c.Backend {
	case domain.CorpusBackendDocument, domain.CorpusBackendSQLite:
		cmd.Printf("  Path: %s\n", valueOrDefault(c.Path))
	case domain.CorpusBackendPostgres:
		cmd.Printf("  DSN: %s\n", maskDSN(c.DSN))
	case domain.CorpusBackendSpreadsheet:
		cmd.Printf("  Spreadsheet: %s\n", valueOrUnset(c.SpreadsheetID))
		cmd.Printf("  Range: %s\n", c.SheetRange)
		cmd.Printf("  API Key: %s\n", maskedOrUnset(c.SheetAPIKey))
		cmd.Printf("  Access Token: %s\n", maskedOrUnset(c.SheetAccessToken))
	}
	cmd.Println()

	k := settings.Cache
	cmd.Println("[Cache]")
	cmd.Printf("  Backend: %s\n", k.Backend)
	switch k.Backend {
	case domain.CacheBackendFile, domain.CacheBackendBolt, domain.CacheBackendSQLite:
		cmd.Printf("  Path: %s\n", valueOrDefault(k.Path))
	case domain.CacheBackendPostgres:
		if k.DSN == "" {
			cmd.Println("  DSN: (same as corpus)")
		} else {
			cmd.Printf("  DSN: %s\n", maskDSN(k.DSN))
		}
	case domain.CacheBackendRedis:
		cmd.Printf("  Address: %s\n", valueOrUnset(k.RedisAddr))
		cmd.Printf("  Prefix: %s\n", k.RedisPrefix)
	}
	cmd.Println()

	e := settings.Embedding
	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", e.Provider.Description())
	cmd.Printf("  Model: %s\n", e.Model)
	if e.Provider == domain.AIProviderOllama {
		cmd.Printf("  Base URL: %s\n", valueOrDefault(e.BaseURL))
	}
	if e.Provider.RequiresAPIKey() {
		cmd.Printf("  API Key: %s\n", maskedOrUnset(e.APIKey))
	}
	if e.Dimensions > 0 {
		cmd.Printf("  Dimensions: %d\n", e.Dimensions)
	}
	cmd.Printf("  Status: %s\n", configuredStatus(e.IsConfigured()))
	cmd.Println()

	l := settings.LLM
	cmd.Println("[LLM]")
	if l.Provider == "" {
		cmd.Println("  Provider: (not set, explanations disabled)")
	} else {
		cmd.Printf("  Provider: %s\n", l.Provider.Description())
		cmd.Printf("  Model: %s\n", l.Model)
		if l.Provider == domain.AIProviderOllama {
			cmd.Printf("  Base URL: %s\n", valueOrDefault(l.BaseURL))
		}
		if l.Provider.RequiresAPIKey() {
			cmd.Printf("  API Key: %s\n", maskedOrUnset(l.APIKey))
		}
		cmd.Printf("  Status: %s\n", configuredStatus(l.IsConfigured()))
	}
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'coursecheck settings set' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if err := ensureSettings(); err != nil {
		return err
	}

	key := args[0]
	var value string
	switch {
	case len(args) == 2:
		value = args[1]
	case isSecretKey(key):
		cmd.Printf("Enter %s: ", key)
		value = readPassword(cmd.InOrStdin())
		cmd.Println()
		if value == "" {
			return errors.New("no value entered")
		}
	default:
		return fmt.Errorf("a value is required for %s", key)
	}

	if err := settingsService.Set(key, value); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) && !isKnownKey(key) {
			return fmt.Errorf("%w (run 'coursecheck settings keys')", err)
		}
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	if isSecretKey(key) {
		value = maskAPIKey(value)
	}
	cmd.Printf("Set %s = %s\n", key, value)
	return nil
}

// Helper functions.

func isKnownKey(key string) bool {
	for _, k := range services.SettingKeys() {
		if k == key {
			return true
		}
	}
	return false
}

func isSecretKey(key string) bool {
	return strings.HasSuffix(key, "api_key") || strings.HasSuffix(key, "access_token")
}

func configuredStatus(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func valueOrDefault(v string) string {
	if v == "" {
		return "(default)"
	}
	return v
}

func valueOrUnset(v string) string {
	if v == "" {
		return "(not set)"
	}
	return v
}

func maskedOrUnset(v string) string {
	if v == "" {
		return "(not set)"
	}
	return maskAPIKey(v)
}

// maskDSN hides the password of a URL-style connection string.
func maskDSN(dsn string) string {
	if dsn == "" {
		return "(not set)"
	}
	scheme, rest, ok := strings.Cut(dsn, "://")
	if !ok {
		return dsn
	}
	creds, host, ok := strings.Cut(rest, "@")
	if !ok {
		return dsn
	}
	user, _, hasPassword := strings.Cut(creds, ":")
	if !hasPassword {
		return dsn
	}
	return scheme + "://" + user + ":****@" + host
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword(in io.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return string(password)
		}
	}
	reader := bufio.NewReader(in)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
