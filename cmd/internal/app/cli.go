package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/yatinannam/foundathon-landing-sub000/cmd/internal/locktoken"
)

// Execute runs the foundathon command line.
func Execute() error {
	return NewRootCommand().Execute()
}

// NewRootCommand builds the CLI. Running it without a subcommand serves HTTP.
func NewRootCommand() *cobra.Command {
	var (
		addr     string
		logLevel string
	)

	// Flags override env config after it has been loaded.
	loadConfig := func() Config {
		cfg := LoadConfig()
		if addr != "" {
			cfg.HTTPAddr = addr
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		return cfg
	}

	root := &cobra.Command{
		Use:   "foundathon",
		Short: "Foundathon registration server",
		Long: `foundathon serves problem statement locks and team registrations.

Locks are short-lived signed tokens; registrations are committed against
per-problem-statement capacity.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			return Serve(loadConfig())
		},
	}
	root.PersistentFlags().StringVar(&addr, "addr", "", "HTTP listen address (overrides FOUNDATHON_HTTP_ADDR)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug|info|warn|error (overrides FOUNDATHON_LOG_LEVEL)")

	root.AddCommand(
		newServeCommand(loadConfig),
		newMigrateCommand(loadConfig),
		newCatalogCommand(loadConfig),
		newMintLockCommand(loadConfig),
	)
	return root
}

func newServeCommand(loadConfig func() Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return Serve(loadConfig())
		},
	}
}

func newMigrateCommand(loadConfig func() Config) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Apply the embedded database migrations",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{MigrateUp, MigrateDown, MigrateStatus},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			if cfg.DatabaseURL == "" {
				return errors.New("migrate: FOUNDATHON_DATABASE_URL is required")
			}
			command := MigrateUp
			if len(args) == 1 {
				command = args[0]
			}

			log := NewLogger(cfg.LogLevel, cfg.LogFormat)
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			pool, err := NewDBPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()
			return Migrate(ctx, pool, command, log)
		},
	}
}

func newCatalogCommand(loadConfig func() Config) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Print the problem statement catalog in effect",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := loadCatalog(loadConfig())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(cat.All())
			}
			b, err := cat.Marshal()
			if err != nil {
				return err
			}
			_, err = out.Write(b)
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output in JSON format")
	return cmd
}

func newMintLockCommand(loadConfig func() Config) *cobra.Command {
	var (
		holderID   string
		resourceID string
		ttl        time.Duration
	)
	cmd := &cobra.Command{
		Use:   "mint-lock",
		Short: "Mint a lock token for a holder (operator and debugging use)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := loadConfig()
			cat, err := loadCatalog(cfg)
			if err != nil {
				return err
			}
			ps, ok := cat.Lookup(strings.TrimSpace(resourceID))
			if !ok {
				return fmt.Errorf("mint-lock: unknown problem statement %q", resourceID)
			}

			if err := cfg.Validate(); err != nil {
				return err
			}
			secret, err := LoadLockSecret(cfg, NewLogger("error", cfg.LogFormat))
			if err != nil {
				return err
			}
			codec, err := newLockCodec(secret, cfg)
			if err != nil {
				return err
			}
			if codec == nil {
				return locktoken.ErrConfiguration
			}

			tok, err := codec.Mint(ps.ID, strings.TrimSpace(holderID), ttl)
			if err != nil {
				return err
			}
			return printMintedLock(cmd.OutOrStdout(), ps.Title, tok, time.Now())
		},
	}
	cmd.Flags().StringVar(&holderID, "holder", "", "holder id the lock is bound to")
	cmd.Flags().StringVar(&resourceID, "problem-statement", "", "problem statement id")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "lock lifetime (default FOUNDATHON_LOCK_TTL)")
	_ = cmd.MarkFlagRequired("holder")
	_ = cmd.MarkFlagRequired("problem-statement")
	return cmd
}

func printMintedLock(w io.Writer, title string, tok locktoken.Token, now time.Time) error {
	_, err := fmt.Fprintf(w, "%s\n  problem statement: %s (%s)\n  holder: %s\n  expires: %s (%s)\n",
		tok.Value,
		tok.Payload.ResourceID, title,
		tok.Payload.HolderID,
		tok.ExpiresAt().Format(time.RFC3339),
		humanize.RelTime(tok.ExpiresAt(), now, "ago", "from now"),
	)
	return err
}
