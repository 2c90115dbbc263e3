package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iho/coffre/internal/adapter/http/dto"
	"github.com/iho/coffre/internal/domain"
	"github.com/iho/coffre/internal/infrastructure/auth"
	"github.com/iho/coffre/internal/infrastructure/logger"
	"github.com/iho/coffre/internal/infrastructure/postgres"
)

type globalOptions struct {
	baseURL string
	token   string
	timeout time.Duration
	output  string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           "coffre-cli",
		Short:         "Coffre CLI tool",
		Long:          `A command line interface for interacting with the Coffre vault API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", envOr("COFFRE_URL", "http://localhost:8080"), "Base URL of the Coffre API")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("COFFRE_TOKEN"), "Bearer token (defaults to $COFFRE_TOKEN)")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "table", "Output format: table or json")

	rootCmd.AddCommand(
		balanceCmd(opts),
		movementsCmd(opts),
		tokenCmd(),
		migrateCmd(postgres.RunMigrations, postgres.RunMigrationsDown),
	)

	return rootCmd
}

func balanceCmd(opts *globalOptions) *cobra.Command {
	var fresh bool

	cmd := &cobra.Command{
		Use:   "balance <vault-id>",
		Short: "Show the current balance of a vault",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			if fresh {
				query.Set("fresh", "true")
			}

			var balance dto.BalanceResponse
			if err := newAPIClient(opts).get(cmd.Context(), vaultPath(args[0], "balance"), query, &balance); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.output == "json" {
				return printJSON(out, balance)
			}

			fmt.Fprintf(out, "Balance:        %s (%d cents)\n", balance.Balance, balance.BalanceCents)
			if balance.LastInventoryDate != nil {
				fmt.Fprintf(out, "Last inventory: %s on %s\n", balance.LastInventoryAmount, balance.LastInventoryDate.Format(time.RFC3339))
			} else {
				fmt.Fprintln(out, "Last inventory: none")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fresh, "fresh", false, "Bypass the balance cache")
	return cmd
}

func movementsCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "movements",
		Short: "Movement operations",
	}

	cmd.AddCommand(listMovementsCmd(opts), addMovementCmd(opts), movementAuditCmd(opts))
	return cmd
}

func listMovementsCmd(opts *globalOptions) *cobra.Command {
	var (
		includeDeleted bool
		limit          int
		offset         int
	)

	cmd := &cobra.Command{
		Use:   "list <vault-id>",
		Short: "List movements of a vault, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			query.Set("limit", strconv.Itoa(limit))
			query.Set("offset", strconv.Itoa(offset))
			if includeDeleted {
				query.Set("include_deleted", "true")
			}

			var resp dto.ListMovementsResponse
			if err := newAPIClient(opts).get(cmd.Context(), vaultPath(args[0], "movements"), query, &resp); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.output == "json" {
				return printJSON(out, resp)
			}

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTYPE\tAMOUNT\tCREATED\tDELETED\tDESCRIPTION")
			for _, m := range resp.Movements {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\t%s\n",
					m.ID, m.Type, m.Amount, m.CreatedAt.Format(time.RFC3339), m.Deleted, truncate(m.Description, 40))
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&includeDeleted, "include-deleted", false, "Include soft-deleted movements")
	cmd.Flags().IntVar(&limit, "limit", 20, "Page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "Page offset")
	return cmd
}

func addMovementCmd(opts *globalOptions) *cobra.Command {
	var (
		req            dto.RecordMovementRequest
		idempotencyKey string
	)

	cmd := &cobra.Command{
		Use:   "add <vault-id>",
		Short: "Record an ENTRY or EXIT movement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := domain.ParseMovementType(req.Type); err != nil {
				return err
			}

			var movement dto.MovementResponse
			if err := newAPIClient(opts).post(cmd.Context(), vaultPath(args[0], "movements"), idempotencyKey, req, &movement); err != nil {
				return err
			}

			if opts.output == "json" {
				return printJSON(cmd.OutOrStdout(), movement)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s %s (%s)\n", movement.Type, movement.Amount, movement.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Type, "type", "", "Movement type: ENTRY or EXIT")
	cmd.Flags().StringVar(&req.Amount, "amount", "", "Amount, e.g. 250.50")
	cmd.Flags().StringVar(&req.Description, "description", "", "Free-text description")
	cmd.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "Idempotency-Key header for safe retries")
	cmd.MarkFlagRequired("type")
	cmd.MarkFlagRequired("amount")
	return cmd
}

func movementAuditCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "audit <vault-id> <movement-id>",
		Short: "Show the audit trail of a movement (admin only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var trail dto.AuditTrailResponse
			path := vaultPath(args[0], "movements/"+url.PathEscape(args[1])+"/audit")
			if err := newAPIClient(opts).get(cmd.Context(), path, nil, &trail); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.output == "json" {
				return printJSON(out, trail)
			}

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "WHEN\tACTION\tUSER\tSTATUS")
			for _, e := range trail.Entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.CreatedAt.Format(time.RFC3339), e.Action, e.UserID, e.Status)
			}
			return w.Flush()
		},
	}
}

// migrationRunner applies or reverts schema migrations.
type migrationRunner func(databaseURL, migrationsPath string, logger zerolog.Logger) error

func migrateCmd(up, down migrationRunner) *cobra.Command {
	var (
		databaseURL    string
		migrationsPath string
		logLevel       string
	)

	run := func(runner migrationRunner) func(cmd *cobra.Command, args []string) error {
		return func(cmd *cobra.Command, args []string) error {
			if databaseURL == "" {
				return fmt.Errorf("--database-url or $DATABASE_URL is required")
			}
			log := logger.NewWithWriter(logger.Config{Level: logLevel, Format: "console"}, cmd.ErrOrStderr())
			return runner(databaseURL, migrationsPath, log)
		}
	}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}

	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection URL")
	cmd.PersistentFlags().StringVar(&migrationsPath, "path", envOr("MIGRATIONS_PATH", "migrations"), "Directory holding the migration files")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE:  run(up),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the last applied migration",
			Args:  cobra.NoArgs,
			RunE:  run(down),
		},
	)
	return cmd
}

func tokenCmd() *cobra.Command {
	var (
		userID string
		email  string
		role   string
		secret string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development JWT signed with the shared secret",
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return fmt.Errorf("--secret or $JWT_SECRET is required")
			}

			token, err := auth.NewJWTManager(secret, ttl).Generate(&domain.User{
				ID:    userID,
				Email: email,
				Role:  domain.Role(role),
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User ID (subject)")
	cmd.Flags().StringVar(&email, "email", "", "User email")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleViewer), "Role: admin, operator or viewer")
	cmd.Flags().StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "HMAC secret shared with the server")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	cmd.MarkFlagRequired("user")
	return cmd
}

func vaultPath(vaultID, resource string) string {
	return "/api/v1/vaults/" + url.PathEscape(vaultID) + "/" + resource
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
