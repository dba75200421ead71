package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rpggio/stackdiff/internal/budget"
	"github.com/rpggio/stackdiff/internal/config"
	"github.com/rpggio/stackdiff/internal/diff"
	"github.com/rpggio/stackdiff/internal/domain/activity"
	"github.com/rpggio/stackdiff/internal/domain/changes"
	"github.com/rpggio/stackdiff/internal/domain/version"
	"github.com/rpggio/stackdiff/internal/sqlite"
	"github.com/spf13/cobra"
)

// ErrPatchFailed is returned when a patch does not apply cleanly.
var ErrPatchFailed = errors.New("patch did not apply cleanly")

func diffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff OLD NEW",
		Short: "Print a unified diff between two files",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			oldContent, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			newContent, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[1], err)
			}

			timeout, _ := cmd.Flags().GetDuration("timeout")
			differ := diff.NewDiffer(diff.Options{Timeout: timeout})
			result, unified := differ.Compare(string(oldContent), string(newContent), args[0], args[1])

			out := cmd.OutOrStdout()
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return writeJSON(cmd, map[string]any{
					"stats":        result.Stats,
					"summary":      result.Summary(),
					"unified_diff": unified,
				})
			}
			fmt.Fprint(out, unified)
			fmt.Fprintf(out, "# %s\n", result.Summary())
			return nil
		},
	}

	cmd.Flags().Duration("timeout", diff.DefaultTimeout, "Maximum time spent computing the diff")
	cmd.Flags().BoolP("json", "j", false, "Output as JSON")

	return cmd
}

func applyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apply BASE PATCH",
		Short: "Apply a patch file to a base file and print the result",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			patch, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[1], err)
			}

			result := diff.NewDiffer(diff.Options{}).ApplyPatch(string(base), string(patch))
			if !result.Success {
				return ErrPatchFailed
			}
			fmt.Fprint(cmd.OutOrStdout(), result.Content)
			return nil
		},
	}
}

func summarizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Summarize recent activity on a drive as budgeted diffs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			db, err := sqlite.New(cfg.DB.Path)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()
			if err := db.RunMigrations(); err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}

			differ := diff.NewDiffer(diff.Options{
				Timeout:           cfg.Diff.Timeout,
				LineModeThreshold: cfg.Diff.LineModeThreshold,
			})
			svc := changes.NewService(
				activity.NewService(sqlite.NewActivityRepository(db), nil),
				version.NewService(sqlite.NewVersionRepository(db), nil),
				budget.NewAllocator(differ, nil, budget.Options{MaxContentBytes: cfg.Diff.MaxContentBytes}),
				changes.Options{
					OutputCeiling: cfg.Budget.OutputCeiling,
					MinUseful:     cfg.Budget.MinUseful,
					ActivityLimit: cfg.Budget.ActivityLimit,
				},
				nil,
			)

			req := changes.SummaryRequest{}
			req.DriveID, _ = cmd.Flags().GetString("drive")
			req.OutputCeiling, _ = cmd.Flags().GetInt("ceiling")
			req.Limit, _ = cmd.Flags().GetInt("limit")
			if page, _ := cmd.Flags().GetString("page"); page != "" {
				req.PageID = &page
			}
			if since, _ := cmd.Flags().GetString("since"); since != "" {
				t, err := time.Parse(time.RFC3339, since)
				if err != nil {
					return fmt.Errorf("invalid --since: %w", err)
				}
				req.Since = t
			}
			tenant, _ := cmd.Flags().GetString("tenant")
			if tenant == "" {
				tenant = cfg.Auth.DefaultTenant
			}

			summary, err := svc.Summarize(cmd.Context(), tenant, req)
			if err != nil {
				return err
			}
			return writeJSON(cmd, summary)
		},
	}

	cmd.Flags().String("db", "", "Database path (defaults to configured path)")
	cmd.Flags().StringP("drive", "d", "", "Drive to summarize")
	cmd.Flags().StringP("page", "p", "", "Restrict to one page")
	cmd.Flags().String("since", "", "Only activity at or after this RFC 3339 time")
	cmd.Flags().String("tenant", "", "Tenant ID (defaults to configured default tenant)")
	cmd.Flags().Int("ceiling", 0, "Output ceiling in bytes")
	cmd.Flags().IntP("limit", "n", 0, "Maximum activity entries to read")
	cmd.MarkFlagRequired("drive")

	return cmd
}

func apiKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apikey",
		Short: "Manage API keys for HTTP transport",
	}

	add := &cobra.Command{
		Use:   "add TENANT TOKEN",
		Short: "Register a bearer token for a tenant",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			db, err := sqlite.New(cfg.DB.Path)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()
			if err := db.RunMigrations(); err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}

			description, _ := cmd.Flags().GetString("description")
			if err := sqlite.NewAPIKeyRepository(db).Create(cmd.Context(), args[0], args[1], description); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registered key for tenant %s\n", args[0])
			return nil
		},
	}
	add.Flags().String("db", "", "Database path (defaults to configured path)")
	add.Flags().String("description", "", "Free-form note stored with the key")

	cmd.AddCommand(add)
	return cmd
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if dbPath, _ := cmd.Flags().GetString("db"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	return cfg, nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
