package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/app"
	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/config"
	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/export"
	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/feed"
	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/reconcile"
	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/synctoken"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "dqa",
		Short: "DQA environmental standards registry",
		Long: `dqa keeps the QA team's registry of environmental test standards.

It serves the registry API, checks each standard against its publisher's
page, reconciles the collection with a remote feed or a CSV file, and
exports the grouped view as CSV or PDF. Configuration comes from the
environment (DQA_STORE, DQA_FEED_URL, DQA_SYNC_URL, ...).`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(verifyCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(hashTokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the registry HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				cfg.Addr = addr
			}

			rt, err := buildRuntime(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer rt.Close()

			httpServer := app.NewHTTPServer(rt.service, cfg.CORSOrigin)
			server := &http.Server{
				Addr:              cfg.Addr,
				Handler:           httpServer.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
				ReadTimeout:       15 * time.Second,
				// Verification runs and PDF renders hold the response open.
				WriteTimeout: 10 * time.Minute,
				IdleTimeout:  60 * time.Second,
			}

			serveErr := make(chan error, 1)
			go func() {
				log.Printf("DQA registry listening on %s", cfg.Addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serveErr <- err
				}
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			select {
			case <-sigCh:
			case err := <-serveErr:
				return fmt.Errorf("server failed: %w", err)
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				log.Printf("shutdown error: %v", err)
			}
			return nil
		},
	}
	cmd.Flags().String("addr", "", "listen address (overrides API_ADDR)")
	return cmd
}

func verifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check every standard against its publisher page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := buildRuntime(cmd.Context(), config.Load())
			if err != nil {
				return err
			}
			defer rt.Close()

			report, err := rt.service.RunVerify(cmd.Context())
			if err != nil {
				return err
			}

			counts := map[feed.Status]int{}
			for _, result := range report.Results {
				counts[result.Status]++
				if result.Status == feed.StatusOK || result.Status == feed.StatusSkipped {
					continue
				}
				fmt.Printf("%-8s %s\n", result.Status, result.Name)
				for _, issue := range result.Issues {
					fmt.Printf("         %s\n", issue)
				}
			}
			fmt.Printf("\n%d checked at %s: %d OK, %d skipped, %d mismatch, %d update, %d warning, %d error\n",
				len(report.Results), report.Timestamp,
				counts[feed.StatusOK], counts[feed.StatusSkipped], counts[feed.StatusMismatch],
				counts[feed.StatusUpdate], counts[feed.StatusWarning], counts[feed.StatusError])
			return nil
		},
	}
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the grouped registry as CSV or PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rawFormat, _ := cmd.Flags().GetString("format")
			output, _ := cmd.Flags().GetString("output")
			format, err := export.ParseFormat(rawFormat)
			if err != nil {
				return err
			}

			rt, err := buildRuntime(cmd.Context(), config.Load())
			if err != nil {
				return err
			}
			defer rt.Close()

			result, err := rt.service.Export(cmd.Context(), format)
			if err != nil {
				return err
			}
			if output == "" {
				output = result.Filename
			} else if info, err := os.Stat(output); err == nil && info.IsDir() {
				output = filepath.Join(output, result.Filename)
			}
			if err := os.WriteFile(output, result.Data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Printf("Wrote %s (%d bytes)\n", output, len(result.Data))
			return nil
		},
	}
	cmd.Flags().StringP("format", "f", "csv", "output format: csv or pdf")
	cmd.Flags().StringP("output", "o", "", "output file or directory (default: generated name)")
	return cmd
}

func checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <csv-file>",
		Short: "Reconcile a CSV file against the stored collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apply, _ := cmd.Flags().GetBool("apply")
			asJSON, _ := cmd.Flags().GetBool("json")

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			candidates := feed.Parse(string(data))
			if len(candidates) == 0 {
				return fmt.Errorf("%s has no usable rows", args[0])
			}

			rt, err := buildRuntime(cmd.Context(), config.Load())
			if err != nil {
				return err
			}
			defer rt.Close()

			check := rt.service.CheckCandidates(filepath.Base(args[0]), candidates)
			if asJSON {
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")
				if err := encoder.Encode(check); err != nil {
					return err
				}
			} else {
				for _, update := range check.Updates {
					fmt.Printf("%-6s %s\n", update.Kind, update.Name)
					for _, change := range update.Changes {
						if update.Kind == reconcile.KindNew {
							continue
						}
						fmt.Printf("       %s: %q -> %q\n", change.Field, change.Old, change.New)
					}
				}
				fmt.Printf("\n%d pending update(s) from %s\n", check.Count, check.Source)
			}

			if !apply || check.Count == 0 {
				return nil
			}
			counts, err := rt.service.ApplyUpdates(cmd.Context(), check.Updates)
			if err != nil {
				return err
			}
			fmt.Printf("Applied %d new, %d updated\n", counts.New, counts.Updated)
			return nil
		},
	}
	cmd.Flags().Bool("apply", false, "merge every pending update")
	cmd.Flags().Bool("json", false, "print the pending updates as JSON")
	return cmd
}

func hashTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash-token [token]",
		Short: "Print the bcrypt hash for DQA_SYNC_TOKEN_HASH",
		Long: `hash-token hashes a sync token for the receiving side. Without an
argument a random token is generated and printed alongside its hash; give
the token to pushing peers as DQA_SYNC_TOKEN.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var token string
			if len(args) > 0 {
				token = args[0]
			} else {
				generated, err := synctoken.Generate()
				if err != nil {
					return err
				}
				token = generated
				fmt.Printf("DQA_SYNC_TOKEN=%s\n", token)
			}
			hash, err := synctoken.Hash(token)
			if err != nil {
				return err
			}
			fmt.Printf("DQA_SYNC_TOKEN_HASH=%s\n", hash)
			return nil
		},
	}
	return cmd
}
