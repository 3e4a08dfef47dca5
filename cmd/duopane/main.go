package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/duopane/duopane/internal/config"
	"github.com/duopane/duopane/internal/event"
	"github.com/duopane/duopane/internal/fileops"
	"github.com/duopane/duopane/internal/guard"
	"github.com/duopane/duopane/internal/pathres"
	"github.com/duopane/duopane/internal/search"
	"github.com/duopane/duopane/internal/stats"
	"github.com/duopane/duopane/internal/storage"
)

var version = "dev"

func main() {
	os.Exit(run())
}

// app bundles the wired-up components each subcommand draws from.
type app struct {
	engine   *fileops.Engine
	searcher *search.Engine
	resolver *pathres.Resolver
	cfg      config.Config
}

//nolint:gocyclo,revive // cognitive-complexity: main CLI entry point orchestrates all flag parsing
func run() int {
	var (
		verbose     bool
		quiet       bool
		showVersion bool
		recursive   bool
		overwrite   bool
		verifyFlag  bool
		noProgress  bool
	)

	var a app

	rootCmd := &cobra.Command{
		Use:           "duopane <command>",
		Short:         "Safe file mutation: copy, move, delete, rename, search",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if showVersion {
				fmt.Fprintf(os.Stdout, "duopane %s\n", version)
				os.Exit(0)
			}

			logLevel := slog.LevelWarn
			if verbose {
				logLevel = slog.LevelDebug
			} else if !quiet {
				logLevel = slog.LevelInfo
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: logLevel,
			}))
			slog.SetDefault(logger)

			cfg, err := config.Load()
			if err != nil {
				slog.Warn("failed to load config", "error", err)
			}
			a.cfg = cfg

			// Config defaults apply only to flags not set on the CLI.
			flags := cmd.Flags()
			if !flags.Changed("verify") && cfg.Defaults.Verify != nil {
				verifyFlag = *cfg.Defaults.Verify
			}
			if !flags.Changed("overwrite") && cfg.Defaults.Overwrite != nil {
				overwrite = *cfg.Defaults.Overwrite
			}
			if !flags.Changed("recursive") && cfg.Defaults.Recursive != nil {
				recursive = *cfg.Defaults.Recursive
			}

			platform := guard.Detect()
			g := guard.New(platform, cfg.Protected.Add...)
			for _, p := range cfg.Protected.Remove {
				g.Remove(p)
			}

			store := storage.NewLocal()
			a.engine = fileops.New(store,
				fileops.WithGuard(g),
				fileops.WithLogger(logger),
			)
			a.searcher = search.New(store, search.WithPlatform(platform))
			a.resolver = pathres.New(
				pathres.WithCaseInsensitive(platform.CaseInsensitive),
				pathres.WithReadlink(linkerReadlink(store)),
			)
			return nil
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	pf.BoolVarP(&quiet, "quiet", "q", false, "errors only")
	pf.BoolVar(&showVersion, "version", false, "print version and exit")
	pf.BoolVar(&noProgress, "no-progress", false, "suppress the progress line")

	copyCmd := &cobra.Command{
		Use:   "copy <source> <destination>",
		Short: "Copy a file or directory tree",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, dst, err := a.resolvePair(args[0], args[1])
			if err != nil {
				return err
			}
			return a.withSignals(cmd, noProgress, func(ctx context.Context) error {
				if err := a.engine.Copy(ctx, src, dst, overwrite); err != nil {
					return err
				}
				if verifyFlag {
					return a.verify(ctx, src, dst)
				}
				return nil
			})
		},
	}
	copyCmd.Flags().BoolVarP(&overwrite, "overwrite", "f", false, "replace existing destination files")
	copyCmd.Flags().BoolVar(&verifyFlag, "verify", false, "hash-compare source and destination after copying")

	moveCmd := &cobra.Command{
		Use:   "move <source> <destination>",
		Short: "Move a file or directory tree",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, dst, err := a.resolvePair(args[0], args[1])
			if err != nil {
				return err
			}
			return a.withSignals(cmd, noProgress, func(ctx context.Context) error {
				return a.engine.Move(ctx, src, dst)
			})
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <path>",
		Short: "Delete a file or directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.resolver.Resolve(args[0])
			if err != nil {
				return err
			}
			return a.withSignals(cmd, true, func(ctx context.Context) error {
				return a.engine.Delete(ctx, p, recursive)
			})
		},
	}
	deleteCmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "delete non-empty directories")

	renameCmd := &cobra.Command{
		Use:   "rename <path> <new-name>",
		Short: "Rename a file or directory in place",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.resolver.Resolve(args[0])
			if err != nil {
				return err
			}
			return a.withSignals(cmd, true, func(ctx context.Context) error {
				return a.engine.Rename(ctx, p, args[1])
			})
		},
	}

	cleanupCmd := &cobra.Command{
		Use:   "cleanup <directory>",
		Short: "Remove orphaned temporary copy artifacts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.resolver.Resolve(args[0])
			if err != nil {
				return err
			}
			return a.withSignals(cmd, true, func(ctx context.Context) error {
				removed, err := a.engine.Cleanup(ctx, p, recursive)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %d temp artifact(s)\n", removed)
				return nil
			})
		},
	}
	cleanupCmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "scan subdirectories too")

	searchCmd := &cobra.Command{
		Use:   "search <root> <pattern>",
		Short: "Find entries matching a glob pattern",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := a.resolver.Resolve(args[0])
			if err != nil {
				return err
			}
			return a.withSignals(cmd, true, func(ctx context.Context) error {
				seq, err := a.searcher.Search(ctx, root, args[1])
				if err != nil {
					return err
				}
				for en, err := range seq {
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), en.Path)
				}
				return nil
			})
		},
	}

	resolveCmd := &cobra.Command{
		Use:   "resolve <path>",
		Short: "Print the canonical absolute form of a path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.resolver.Resolve(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), p)
			return nil
		},
	}

	rootCmd.AddCommand(copyCmd, moveCmd, deleteCmd, renameCmd, cleanupCmd, searchCmd, resolveCmd)

	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		return 1
	}
	return 0
}

// resolvePair canonicalizes a source/destination argument pair.
func (a *app) resolvePair(rawSrc, rawDst string) (string, string, error) {
	src, err := a.resolver.Resolve(rawSrc)
	if err != nil {
		return "", "", fmt.Errorf("source %s: %w", rawSrc, err)
	}
	dst, err := a.resolver.Resolve(rawDst)
	if err != nil {
		return "", "", fmt.Errorf("destination %s: %w", rawDst, err)
	}
	return src, dst, nil
}

// withSignals runs fn under SIGINT/SIGTERM cancellation, optionally
// printing a progress line, and sweeps registered temp files on the way
// out.
func (a *app) withSignals(cmd *cobra.Command, noProgress bool, fn func(context.Context) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer fileops.CleanupTmpFiles()

	var unsub func()
	if !noProgress {
		id := a.engine.Events().Subscribe(func(ev event.Event) {
			if ev.Type != event.OpProgress {
				return
			}
			fmt.Fprintf(os.Stderr, "\r%s / %s",
				stats.FormatBytes(ev.Bytes), stats.FormatBytes(ev.Total))
		})
		unsub = func() {
			a.engine.Events().Unsubscribe(id)
			fmt.Fprintln(os.Stderr)
		}
	}
	err := fn(ctx)
	if unsub != nil {
		unsub()
	}
	return err
}

// verify hash-compares src and dst after a copy and fails on divergence.
func (a *app) verify(ctx context.Context, src, dst string) error {
	result, err := a.engine.Verify(ctx, src, dst)
	if err != nil {
		return err
	}
	for _, mm := range result.Mismatches {
		slog.Error("verification mismatch", "path", mm.Path,
			"src", mm.SrcHash, "dst", mm.DstHash)
	}
	if result.Failed > 0 {
		return fmt.Errorf("verification failed for %d of %d file(s)",
			result.Failed, result.Failed+result.Verified)
	}
	slog.Info("verification passed", "files", result.Verified)
	return nil
}

// linkerReadlink adapts the storage Linker capability to the resolver's
// lookup function.
func linkerReadlink(store storage.Storage) pathres.ReadlinkFunc {
	if l, ok := store.(storage.Linker); ok {
		return l.Readlink
	}
	return func(string) (string, bool) { return "", false }
}
