// Command cxref is the CLI entry point: it wires the config loader, the
// tree-sitter front end, the sqlite-backed stores, the file watcher, and
// the MCP daemon together behind urfave/cli subcommands, with a
// persistent root flag set, loadConfigWithOverrides, and signal-driven
// graceful shutdown.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/cxref/internal/config"
	"github.com/standardbeagle/cxref/internal/diag"
	"github.com/standardbeagle/cxref/internal/engine"
	"github.com/standardbeagle/cxref/internal/job"
	"github.com/standardbeagle/cxref/internal/kvstore"
	"github.com/standardbeagle/cxref/internal/mcpserver"
	"github.com/standardbeagle/cxref/internal/resource"
	"github.com/standardbeagle/cxref/internal/tsfront"
	"github.com/standardbeagle/cxref/internal/watch"
)

// loadConfigWithOverrides loads the project config and applies the root
// flag overrides that take precedence over the on-disk document.
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	root := c.String("root")
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root %q: %w", root, err)
	}

	cfg, err := config.Load(absRoot)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if include := c.StringSlice("include"); len(include) > 0 {
		cfg.Include = include
	}
	if exclude := c.StringSlice("exclude"); len(exclude) > 0 {
		cfg.Exclude = append(cfg.Exclude, exclude...)
	}
	if workers := c.Int("workers"); workers > 0 {
		cfg.WorkerCount = int64(workers)
	}
	return cfg, nil
}

// openEngine builds the engine facade plus its resource store, sharing
// the exact wiring every subcommand needs.
func openEngine(cfg *config.Config, notify func(id int)) (*engine.Engine, resource.Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create data dir %s: %w", cfg.DataDir, err)
	}

	resources, err := resource.NewFileStore(filepath.Join(cfg.DataDir, "resources"))
	if err != nil {
		return nil, nil, fmt.Errorf("open resource store: %w", err)
	}

	opener := kvstore.NewSQLiteOpener(filepath.Join(cfg.DataDir, "stores"))
	cache := tsfront.New()

	e := engine.New(cache, resources, opener, cfg.WorkerCount, notify)
	e.Start()
	return e, resources, nil
}

// recordResource persists a file's input and compile args so a later
// reindex can look them back up.
func recordResource(resources resource.Store, dir, input string, args []string) {
	fs, ok := resources.(*resource.FileStore)
	if !ok {
		return
	}
	if err := fs.Write(input, resource.KindInformation, input, args); err != nil {
		diag.Warn("cxref", "record resource for %s: %v", input, err)
	}
}

func main() {
	app := &cli.App{
		Name:    "cxref",
		Usage:   "C/C++ cross-reference indexer",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "project root directory",
				Value:   ".",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "include glob patterns (overrides config)",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "exclude glob patterns (appended to config)",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "worker pool size (overrides config)",
			},
		},
		Commands: []*cli.Command{
			indexCommand(),
			reindexCommand(),
			watchCommand(),
			serveCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "cxref:", err)
		os.Exit(1)
	}
}

func indexCommand() *cli.Command {
	return &cli.Command{
		Name:      "index",
		Usage:     "index one source file",
		ArgsUsage: "<file> [-- compiler args]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "force", Usage: "reparse even if cached"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("index requires a file argument")
			}
			cfg, err := loadConfigWithOverrides(c)
			if err != nil {
				return err
			}

			input, err := filepath.Abs(c.Args().First())
			if err != nil {
				return err
			}
			args := c.Args().Tail()

			done := make(chan struct{}, 1)
			e, resources, err := openEngine(cfg, func(id int) { done <- struct{}{} })
			if err != nil {
				return err
			}
			defer e.Stop()

			recordResource(resources, cfg.DataDir, input, args)

			mode := job.Normal
			if c.Bool("force") {
				mode = job.Force
			}
			id, err := e.Index(input, args, mode)
			if err != nil {
				return fmt.Errorf("index %s: %w", input, err)
			}
			<-done
			fmt.Printf("indexed %s (job %d)\n", input, id)
			return nil
		},
	}
}

func reindexCommand() *cli.Command {
	return &cli.Command{
		Name:      "reindex",
		Usage:     "reindex a previously indexed file using its stored compiler args",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "force", Usage: "reparse even if cached"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("reindex requires a file argument")
			}
			cfg, err := loadConfigWithOverrides(c)
			if err != nil {
				return err
			}

			filename, err := filepath.Abs(c.Args().First())
			if err != nil {
				return err
			}

			done := make(chan struct{}, 1)
			e, _, err := openEngine(cfg, func(id int) { done <- struct{}{} })
			if err != nil {
				return err
			}
			defer e.Stop()

			mode := job.Normal
			if c.Bool("force") {
				mode = job.Force
			}
			id, err := e.Reindex(filename, mode)
			if err != nil {
				return fmt.Errorf("reindex %s: %w", filename, err)
			}
			<-done
			fmt.Printf("reindexed %s (job %d)\n", filename, id)
			return nil
		},
	}
}

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "watch the project root and reindex files as they change",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfigWithOverrides(c)
			if err != nil {
				return err
			}

			e, resources, err := openEngine(cfg, func(id int) { diag.Trace("cxref", "job %d complete", id) })
			if err != nil {
				return err
			}
			defer e.Stop()

			indexer := &watchIndexer{engine: e, resources: resources, dataDir: cfg.DataDir}
			w, err := watch.New(cfg.Root, cfg.Include, cfg.Exclude,
				time.Duration(cfg.WatchDebounceMs)*time.Millisecond, indexer)
			if err != nil {
				return fmt.Errorf("start watcher: %w", err)
			}
			if err := w.Start(); err != nil {
				return fmt.Errorf("start watcher: %w", err)
			}
			defer w.Stop()

			fmt.Printf("watching %s (ctrl-c to stop)\n", cfg.Root)
			waitForSignal()
			e.Flush()
			return nil
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "serve the index over the Model Context Protocol (stdio)",
		Action: func(c *cli.Context) error {
			diag.SetQuiet(true)

			cfg, err := loadConfigWithOverrides(c)
			if err != nil {
				return err
			}

			e, _, err := openEngine(cfg, nil)
			if err != nil {
				return err
			}
			defer e.Stop()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sigCh
				cancel()
			}()

			srv := mcpserver.New(e)
			return srv.Run(ctx)
		},
	}
}

func waitForSignal() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
}

// watchIndexer adapts the engine facade to watch.Indexer, recording a
// resource entry on fresh indexing so later reindexes of the same file
// can look its compile args back up.
type watchIndexer struct {
	engine    *engine.Engine
	resources resource.Store
	dataDir   string
}

func (w *watchIndexer) Index(input string, args []string, mode job.Mode) (int, error) {
	recordResource(w.resources, w.dataDir, input, args)
	return w.engine.Index(input, args, mode)
}

func (w *watchIndexer) Reindex(filename string, mode job.Mode) (int, error) {
	return w.engine.Reindex(filename, mode)
}
