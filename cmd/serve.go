package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mdserve/mdserve/internal/archive"
	"github.com/mdserve/mdserve/internal/config"
	"github.com/mdserve/mdserve/internal/logging"
	"github.com/mdserve/mdserve/internal/server"
	"github.com/mdserve/mdserve/internal/vfs"
	"github.com/mdserve/mdserve/internal/watcher"
)

var serveCmd = &cobra.Command{
	Use:   "serve <path>",
	Short: "Start the document server",
	Long: `Start the document server over a markdown file, a directory tree, or a
zip container. The source type is detected from the path: directories get a
recursive tree with live reload, ` + archive.ContainerExt + ` files are opened as containers
(prompting for a password when entries are encrypted), anything else is
served as a single document.

Examples:
  mdserve serve docs/
  mdserve serve README.md
  mdserve serve handbook.zip`,
	Args: cobra.ExactArgs(1),
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	bindServerFlags(serveCmd.Flags())
	bindDocumentFlags(serveCmd.Flags())
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	cfg.TargetPath = args[0]

	logger := newLogger()

	backend, cleanup, err := openBackend(cfg, logger)
	if err != nil {
		return err
	}
	// cleanup is one-shot and idempotent; it runs on interrupt, terminate,
	// and normal exit, whichever comes first.
	defer cleanup()

	srv := server.New(cfg, backend, logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if root, ok := diskRoot(backend); ok {
		fw, err := newDocumentWatcher(root, cfg, srv, logger)
		if err != nil {
			logger.Warn(ctx, err, "live reload disabled")
		} else {
			fw.Start(ctx)
			defer fw.Stop()
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn(shutdownCtx, err, "server shutdown")
		}
		cleanup()
		cancel()
	}()

	fmt.Printf("Serving %s at http://%s:%d\n", cfg.TargetPath, cfg.Server.Host, cfg.Server.Port)
	return srv.Start(ctx)
}

// openBackend selects and constructs the backend variant for the target
// path. The returned cleanup handle is always non-nil and idempotent.
func openBackend(cfg *config.Config, logger logging.Logger) (vfs.Backend, func(), error) {
	path := cfg.TargetPath

	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("input path: %w", err)
	}

	switch {
	case info.IsDir():
		backend, err := vfs.NewDisk(path, cfg.Documents.IgnoreFile)
		if err != nil {
			return nil, nil, err
		}
		return backend, func() { backend.Close() }, nil

	case strings.EqualFold(filepath.Ext(path), archive.ContainerExt):
		backend, cleanup, err := archive.Open(path, archive.OpenOptions{
			CacheBudget:   cfg.Cache.BudgetBytes,
			PrecacheNames: cfg.Documents.PrecacheNames,
			Prompt:        archive.TerminalPrompt,
			Logger:        logger,
		})
		if err != nil {
			return nil, nil, err
		}
		return backend, cleanup, nil

	default:
		backend, err := vfs.NewSingleFile(path)
		if err != nil {
			return nil, nil, err
		}
		return backend, func() { backend.Close() }, nil
	}
}

// diskRoot reports the watchable root when the backend serves a directory.
func diskRoot(backend vfs.Backend) (string, bool) {
	if d, ok := backend.(*vfs.DiskBackend); ok {
		return d.Root(), true
	}
	return "", false
}

func newDocumentWatcher(root string, cfg *config.Config, srv *server.Server, logger logging.Logger) (*watcher.FileWatcher, error) {
	fw, err := watcher.NewFileWatcher(200*time.Millisecond, logger)
	if err != nil {
		return nil, err
	}
	fw.AddFilter(watcher.NoHiddenFilter)
	fw.AddFilter(watcher.DocumentFilter(cfg.Documents.Pattern))
	fw.AddHandler(func(events []watcher.ChangeEvent) {
		srv.NotifyReload()
	})
	if err := fw.AddRecursive(root); err != nil {
		fw.Stop()
		return nil, err
	}
	return fw, nil
}
