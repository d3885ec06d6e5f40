package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// watchDebounce coalesces bursts of write events from editors.
const watchDebounce = 100 * time.Millisecond

// ExpandOptions holds options for the expand command.
type ExpandOptions struct {
	OutDir string
	Watch  bool
}

// NewExpandCommand creates the expand command.
func NewExpandCommand() *cobra.Command {
	opts := &ExpandOptions{}

	cmd := &cobra.Command{
		Use:   "expand [files...]",
		Short: "Expand macros in SQL files",
		Long: `Expand @MACRO(...) calls in SQL files and print the result.

With no files, or "-", SQL is read from stdin. Files are expanded
concurrently (see --jobs); a failing file aborts the run and nothing is
written for it.`,
		Example: `  leapmacro expand models/orders.sql
  echo "SELECT @STAR(orders) FROM orders" | leapmacro expand --schema schema.yaml
  leapmacro expand --out-dir build models/*.sql --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExpand(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.OutDir, "out-dir", "d", "", "Write expanded files to this directory instead of stdout")
	cmd.Flags().BoolVar(&opts.Watch, "watch", false, "Re-expand files when they change")

	return cmd
}

func runExpand(cmd *cobra.Command, files []string, opts *ExpandOptions) error {
	ctx := cmd.Context()
	fromStdin := len(files) == 0 || (len(files) == 1 && files[0] == "-")
	if fromStdin && opts.Watch {
		return errors.New("--watch requires at least one file")
	}

	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if fromStdin {
		input, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		out, err := cc.Renderer.Render(ctx, string(input))
		if err != nil {
			return err
		}
		_, err = io.WriteString(cmd.OutOrStdout(), out)
		return err
	}

	outputs, err := expandFiles(ctx, cc, files, cc.Cfg.Jobs)
	if err != nil {
		return err
	}
	for i, path := range files {
		if err := emit(cmd.OutOrStdout(), path, outputs[i], opts.OutDir, len(files) > 1); err != nil {
			return err
		}
	}

	if !opts.Watch {
		return nil
	}
	return watchFiles(ctx, cmd.OutOrStdout(), cc, files, opts)
}

// expandFiles expands files concurrently. Outputs are in input order.
func expandFiles(ctx context.Context, cc *CommandContext, files []string, jobs int) ([]string, error) {
	outputs := make([]string, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, path := range files {
		g.Go(func() error {
			out, err := expandFile(gctx, cc, path)
			if err != nil {
				return err
			}
			outputs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outputs, nil
}

func expandFile(ctx context.Context, cc *CommandContext, path string) (string, error) {
	content, err := os.ReadFile(path) //nolint:gosec // G304: path is a user-supplied input file
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	out, err := cc.Renderer.Render(ctx, string(content))
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	cc.Logger.Debug("expanded file", "file", path)
	return out, nil
}

// emit writes one expanded file to outDir, or to w with an optional header.
func emit(w io.Writer, path, out, outDir string, header bool) error {
	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		dest := filepath.Join(outDir, filepath.Base(path))
		if err := os.WriteFile(dest, []byte(out), 0o600); err != nil {
			return fmt.Errorf("failed to write %s: %w", dest, err)
		}
		return nil
	}

	if header {
		if _, err := fmt.Fprintf(w, "-- %s\n", path); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, out)
	return err
}

// watchFiles re-expands files as they change until ctx is cancelled.
// Errors are logged and do not stop the watch.
func watchFiles(ctx context.Context, w io.Writer, cc *CommandContext, files []string, opts *ExpandOptions) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	// Watch parent directories: editors often replace files rather than write them.
	targets := make(map[string]string, len(files))
	dirs := make(map[string]bool)
	for _, path := range files {
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		targets[abs] = path
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	cc.Logger.Info("watching for changes", "files", len(files))

	pending := make(map[string]bool)
	debounce := time.NewTimer(watchDebounce)
	debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}
			if path, ok := targets[abs]; ok {
				pending[path] = true
				debounce.Reset(watchDebounce)
			}

		case <-debounce.C:
			changed := make([]string, 0, len(pending))
			for path := range pending {
				changed = append(changed, path)
			}
			sort.Strings(changed)
			pending = make(map[string]bool)

			for _, path := range changed {
				out, err := expandFile(ctx, cc, path)
				if err != nil {
					cc.Logger.Error("expand failed", "file", path, "error", err)
					continue
				}
				if err := emit(w, path, out, opts.OutDir, true); err != nil {
					cc.Logger.Error("write failed", "file", path, "error", err)
					continue
				}
				cc.Logger.Info("re-expanded", "file", path)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			cc.Logger.Error("watcher error", "error", err)
		}
	}
}
