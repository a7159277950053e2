package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/mkerian10/pluto/pkg/pluto"
)

var watchStdlib string

var watchCmd = &cobra.Command{
	Use:   "watch [file]",
	Short: "Re-run check whenever a source file changes",
	Long: `Watch monitors the entry file's directory tree and re-runs the static
pipeline on every change to a .pluto file. Diagnostics are printed after
each run; the process keeps running until interrupted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&watchStdlib, "stdlib", "", "standard library directory")
}

func runWatch(_ *cobra.Command, args []string) error {
	entry, stdlib, err := resolveEntry(args, watchStdlib)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	root := filepath.Dir(entry)
	if err := watchTree(watcher, root); err != nil {
		return err
	}

	checkOnce(entry, stdlib)

	// Editors fire bursts of events per save; debounce before re-checking.
	var pending <-chan time.Time
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
					_ = watchTree(watcher, event.Name)
				}
			}
			if !strings.HasSuffix(event.Name, ".pluto") {
				continue
			}
			pending = time.After(200 * time.Millisecond)
		case <-pending:
			pending = nil
			checkOnce(entry, stdlib)
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "watch error: %v\n", watchErr)
		}
	}
}

func watchTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}

func checkOnce(entry, stdlib string) {
	program, err := pluto.Compile(entry, pluto.Options{StdlibDir: stdlib})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return
	}
	for _, d := range program.Diagnostics.All() {
		fmt.Fprintln(os.Stderr, d.Line())
	}
	if program.Ok() {
		fmt.Printf("%s: ok\n", entry)
	}
}
