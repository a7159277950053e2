package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mkerian10/pluto/internal/manifest"
	"github.com/mkerian10/pluto/pkg/pluto"
)

var checkStdlib string

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Run the static pipeline without emitting code",
	Long: `Check runs the full static pipeline over the program rooted at the
given entry file and reports every diagnostic, one per line.

When no file is given, the entry point is read from the nearest
pluto.toml manifest.

Examples:
  # Check a program
  plutoc check main.pluto

  # Check with an explicit stdlib directory
  plutoc check main.pluto --stdlib ./stdlib`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVar(&checkStdlib, "stdlib", "", "standard library directory")
}

func runCheck(_ *cobra.Command, args []string) error {
	entry, stdlib, err := resolveEntry(args, checkStdlib)
	if err != nil {
		return err
	}

	program, err := pluto.Compile(entry, pluto.Options{StdlibDir: stdlib})
	if err != nil {
		return err
	}
	if code := reportDiagnostics(program.Diagnostics); code != 0 {
		os.Exit(code)
	}

	fmt.Printf("%s: ok (%d declarations", entry, len(program.AST.Declarations))
	if program.Mono != nil && len(program.Mono.Instances) > 0 {
		fmt.Printf(", %d monomorphic instances", len(program.Mono.Instances))
	}
	fmt.Println(")")
	return nil
}

// resolveEntry picks the entry file and stdlib directory from the argument
// list, falling back to the nearest pluto.toml manifest.
func resolveEntry(args []string, stdlibFlag string) (entry, stdlib string, err error) {
	stdlib = stdlibFlag
	if len(args) == 1 {
		return args[0], stdlib, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", "", err
	}
	path := manifest.Find(wd)
	if path == "" {
		return "", "", fmt.Errorf("no entry file given and no %s found", manifest.FileName)
	}
	m, err := manifest.Load(path)
	if err != nil {
		return "", "", err
	}
	if m.Project.Entry == "" {
		return "", "", fmt.Errorf("%s has no project.entry", path)
	}
	if stdlib == "" {
		stdlib = m.Project.Stdlib
	}
	return m.Project.Entry, stdlib, nil
}
