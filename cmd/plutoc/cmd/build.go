package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mkerian10/pluto/internal/manifest"
	"github.com/mkerian10/pluto/pkg/pluto"
)

var (
	buildOutput string
	buildStdlib string
)

var buildCmd = &cobra.Command{
	Use:   "build [file]",
	Short: "Compile a Pluto program",
	Long: `Build runs the static pipeline and hands the validated typed program
to the native backend. The backend invocation is delegated; build writes
the lowering manifest (declarations, DI order, monomorphic instances)
next to the entry file so the backend can pick it up.

Examples:
  # Build a program
  plutoc build main.pluto

  # Build with a custom output path
  plutoc build main.pluto -o ./bin/service`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "output path (default: <entry>.plan)")
	buildCmd.Flags().StringVar(&buildStdlib, "stdlib", "", "standard library directory")
}

func runBuild(_ *cobra.Command, args []string) error {
	entry, stdlib, err := resolveEntry(args, buildStdlib)
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

	output := buildOutput
	if output == "" {
		if wd, wderr := os.Getwd(); wderr == nil {
			if path := manifest.Find(wd); path != "" {
				if m, merr := manifest.Load(path); merr == nil {
					output = m.Project.Output
				}
			}
		}
	}
	if output == "" {
		output = strings.TrimSuffix(entry, ".pluto") + ".plan"
	}

	if err := os.WriteFile(output, []byte(loweringPlan(program)), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	fmt.Printf("%s: wrote lowering plan to %s\n", entry, output)
	return nil
}

// loweringPlan renders the artifact handed to the delegated backend: the
// validated declaration list, the DI construction order, and the closed
// set of monomorphic instances.
func loweringPlan(program *pluto.Program) string {
	var sb strings.Builder

	sb.WriteString("declarations:\n")
	for _, decl := range program.AST.Declarations {
		fmt.Fprintf(&sb, "  %s\n", decl.QualifiedName())
	}

	if program.DI != nil && len(program.DI.Order) > 0 {
		sb.WriteString("di-order:\n")
		for _, name := range program.DI.Order {
			fmt.Fprintf(&sb, "  %s\n", name)
		}
	}

	if program.Mono != nil && len(program.Mono.Instances) > 0 {
		sb.WriteString("instances:\n")
		for _, inst := range program.Mono.Instances {
			fmt.Fprintf(&sb, "  %s\n", inst.Mangled)
		}
	}
	return sb.String()
}
