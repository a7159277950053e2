package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mkerian10/pluto/internal/errors"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "plutoc",
	Short: "Pluto whole-program compiler",
	Long: `plutoc is the whole-program compiler for the Pluto language.

Pluto is a statically-typed class-and-trait language for distributed
services, with monomorphized generics, whole-program error inference,
nullable types with ? propagation, and a language-level dependency
injection graph rooted at an app declaration.

plutoc runs the full static pipeline (lex, parse, module resolution,
ambient desugaring, type checking, error inference, mutability, DI
validation, monomorphization, exhaustiveness) and delegates native
emission to the backend toolchain.`,
	Version: Version,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
}

// kindBits maps diagnostic taxonomy families to exit-code bits.
var kindBits = map[string]int{
	"LexError":        1 << 0,
	"ParseError":      1 << 1,
	"ModuleError":     1 << 2,
	"TypeError":       1 << 3,
	"DIError":         1 << 4,
	"MutabilityError": 1 << 5,
	"ErrorHandling":   1 << 6,
	"MatchError":      1 << 7,
}

// reportDiagnostics prints every diagnostic, one per line, and returns the
// process exit code with one bit set per diagnostic family observed.
// InternalError and unclassified families share the MatchError bit.
func reportDiagnostics(diags *errors.List) int {
	code := 0
	for _, d := range diags.All() {
		fmt.Fprintln(os.Stderr, d.Line())
		if d.Severity != errors.SeverityError {
			continue
		}
		family, _, _ := strings.Cut(d.Kind, "::")
		if bit, ok := kindBits[family]; ok {
			code |= bit
		} else {
			code |= 1 << 7 // InternalError and anything unclassified
		}
	}
	if code == 0 && diags.HasErrors() {
		code = 1
	}
	return code
}
