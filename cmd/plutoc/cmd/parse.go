package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mkerian10/pluto/internal/errors"
	"github.com/mkerian10/pluto/internal/lexer"
	"github.com/mkerian10/pluto/internal/parser"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a single file and print its canonical AST",
	Long: `Parse lexes and parses one source file and prints the canonical
rendering of its AST. Re-parsing the output yields an equivalent tree,
which makes this useful for debugging the front end.`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func runParse(_ *cobra.Command, args []string) error {
	filename := args[0]
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	l := lexer.New(string(content))
	p := parser.New(l)
	program := p.ParseProgram()

	diags := &errors.List{}
	diags.AddLexErrors(filename, p.LexerErrors())
	for _, perr := range p.Errors() {
		diags.AddParseError(filename, perr.Pos, perr.Message, perr.Expected)
	}
	if code := reportDiagnostics(diags); code != 0 {
		os.Exit(code)
	}

	fmt.Print(program.String())
	return nil
}
