package parser

import (
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/mkerian10/pluto/internal/lexer"
)

// TestCanonicalRenderingSnapshots pins the canonical AST rendering of
// representative programs so printer changes are reviewed deliberately.
func TestCanonicalRenderingSnapshots(t *testing.T) {
	programs := []struct {
		name  string
		input string
	}{
		{
			name: "service_with_di",
			input: strings.Join([]string{
				"class Logger {",
				"  fn info(self, msg: string) {",
				"    print(msg)",
				"  }",
				"}",
				"",
				"class Service uses Logger [repo: Repo] {",
				"  fn handle(self, key: string) string? {",
				"    logger.info(\"handling {key}\")",
				"    return none",
				"  }",
				"}",
			}, "\n"),
		},
		{
			name: "enums_and_matching",
			input: strings.Join([]string{
				"enum Status {",
				"  Active",
				"  Suspended { until: int }",
				"}",
				"",
				"fn describe(s: Status) string {",
				"  return match s {",
				"    Status.Active => \"active\"",
				"    Status.Suspended { until } => \"until {until}\"",
				"  }",
				"}",
			}, "\n"),
		},
		{
			name: "errors_and_propagation",
			input: strings.Join([]string{
				"error NotFound {",
				"  key: string",
				"}",
				"",
				"fn lookup(key: string) int {",
				"  raise NotFound { key: key }",
				"}",
				"",
				"fn total(key: string) int {",
				"  let v = lookup(key)! \"resolving total\"",
				"  return v",
				"}",
			}, "\n"),
		},
	}

	for _, tt := range programs {
		t.Run(tt.name, func(t *testing.T) {
			p := New(lexer.New(tt.input))
			program := p.ParseProgram()
			checkParserErrors(t, p)
			snaps.MatchSnapshot(t, program.String())
		})
	}
}
