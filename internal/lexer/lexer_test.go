package lexer

import "testing"

func TestPunctuationAndOperators(t *testing.T) {
	input := `= == ! != < <= > >= && || ?? ? + - * / % += -= *= /= -> => | . , : ;`

	expected := []TokenType{
		ASSIGN, EQ, BANG, NOT_EQ, LESS, LESS_EQ, GREATER, GREATER_EQ,
		AND, OR, QUESTION_QUESTION, QUESTION,
		PLUS, MINUS, ASTERISK, SLASH, PERCENT,
		PLUS_ASSIGN, MINUS_ASSIGN, ASTERISK_ASSIGN, SLASH_ASSIGN,
		ARROW, FAT_ARROW, PIPE, DOT, COMMA, COLON, SEMICOLON, EOF,
	}

	l := New(input)
	for i, want := range expected {
		tok := l.NextToken()
		if tok.Type != want {
			t.Fatalf("token %d: got %s (%q), want %s", i, tok.Type, tok.Literal, want)
		}
	}
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	tests := []struct {
		input string
		want  TokenType
	}{
		{"fn", FN},
		{"class", CLASS},
		{"trait", TRAIT},
		{"enum", ENUM},
		{"error", ERROR},
		{"impl", IMPL},
		{"import", IMPORT},
		{"pub", PUB},
		{"app", APP},
		{"ambient", AMBIENT},
		{"uses", USES},
		{"let", LET},
		{"mut", MUT},
		{"match", MATCH},
		{"raise", RAISE},
		{"catch", CATCH},
		{"none", NONE},
		{"self", SELF},
		{"Self", SELF_TYPE},
		{"int", INT_TYPE},
		{"string", STRING_TYPE},
		{"myVar", IDENT},
		{"Logger", IDENT},
		{"_", IDENT},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			l := New(tt.input)
			tok := l.NextToken()
			if tok.Type != tt.want {
				t.Errorf("got %s, want %s", tok.Type, tt.want)
			}
			if tok.Literal != tt.input {
				t.Errorf("literal = %q, want %q", tok.Literal, tt.input)
			}
		})
	}
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		input   string
		want    TokenType
		literal string
	}{
		{"0", INT, "0"},
		{"123", INT, "123"},
		{"1_000", INT, "1000"},
		{"1.5", FLOAT, "1.5"},
		{"1.5e10", FLOAT, "1.5e10"},
		{"2e-3", FLOAT, "2e-3"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			l := New(tt.input)
			tok := l.NextToken()
			if tok.Type != tt.want || tok.Literal != tt.literal {
				t.Errorf("got %s(%q), want %s(%q)", tok.Type, tok.Literal, tt.want, tt.literal)
			}
		})
	}
}

func TestMethodCallOnIntLiteral(t *testing.T) {
	l := New("1.to_string()")
	want := []TokenType{INT, DOT, IDENT, LPAREN, RPAREN, EOF}
	for i, w := range want {
		tok := l.NextToken()
		if tok.Type != w {
			t.Fatalf("token %d: got %s, want %s", i, tok.Type, w)
		}
	}
}

func TestPlainString(t *testing.T) {
	l := New(`"hello\nworld"`)
	tok := l.NextToken()
	if tok.Type != STRING {
		t.Fatalf("got %s, want STRING", tok.Type)
	}
	if tok.Literal != "hello\nworld" {
		t.Errorf("literal = %q", tok.Literal)
	}
	if len(l.Errors()) != 0 {
		t.Errorf("unexpected errors: %v", l.Errors())
	}
}

func TestInterpolatedStringCompoundSequence(t *testing.T) {
	l := New(`"a{x}b"`)
	want := []struct {
		typ     TokenType
		literal string
	}{
		{STRING_START, `"`},
		{STRING_SEGMENT, "a"},
		{LBRACE, "{"},
		{IDENT, "x"},
		{RBRACE, "}"},
		{STRING_SEGMENT, "b"},
		{STRING_END, `"`},
		{EOF, ""},
	}
	for i, w := range want {
		tok := l.NextToken()
		if tok.Type != w.typ {
			t.Fatalf("token %d: got %s(%q), want %s", i, tok.Type, tok.Literal, w.typ)
		}
		if tok.Literal != w.literal {
			t.Errorf("token %d: literal = %q, want %q", i, tok.Literal, w.literal)
		}
	}
}

func TestNestedInterpolation(t *testing.T) {
	l := New(`"x{f("inner")}y"`)
	want := []TokenType{
		STRING_START, STRING_SEGMENT, LBRACE, IDENT, LPAREN, STRING, RPAREN,
		RBRACE, STRING_SEGMENT, STRING_END, EOF,
	}
	for i, w := range want {
		tok := l.NextToken()
		if tok.Type != w {
			t.Fatalf("token %d: got %s(%q), want %s", i, tok.Type, tok.Literal, w)
		}
	}
	if len(l.Errors()) != 0 {
		t.Errorf("unexpected errors: %v", l.Errors())
	}
}

func TestByteLiteral(t *testing.T) {
	tests := []struct {
		input string
		value string
	}{
		{"'a'", "a"},
		{`'\n'`, "\n"},
		{`'\\'`, `\`},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			l := New(tt.input)
			tok := l.NextToken()
			if tok.Type != BYTE {
				t.Fatalf("got %s, want BYTE", tok.Type)
			}
			if tok.Literal != tt.value {
				t.Errorf("literal = %q, want %q", tok.Literal, tt.value)
			}
		})
	}
}

func TestNewlineTerminatesStatements(t *testing.T) {
	l := New("let x = 1\nlet y = 2")
	var kinds []TokenType
	for {
		tok := l.NextToken()
		kinds = append(kinds, tok.Type)
		if tok.Type == EOF {
			break
		}
	}
	want := []TokenType{LET, IDENT, ASSIGN, INT, NEWLINE, LET, IDENT, ASSIGN, INT, EOF}
	if len(kinds) != len(want) {
		t.Fatalf("got %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("token %d: got %s, want %s", i, kinds[i], want[i])
		}
	}
}

func TestNewlineInsideBracketsIsWhitespace(t *testing.T) {
	l := New("f(\n  1,\n  2\n)")
	for {
		tok := l.NextToken()
		if tok.Type == NEWLINE {
			t.Fatal("NEWLINE token emitted inside parentheses")
		}
		if tok.Type == EOF {
			break
		}
	}
}

func TestNewlineAfterOperatorIsWhitespace(t *testing.T) {
	l := New("1 +\n2")
	want := []TokenType{INT, PLUS, INT, EOF}
	for i, w := range want {
		tok := l.NextToken()
		if tok.Type != w {
			t.Fatalf("token %d: got %s, want %s", i, tok.Type, w)
		}
	}
}

func TestLineComments(t *testing.T) {
	l := New("let x = 1 // trailing\n// full line\nlet y = 2")
	var kinds []TokenType
	for {
		tok := l.NextToken()
		kinds = append(kinds, tok.Type)
		if tok.Type == EOF {
			break
		}
	}
	want := []TokenType{LET, IDENT, ASSIGN, INT, NEWLINE, LET, IDENT, ASSIGN, INT, EOF}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("token %d: got %s, want %s", i, kinds[i], want[i])
		}
	}
}

func TestLexErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  ErrorKind
	}{
		{"unterminated string", `"abc`, ErrUnterminatedString},
		{"invalid escape", `"a\qb"`, ErrInvalidEscape},
		{"unterminated byte", "'a", ErrInvalidByteLiteral},
		{"unexpected char", "let x = @", ErrUnexpectedChar},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(tt.input)
			for {
				if tok := l.NextToken(); tok.Type == EOF {
					break
				}
			}
			if len(l.Errors()) == 0 {
				t.Fatal("expected a lexer error")
			}
			found := false
			for _, e := range l.Errors() {
				if e.Kind == tt.kind {
					found = true
				}
			}
			if !found {
				t.Errorf("errors = %v, want kind %s", l.Errors(), tt.kind)
			}
		})
	}
}

func TestPositions(t *testing.T) {
	l := New("let x = 1\nlet y = 2")
	tok := l.NextToken() // let
	if tok.Pos.Line != 1 || tok.Pos.Column != 1 {
		t.Errorf("first token at %d:%d, want 1:1", tok.Pos.Line, tok.Pos.Column)
	}

	for tok.Type != NEWLINE {
		tok = l.NextToken()
	}
	tok = l.NextToken() // let on line 2
	if tok.Pos.Line != 2 || tok.Pos.Column != 1 {
		t.Errorf("second let at %d:%d, want 2:1", tok.Pos.Line, tok.Pos.Column)
	}
	if tok.Pos.Offset != 10 {
		t.Errorf("second let offset = %d, want 10", tok.Pos.Offset)
	}
}
