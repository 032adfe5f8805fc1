package lexer

import (
	"testing"

	"ripple/internal/token"
)

type expectTok struct {
	typ token.Type
	lit string
}

func checkTokens(t *testing.T, input string, tests []expectTok) {
	t.Helper()
	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.typ {
			t.Fatalf("tests[%d] - wrong type. expected=%q got=%q (lit=%q line=%d col=%d)",
				i, tt.typ, tok.Type, tok.Literal, tok.Line, tok.Col)
		}
		if tok.Literal != tt.lit {
			t.Fatalf("tests[%d] - wrong literal. expected=%q got=%q (type=%q line=%d col=%d)",
				i, tt.lit, tok.Literal, tok.Type, tok.Line, tok.Col)
		}
	}
}

func TestLexer_CallbackModule(t *testing.T) {
	input := `import gfx.util as u

func KeyDown(key, repeat) {
  if (key == "space" and not repeat) {
    jump = jump + 1
  }
}`

	checkTokens(t, input, []expectTok{
		{token.IMPORT, "import"},
		{token.IDENT, "gfx"},
		{token.DOT, "."},
		{token.IDENT, "util"},
		{token.AS, "as"},
		{token.IDENT, "u"},
		{token.NEWLINE, "\n"},
		{token.NEWLINE, "\n"},

		{token.FUNC, "func"},
		{token.IDENT, "KeyDown"},
		{token.LPAREN, "("},
		{token.IDENT, "key"},
		{token.COMMA, ","},
		{token.IDENT, "repeat"},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.NEWLINE, "\n"},

		{token.IF, "if"},
		{token.LPAREN, "("},
		{token.IDENT, "key"},
		{token.EQ, "=="},
		{token.STRING, "space"},
		{token.AND, "and"},
		{token.NOT, "not"},
		{token.IDENT, "repeat"},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.NEWLINE, "\n"},

		{token.IDENT, "jump"},
		{token.ASSIGN, "="},
		{token.IDENT, "jump"},
		{token.PLUS, "+"},
		{token.INT, "1"},
		{token.NEWLINE, "\n"},

		{token.RBRACE, "}"},
		{token.NEWLINE, "\n"},
		{token.RBRACE, "}"},
		{token.EOF, ""},
	})
}

func TestLexer_Operators(t *testing.T) {
	checkTokens(t, "a <= b >= c != d < e > f % g / h * i - j", []expectTok{
		{token.IDENT, "a"},
		{token.LE, "<="},
		{token.IDENT, "b"},
		{token.GE, ">="},
		{token.IDENT, "c"},
		{token.NE, "!="},
		{token.IDENT, "d"},
		{token.LT, "<"},
		{token.IDENT, "e"},
		{token.GT, ">"},
		{token.IDENT, "f"},
		{token.PERCENT, "%"},
		{token.IDENT, "g"},
		{token.SLASH, "/"},
		{token.IDENT, "h"},
		{token.STAR, "*"},
		{token.IDENT, "i"},
		{token.MINUS, "-"},
		{token.IDENT, "j"},
		{token.EOF, ""},
	})
}

func TestLexer_TryCatchThrow(t *testing.T) {
	checkTokens(t, "try { throw \"x\" } catch (e) { nil }", []expectTok{
		{token.TRY, "try"},
		{token.LBRACE, "{"},
		{token.THROW, "throw"},
		{token.STRING, "x"},
		{token.RBRACE, "}"},
		{token.CATCH, "catch"},
		{token.LPAREN, "("},
		{token.IDENT, "e"},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.NIL, "nil"},
		{token.RBRACE, "}"},
		{token.EOF, ""},
	})
}

func TestLexer_NumbersAndBrackets(t *testing.T) {
	checkTokens(t, "xs = [1, 2.5]; xs[0]", []expectTok{
		{token.IDENT, "xs"},
		{token.ASSIGN, "="},
		{token.LBRACKET, "["},
		{token.INT, "1"},
		{token.COMMA, ","},
		{token.FLOAT, "2.5"},
		{token.RBRACKET, "]"},
		{token.SEMICOLON, ";"},
		{token.IDENT, "xs"},
		{token.LBRACKET, "["},
		{token.INT, "0"},
		{token.RBRACKET, "]"},
		{token.EOF, ""},
	})
}

func TestLexer_CommentsAreSkipped(t *testing.T) {
	input := "a // trailing\n/* block\nspanning */ b"
	checkTokens(t, input, []expectTok{
		{token.IDENT, "a"},
		{token.NEWLINE, "\n"},
		{token.IDENT, "b"},
		{token.EOF, ""},
	})
}

func TestLexer_StringEscapes(t *testing.T) {
	checkTokens(t, `"a\"b\\c\nd\te\q"`, []expectTok{
		{token.STRING, "a\"b\\c\nd\te\\q"},
		{token.EOF, ""},
	})
}

func TestLexer_UnterminatedString(t *testing.T) {
	l := New("\"abc\nx")
	tok := l.NextToken()
	if tok.Type != token.ILLEGAL {
		t.Fatalf("expected ILLEGAL, got %q", tok.Type)
	}
}

func TestLexer_Positions(t *testing.T) {
	l := New("a\n  bb\n")

	a := l.NextToken()
	if a.Line != 1 || a.Col != 1 {
		t.Fatalf("a at %d:%d", a.Line, a.Col)
	}
	nl := l.NextToken()
	if nl.Type != token.NEWLINE || nl.Line != 1 || nl.Col != 2 {
		t.Fatalf("newline at %d:%d (%q)", nl.Line, nl.Col, nl.Type)
	}
	bb := l.NextToken()
	if bb.Line != 2 || bb.Col != 3 {
		t.Fatalf("bb at %d:%d", bb.Line, bb.Col)
	}
}

func TestLexer_NumberForms(t *testing.T) {
	checkTokens(t, "0xFF 1_000 1e-3 2.5E+2 0b1.x 7ab", []expectTok{
		{token.INT, "0xFF"},
		{token.INT, "1_000"},
		{token.FLOAT, "1e-3"},
		{token.FLOAT, "2.5E+2"},
		{token.INT, "0b1"},
		{token.DOT, "."},
		{token.IDENT, "x"},
		{token.INT, "7ab"},
		{token.EOF, ""},
	})
}
