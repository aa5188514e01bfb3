package lexer

import (
	"math/big"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ejrbuss/yoku-sub000/internal/source"
)

func tokenize(t *testing.T, text string) []Token {
	t.Helper()
	src := source.New("test", text)
	lex := New(src)
	var toks []Token
	for {
		tok := lex.Next()
		toks = append(toks, tok)
		if tok.Kind == EOF {
			break
		}
	}
	return toks
}

// kinds strips spans and raw values down to (Kind, Image) pairs so tests
// don't have to hand-compute byte offsets.
type kindImage struct {
	Kind  Kind
	Image string
}

func kindsOf(toks []Token) []kindImage {
	out := make([]kindImage, len(toks))
	for i, tok := range toks {
		out[i] = kindImage{tok.Kind, tok.Image}
	}
	return out
}

func TestLexerPunctuationAndOperators(t *testing.T) {
	toks := tokenize(t, "-> => ( ) { } , ; := === !==")
	got := kindsOf(toks)
	want := []kindImage{
		{Punc, "->"}, {Punc, "=>"}, {Punc, "("}, {Punc, ")"},
		{Punc, "{"}, {Punc, "}"}, {Punc, ","}, {Punc, ";"},
		{Punc, ":"}, {Op, "="}, {Op, "==="}, {Op, "!=="}, {EOF, ""},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestLexerKeywordsAndIdentifiers(t *testing.T) {
	toks := tokenize(t, "var const proc fooBar _ match")
	got := kindsOf(toks)
	want := []kindImage{
		{Keyword, "var"}, {Keyword, "const"}, {Keyword, "proc"},
		{Id, "fooBar"}, {Keyword, "_"}, {Keyword, "match"}, {EOF, ""},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestLexerNumericLiterals(t *testing.T) {
	toks := tokenize(t, "0 42 1_000 0b101 0o17 0x1F 3.14 2e10 1.5e-3")
	if len(toks) != 10 { // 9 literals + EOF
		t.Fatalf("expected 10 tokens, got %d: %v", len(toks), toks)
	}
	for _, tok := range toks[:9] {
		if tok.Kind != Lit {
			t.Errorf("token %q: expected Lit, got %s", tok.Image, tok.Kind)
		}
	}
	wantInts := []int64{0, 42, 1000}
	for i, want := range wantInts {
		bi, ok := toks[i].Value.(*big.Int)
		if !ok {
			t.Fatalf("token %d: expected *big.Int value, got %T", i, toks[i].Value)
		}
		if bi.Int64() != want {
			t.Errorf("token %d: got %s, want %d", i, bi.String(), want)
		}
	}
	if bi := toks[3].Value.(*big.Int); bi.Int64() != 5 {
		t.Errorf("0b101: got %s, want 5", bi.String())
	}
	if bi := toks[4].Value.(*big.Int); bi.Int64() != 15 {
		t.Errorf("0o17: got %s, want 15", bi.String())
	}
	if bi := toks[5].Value.(*big.Int); bi.Int64() != 31 {
		t.Errorf("0x1F: got %s, want 31", bi.String())
	}
	if f, ok := toks[6].Value.(float64); !ok || f != 3.14 {
		t.Errorf("3.14: got %v", toks[6].Value)
	}
}

func TestLexerStringEscapes(t *testing.T) {
	toks := tokenize(t, `"hi\n\t\"there\""`)
	if len(toks) != 2 {
		t.Fatalf("expected 2 tokens, got %d", len(toks))
	}
	if toks[0].Value.(string) != "hi\n\t\"there\"" {
		t.Errorf("got %q", toks[0].Value)
	}
}

func TestLexerNumericPrefixWithoutDigits(t *testing.T) {
	toks := tokenize(t, "0x")
	if toks[0].Kind != Error {
		t.Fatalf("expected an Error token, got %s", toks[0])
	}
	if toks[0].Note == "" {
		t.Errorf("expected the Error token to carry a note")
	}
}

func TestLexerUnknownCharacterContinues(t *testing.T) {
	toks := tokenize(t, "1 $ 2")
	got := kindsOf(toks)
	want := []kindImage{{Lit, "1"}, {Error, "$"}, {Lit, "2"}, {EOF, ""}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestLexerComments(t *testing.T) {
	toks := tokenize(t, "-- a line comment\n1 ---\nblock\ncomment\n--- 2")
	got := kindsOf(toks)
	if diff := cmp.Diff([]kindImage{{Lit, "1"}, {Lit, "2"}, {EOF, ""}}, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}
}
