package lexer

import (
	"math/big"
	"sort"
	"strconv"
	"strings"

	"github.com/ejrbuss/yoku-sub000/internal/source"
)

// puncImages/opImages record the punctuation and operator lexemes from
// spec §4.2. Longest-match order is derived by sorting on image length,
// not hand-maintained, so adding a token never silently breaks ordering.
var puncImages = []string{
	"->", "=>", "(", ")", "[", "]", "{", "}", ",", ";", "@", ":",
}

var opImages = []string{
	"...", ".", "===", "!==", "==", "!=", "=", "<=", ">=",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "?=",
	"<", ">", "+", "-", "*", "/", "%", "^", "&", "|", "?", "!",
}

type tokenSpec struct {
	image string
	kind  Kind
}

var orderedTokens []tokenSpec

func init() {
	for _, img := range puncImages {
		orderedTokens = append(orderedTokens, tokenSpec{img, Punc})
	}
	for _, img := range opImages {
		orderedTokens = append(orderedTokens, tokenSpec{img, Op})
	}
	sort.SliceStable(orderedTokens, func(i, j int) bool {
		return len(orderedTokens[i].image) > len(orderedTokens[j].image)
	})
}

// Lexer scans a source.Source into tokens on demand.
type Lexer struct {
	src *source.Source
}

// New creates a Lexer over src.
func New(src *source.Source) *Lexer {
	return &Lexer{src: src}
}

func isDigit(ch byte) bool  { return ch >= '0' && ch <= '9' }
func isLetter(ch byte) bool { return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') }
func isIdentCont(ch byte) bool {
	return isLetter(ch) || isDigit(ch)
}

// Next scans and returns the next token, skipping whitespace and comments.
// At end of input it returns a Kind==EOF token.
func (l *Lexer) Next() Token {
	for {
		l.skipWhitespace()
		if l.skipComment() {
			continue
		}
		break
	}

	l.src.StartScan()
	if !l.src.HasMore() {
		return Token{Kind: EOF, Image: "", Span: l.src.GetSpan()}
	}

	ch := l.src.Peek()
	switch {
	case ch == '"':
		return l.scanString()
	case isDigit(ch):
		return l.scanNumber()
	case isLetter(ch):
		return l.scanIdentOrKeywordOrBool()
	default:
		return l.scanPunctOrOp()
	}
}

func (l *Lexer) skipWhitespace() {
	for l.src.HasMore() {
		switch l.src.Peek() {
		case ' ', '\n', '\r', '\v', '\f':
			l.src.Consume()
		default:
			return
		}
	}
}

// skipComment consumes one comment if present and reports whether it did.
func (l *Lexer) skipComment() bool {
	if !l.src.HasMore() {
		return false
	}
	cp := l.src.Checkpoint()
	if l.src.Match("---") {
		for l.src.HasMore() {
			if l.src.Match("---") {
				return true
			}
			l.src.Consume()
		}
		return true // unterminated block comment: consume to EOF
	}
	l.src.Restore(cp)
	if l.src.Match("--") {
		for l.src.HasMore() && l.src.Peek() != '\n' {
			l.src.Consume()
		}
		return true
	}
	return false
}

func (l *Lexer) scanPunctOrOp() Token {
	for _, spec := range orderedTokens {
		if l.src.Match(spec.image) {
			return Token{Kind: spec.kind, Image: l.src.GetScan(), Span: l.src.GetSpan()}
		}
	}
	ch := l.src.Consume()
	return Token{Kind: Error, Image: string(ch), Note: "unexpected character", Span: l.src.GetSpan()}
}

func (l *Lexer) scanIdentOrKeywordOrBool() Token {
	for l.src.HasMore() && isIdentCont(l.src.Peek()) {
		l.src.Consume()
	}
	image := l.src.GetScan()
	switch image {
	case "true":
		return Token{Kind: Lit, Image: image, Value: true, Span: l.src.GetSpan()}
	case "false":
		return Token{Kind: Lit, Image: image, Value: false, Span: l.src.GetSpan()}
	}
	if IsKeyword(image) {
		return Token{Kind: Keyword, Image: image, Span: l.src.GetSpan()}
	}
	return Token{Kind: Id, Image: image, Span: l.src.GetSpan()}
}

func (l *Lexer) scanNumber() Token {
	// Radix-prefixed integers: 0b, 0o, 0x, with '_' separators anywhere
	// in the digit run.
	if l.src.Peek() == '0' {
		switch l.src.PeekAt(1) {
		case 'b', 'B':
			return l.scanRadixInt(2, "01_")
		case 'o', 'O':
			return l.scanRadixInt(8, "01234567_")
		case 'x', 'X':
			return l.scanRadixInt(16, "0123456789abcdefABCDEF_")
		}
	}

	for l.src.HasMore() && (isDigit(l.src.Peek()) || l.src.Peek() == '_') {
		l.src.Consume()
	}

	isFloat := false
	if l.src.Peek() == '.' && isDigit(l.src.PeekAt(1)) {
		isFloat = true
		l.src.Consume()
		for l.src.HasMore() && (isDigit(l.src.Peek()) || l.src.Peek() == '_') {
			l.src.Consume()
		}
	}
	if l.src.Peek() == 'e' || l.src.Peek() == 'E' {
		next := 1
		if l.src.PeekAt(1) == '+' || l.src.PeekAt(1) == '-' {
			next = 2
		}
		if isDigit(l.src.PeekAt(next)) {
			isFloat = true
			l.src.Consume() // e/E
			if l.src.Peek() == '+' || l.src.Peek() == '-' {
				l.src.Consume()
			}
			for l.src.HasMore() && isDigit(l.src.Peek()) {
				l.src.Consume()
			}
		}
	}

	image := l.src.GetScan()
	clean := strings.ReplaceAll(image, "_", "")
	if isFloat {
		f, ok := parseFloat(clean)
		if !ok {
			return Token{Kind: Error, Image: image, Note: "invalid float literal", Span: l.src.GetSpan()}
		}
		return Token{Kind: Lit, Image: image, Value: f, Span: l.src.GetSpan()}
	}
	n := new(big.Int)
	if _, ok := n.SetString(clean, 10); !ok {
		return Token{Kind: Error, Image: image, Note: "invalid integer literal", Span: l.src.GetSpan()}
	}
	return Token{Kind: Lit, Image: image, Value: n, Span: l.src.GetSpan()}
}

func (l *Lexer) scanRadixInt(radix int, digits string) Token {
	l.src.Consume() // '0'
	l.src.Consume() // b/o/x
	digitsStart := l.src.GetSpan().End
	for l.src.HasMore() && strings.ContainsRune(digits, rune(l.src.Peek())) {
		l.src.Consume()
	}
	image := l.src.GetScan()
	if l.src.GetSpan().End == digitsStart {
		return Token{Kind: Error, Image: image, Note: "numeric prefix with no digits", Span: l.src.GetSpan()}
	}
	clean := strings.ReplaceAll(image[2:], "_", "")
	n := new(big.Int)
	if _, ok := n.SetString(clean, radix); !ok {
		return Token{Kind: Error, Image: image, Note: "invalid integer literal", Span: l.src.GetSpan()}
	}
	return Token{Kind: Lit, Image: image, Value: n, Span: l.src.GetSpan()}
}

func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

var escapeChars = map[byte]byte{
	'0': 0, 'b': '\b', 'r': '\r', 't': '\t', 'n': '\n',
	'\'': '\'', '"': '"', '\\': '\\',
}

func (l *Lexer) scanString() Token {
	l.src.Consume() // opening quote
	var sb strings.Builder
	for l.src.HasMore() && l.src.Peek() != '"' {
		ch := l.src.Consume()
		if ch == '\\' {
			if !l.src.HasMore() {
				return Token{Kind: Error, Image: l.src.GetScan(), Note: "unterminated string", Span: l.src.GetSpan()}
			}
			esc := l.src.Consume()
			mapped, ok := escapeChars[esc]
			if !ok {
				return Token{Kind: Error, Image: l.src.GetScan(), Note: "invalid escape sequence", Span: l.src.GetSpan()}
			}
			sb.WriteByte(mapped)
			continue
		}
		sb.WriteByte(ch)
	}
	if !l.src.HasMore() {
		return Token{Kind: Error, Image: l.src.GetScan(), Note: "unterminated string", Span: l.src.GetSpan()}
	}
	l.src.Consume() // closing quote
	return Token{Kind: Lit, Image: l.src.GetScan(), Value: sb.String(), Span: l.src.GetSpan()}
}
