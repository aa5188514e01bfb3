// Package lexer turns normalized source text into a token stream.
package lexer

import (
	"fmt"

	"github.com/ejrbuss/yoku-sub000/internal/source"
)

// Kind classifies a Token.
type Kind int

const (
	Punc Kind = iota
	Op
	Keyword
	Id
	Lit
	Error
	EOF
)

func (k Kind) String() string {
	switch k {
	case Punc:
		return "Punc"
	case Op:
		return "Op"
	case Keyword:
		return "Keyword"
	case Id:
		return "Id"
	case Lit:
		return "Lit"
	case Error:
		return "Error"
	case EOF:
		return "EOF"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Token is one lexeme: its kind, exact source image, an optional literal
// value (Lit only), an optional diagnostic note (Error only), and its span.
type Token struct {
	Kind  Kind
	Image string
	Value interface{} // bool | *big.Int | float64 | string, Lit tokens only
	Note  string      // Error tokens only
	Span  source.Span
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)", t.Kind, t.Image)
}

// keywords is the reserved-word set from spec §4.2. Reserved words never
// bind as identifiers, whether or not the parser currently accepts them in
// a production.
var keywords = map[string]bool{
	"import": true, "export": true, "module": true, "as": true,
	"var": true, "const": true, "proc": true, "struct": true,
	"enum": true, "type": true, "impl": true, "if": true, "else": true,
	"match": true, "do": true, "loop": true, "break": true,
	"continue": true, "while": true, "for": true, "in": true,
	"return": true, "try": true, "throw": true, "test": true,
	"assert": true, "_": true,
}

// IsKeyword reports whether image is a reserved word.
func IsKeyword(image string) bool {
	return keywords[image]
}
