// Package ast defines Yoku's abstract syntax tree: one tagged struct per
// node kind, grouped into five categories (Decl, Stmt, Expr, Pattern,
// TypeExpr), each category identified by a marker method on a shared
// Node interface.
package ast

import (
	"github.com/ejrbuss/yoku-sub000/internal/source"
	"github.com/ejrbuss/yoku-sub000/internal/types"
)

// Node is the common interface implemented by every AST node.
type Node interface {
	Span() source.Span
}

// Typed is embedded by every Expr and Pattern node; the checker fills in
// Resolved in place (spec §4.4 — "in-place annotation of AST").
type Typed struct {
	Resolved types.Type
}

func (t *Typed) ResolvedType() types.Type      { return t.Resolved }
func (t *Typed) SetResolvedType(ty types.Type) { t.Resolved = ty }

// Decl is a top-level or block-level declaration.
type Decl interface {
	Node
	declNode()
}

// Stmt is a statement.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression; every Expr carries a resolved-type slot.
type Expr interface {
	Node
	ResolvedType() types.Type
	SetResolvedType(types.Type)
	exprNode()
}

// Pattern is a pattern; identifier patterns carry a resolved-type slot
// for the name they bind.
type Pattern interface {
	Node
	ResolvedType() types.Type
	SetResolvedType(types.Type)
	patternNode()
}

// TypeExpr is a type expression as written in source, prior to checking.
type TypeExpr interface {
	Node
	typeExprNode()
}

// LiteralKind distinguishes the literal value kinds, mirroring the
// tokenizer's Lit value types.
type LiteralKind int

const (
	IntLit LiteralKind = iota
	FloatLit
	StringLit
	BoolLit
)

// Root is the top of one parse: a sequence of declarations and
// statements (module level admits both, exactly like a block body),
// plus a flag distinguishing a module root from a REPL-line root
// (spec §3.2).
type Root struct {
	Items    []Node
	IsModule bool
	Sp       source.Span
}

func (r *Root) Span() source.Span { return r.Sp }

// ---- Declarations ----

type VarDecl struct {
	Const   bool
	Pattern Pattern
	TypeAnn TypeExpr // nil if unannotated
	Assert  bool
	Init    Expr
	Sp      source.Span
}

func (d *VarDecl) Span() source.Span { return d.Sp }
func (*VarDecl) declNode()           {}

type ProcDecl struct {
	Name string
	Lit  *ProcLit
	Sp   source.Span
}

func (d *ProcDecl) Span() source.Span { return d.Sp }
func (*ProcDecl) declNode()           {}

type TypeAliasDecl struct {
	Name string
	Type TypeExpr
	Sp   source.Span
}

func (d *TypeAliasDecl) Span() source.Span { return d.Sp }
func (*TypeAliasDecl) declNode()           {}

type StructFieldDecl struct {
	Mutable bool
	Name    string
	Type    TypeExpr
}

type StructDecl struct {
	Name      string
	TupleForm bool
	Fields    []StructFieldDecl
	Resolved  types.Type // filled in by the checker; the declared *types.Struct
	Sp        source.Span
}

func (d *StructDecl) Span() source.Span { return d.Sp }
func (*StructDecl) declNode()           {}

type EnumVariantDecl struct {
	Name      string
	Constant  bool
	TupleForm bool
	Fields    []StructFieldDecl
}

type EnumDecl struct {
	Name     string
	Variants []EnumVariantDecl
	Resolved types.Type // filled in by the checker; the declared *types.Enum
	Sp       source.Span
}

func (d *EnumDecl) Span() source.Span { return d.Sp }
func (*EnumDecl) declNode()           {}

type TestDecl struct {
	Name string
	Body *BlockExpr
	Sp   source.Span
}

func (d *TestDecl) Span() source.Span { return d.Sp }
func (*TestDecl) declNode()           {}

// ---- Statements ----

type BreakStmt struct {
	Label *string
	Sp    source.Span
}

func (s *BreakStmt) Span() source.Span { return s.Sp }
func (*BreakStmt) stmtNode()           {}

type ContinueStmt struct {
	Label *string
	Sp    source.Span
}

func (s *ContinueStmt) Span() source.Span { return s.Sp }
func (*ContinueStmt) stmtNode()           {}

type ReturnStmt struct {
	Value Expr // nil if bare `return;`
	Sp    source.Span
}

func (s *ReturnStmt) Span() source.Span { return s.Sp }
func (*ReturnStmt) stmtNode()           {}

type AssertStmt struct {
	Expr Expr
	Sp   source.Span
}

func (s *AssertStmt) Span() source.Span { return s.Sp }
func (*AssertStmt) stmtNode()           {}

type LoopStmt struct {
	Label *string
	Body  *BlockExpr
	Sp    source.Span
}

func (s *LoopStmt) Span() source.Span { return s.Sp }
func (*LoopStmt) stmtNode()           {}

type WhileStmt struct {
	Test Expr
	Body *BlockExpr
	Sp   source.Span
}

func (s *WhileStmt) Span() source.Span { return s.Sp }
func (*WhileStmt) stmtNode()           {}

type AssignVarStmt struct {
	Target string
	Value  Expr
	Sp     source.Span
}

func (s *AssignVarStmt) Span() source.Span { return s.Sp }
func (*AssignVarStmt) stmtNode()           {}

type AssignFieldStmt struct {
	Target Expr
	Field  string
	Value  Expr
	Sp     source.Span
}

func (s *AssignFieldStmt) Span() source.Span { return s.Sp }
func (*AssignFieldStmt) stmtNode()           {}

type ExprStmt struct {
	Expr Expr
	Sp   source.Span
}

func (s *ExprStmt) Span() source.Span { return s.Sp }
func (*ExprStmt) stmtNode()           {}

// ---- Expressions ----

// BlockExpr's Items hold Decl and Stmt nodes in source order; its value
// is the value of the last item if it is an expression statement, else
// Unit (spec §4.3).
type BlockExpr struct {
	Typed
	Items []Node
	Sp    source.Span
}

func (e *BlockExpr) Span() source.Span { return e.Sp }
func (*BlockExpr) exprNode()           {}

type TupleExpr struct {
	Typed
	Items []Expr
	Sp    source.Span
}

func (e *TupleExpr) Span() source.Span { return e.Sp }
func (*TupleExpr) exprNode()           {}

type FieldInit struct {
	Name  string
	Value Expr
}

type StructExpr struct {
	Typed
	Name   string
	Fields []FieldInit
	Spread Expr // nil if no `...` spread
	Sp     source.Span
}

func (e *StructExpr) Span() source.Span { return e.Sp }
func (*StructExpr) exprNode()           {}

type EnumVariantExpr struct {
	Typed
	EnumName    string
	VariantName string
	Fields      []FieldInit
	Spread      Expr
	Sp          source.Span
}

func (e *EnumVariantExpr) Span() source.Span { return e.Sp }
func (*EnumVariantExpr) exprNode()           {}

type GroupExpr struct {
	Typed
	Inner Expr
	Sp    source.Span
}

func (e *GroupExpr) Span() source.Span { return e.Sp }
func (*GroupExpr) exprNode()           {}

// IfExpr models both `if e { } else { }` and `if let P := e { }`: Pattern
// and AssertedType are nil for the plain-test form.
type IfExpr struct {
	Typed
	Pattern      Pattern
	AssertedType TypeExpr
	Test         Expr
	Then         Expr
	Else         Expr // nil if no else branch
	Sp           source.Span
}

func (e *IfExpr) Span() source.Span { return e.Sp }
func (*IfExpr) exprNode()           {}

type MatchCase struct {
	Pattern      Pattern // nil marks the `else` case
	AssertedType TypeExpr
	Guard        Expr // nil if no guard
	Body         Expr
}

type MatchExpr struct {
	Typed
	Test  Expr
	Cases []MatchCase
	Sp    source.Span
}

func (e *MatchExpr) Span() source.Span { return e.Sp }
func (*MatchExpr) exprNode()           {}

type ThrowExpr struct {
	Typed
	Value Expr
	Sp    source.Span
}

func (e *ThrowExpr) Span() source.Span { return e.Sp }
func (*ThrowExpr) exprNode()           {}

type Param struct {
	Name string
	Type TypeExpr // nil if unannotated
	Sp   source.Span
}

type ProcLit struct {
	Typed
	Params     []Param
	ReturnType TypeExpr // nil if unannotated
	Body       Expr
	Sp         source.Span
}

func (e *ProcLit) Span() source.Span { return e.Sp }
func (*ProcLit) exprNode()           {}

// TypeValueExpr is the `type T` expression form that reifies a type
// expression as a first-class Type value (spec §3.5, "Type value").
type TypeValueExpr struct {
	Typed
	Type     TypeExpr
	Referent types.Type // filled in by the checker; the type named by Type
	Sp       source.Span
}

func (e *TypeValueExpr) Span() source.Span { return e.Sp }
func (*TypeValueExpr) exprNode()           {}

type BinaryExpr struct {
	Typed
	Op    string
	Left  Expr
	Right Expr
	Sp    source.Span
}

func (e *BinaryExpr) Span() source.Span { return e.Sp }
func (*BinaryExpr) exprNode()           {}

type UnaryExpr struct {
	Typed
	Op   string
	Expr Expr
	Sp   source.Span
}

func (e *UnaryExpr) Span() source.Span { return e.Sp }
func (*UnaryExpr) exprNode()           {}

// MemberExpr is the binary `.` operation: positional tuple access,
// struct/variant field access, or enum `Enum.Variant` access, depending
// on the target's resolved type (spec §4.5).
type MemberExpr struct {
	Typed
	Target Expr
	Field  string // identifier, or the decimal index image for tuple access
	Sp     source.Span
}

func (e *MemberExpr) Span() source.Span { return e.Sp }
func (*MemberExpr) exprNode()           {}

type CallExpr struct {
	Typed
	Callee Expr
	Args   []Expr
	Sp     source.Span
}

func (e *CallExpr) Span() source.Span { return e.Sp }
func (*CallExpr) exprNode()           {}

type LiteralExpr struct {
	Typed
	Kind  LiteralKind
	Value interface{}
	Sp    source.Span
}

func (e *LiteralExpr) Span() source.Span { return e.Sp }
func (*LiteralExpr) exprNode()           {}

type IdentExpr struct {
	Typed
	Name string
	Sp   source.Span
}

func (e *IdentExpr) Span() source.Span { return e.Sp }
func (*IdentExpr) exprNode()           {}

// ---- Patterns ----

type WildcardPattern struct {
	Typed
	Sp source.Span
}

func (p *WildcardPattern) Span() source.Span { return p.Sp }
func (*WildcardPattern) patternNode()        {}

type LiteralPattern struct {
	Typed
	Kind  LiteralKind
	Value interface{}
	Sp    source.Span
}

func (p *LiteralPattern) Span() source.Span { return p.Sp }
func (*LiteralPattern) patternNode()        {}

type IdentPattern struct {
	Typed
	Name string
	Sp   source.Span
}

func (p *IdentPattern) Span() source.Span { return p.Sp }
func (*IdentPattern) patternNode()        {}

// AsPattern is the `Left as Right` conjunction: both sides must match.
type AsPattern struct {
	Typed
	Left  Pattern
	Right Pattern
	Sp    source.Span
}

func (p *AsPattern) Span() source.Span { return p.Sp }
func (*AsPattern) patternNode()        {}

type TuplePattern struct {
	Typed
	Items []Pattern
	Sp    source.Span
}

func (p *TuplePattern) Span() source.Span { return p.Sp }
func (*TuplePattern) patternNode()        {}

type FieldPattern struct {
	Name    string
	Pattern Pattern
}

type StructPattern struct {
	Typed
	Name      string
	TupleForm bool
	Fields    []FieldPattern
	Sp        source.Span
}

func (p *StructPattern) Span() source.Span { return p.Sp }
func (*StructPattern) patternNode()        {}

type VariantPattern struct {
	Typed
	EnumName    string
	VariantName string
	TupleForm   bool
	Fields      []FieldPattern
	Sp          source.Span
}

func (p *VariantPattern) Span() source.Span { return p.Sp }
func (*VariantPattern) patternNode()        {}

// ---- Type expressions ----

type IdentTypeExpr struct {
	Name string
	Sp   source.Span
}

func (t *IdentTypeExpr) Span() source.Span { return t.Sp }
func (*IdentTypeExpr) typeExprNode()       {}

type WildcardTypeExpr struct {
	Sp source.Span
}

func (t *WildcardTypeExpr) Span() source.Span { return t.Sp }
func (*WildcardTypeExpr) typeExprNode()       {}

type ProcTypeExpr struct {
	Params  []TypeExpr
	Returns TypeExpr // nil if unannotated (Unit)
	Sp      source.Span
}

func (t *ProcTypeExpr) Span() source.Span { return t.Sp }
func (*ProcTypeExpr) typeExprNode()       {}

type TupleTypeExpr struct {
	Items []TypeExpr
	Sp    source.Span
}

func (t *TupleTypeExpr) Span() source.Span { return t.Sp }
func (*TupleTypeExpr) typeExprNode()       {}
