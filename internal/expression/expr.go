package expression

import "github.com/karupanerura/bootjs-emulator/internal/value"

// Expr is a parsed Expression.
type Expr struct {
	Source string
	operation
}

func (e *Expr) IsIdentifier() (ok bool) {
	_, ok = e.operation.(*identifierOperation)
	return ok
}

func (e *Expr) IsMember() (ok bool) {
	_, ok = e.operation.(*memberOperation)
	return ok
}

// CanReference reports whether evaluating the expression yields a Reference,
// that is, whether it may appear on the left of an assignment.
func (e *Expr) CanReference() bool {
	return canReference(e.operation)
}

func (e *Expr) String() string {
	return e.Source
}

// ValueExpr returns an expression that evaluates to v.
func ValueExpr(v value.Value) *Expr {
	return &Expr{
		Source:    "(value)",
		operation: &literalOperation{value: v},
	}
}

func canReference(op operation) bool {
	switch op.(type) {
	case *identifierOperation, *memberOperation:
		return true
	default:
		return false
	}
}

type StatementKind uint8

const (
	ExpressionStatement StatementKind = iota
	EmptyStatement
	DebuggerStatement
)

// Statement is one statement of a Program. Expr is nil unless Kind is
// ExpressionStatement.
type Statement struct {
	Kind StatementKind
	Expr *Expr
	Line int
}

// Program is a parsed statement list.
type Program struct {
	Source     string
	Strict     bool
	Statements []*Statement
}
