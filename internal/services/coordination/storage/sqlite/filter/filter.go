// Package filter provides AIP-160 filter expression parsing and SQL
// translation for task listings.
package filter

import (
	"fmt"
	"strings"

	"go.einride.tech/aip/filtering"
	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// taskColumns maps filter field names to task table columns.
var taskColumns = map[string]string{
	"title":         "title",
	"priority":      "priority",
	"completed":     "completed",
	"agent_visible": "agent_visible",
	"due_date":      "due_date",
}

// TaskDeclarations returns the field declarations accepted in task filters.
func TaskDeclarations() (*filtering.Declarations, error) {
	return filtering.NewDeclarations(
		filtering.DeclareStandardFunctions(),
		filtering.DeclareIdent("title", filtering.TypeString),
		filtering.DeclareIdent("priority", filtering.TypeString),
		filtering.DeclareIdent("completed", filtering.TypeBool),
		filtering.DeclareIdent("agent_visible", filtering.TypeBool),
		// Due dates are ISO calendar dates; lexical comparison matches
		// chronological order.
		filtering.DeclareIdent("due_date", filtering.TypeString),
	)
}

// Condition is a SQL WHERE clause fragment with positional parameters.
type Condition struct {
	Clause string
	Params []any
}

// ParseTaskFilter parses an AIP-160 filter expression into a SQL condition
// over the tasks table. An empty filter yields an empty condition.
func ParseTaskFilter(filterStr string) (Condition, error) {
	if strings.TrimSpace(filterStr) == "" {
		return Condition{}, nil
	}

	decls, err := TaskDeclarations()
	if err != nil {
		return Condition{}, fmt.Errorf("create declarations: %w", err)
	}
	parsed, err := filtering.ParseFilterString(filterStr, decls)
	if err != nil {
		return Condition{}, fmt.Errorf("parse filter: %w", err)
	}
	return walk(parsed.CheckedExpr.Expr)
}

func walk(e *expr.Expr) (Condition, error) {
	if e == nil {
		return Condition{}, nil
	}
	switch kind := e.ExprKind.(type) {
	case *expr.Expr_CallExpr:
		return walkCall(kind.CallExpr)
	case *expr.Expr_IdentExpr:
		// A bare boolean field, e.g. "completed".
		column, err := columnFor(kind.IdentExpr.Name)
		if err != nil {
			return Condition{}, err
		}
		return Condition{Clause: column + " = ?", Params: []any{true}}, nil
	default:
		return Condition{}, fmt.Errorf("unsupported expression type: %T", kind)
	}
}

func walkCall(call *expr.Expr_Call) (Condition, error) {
	switch call.Function {
	case "_&&_", "AND":
		return combine(call.Args, "AND")
	case "_||_", "OR":
		return combine(call.Args, "OR")
	case "NOT", "!_":
		if len(call.Args) != 1 {
			return Condition{}, fmt.Errorf("NOT requires 1 argument")
		}
		inner, err := walk(call.Args[0])
		if err != nil {
			return Condition{}, err
		}
		return Condition{Clause: "NOT (" + inner.Clause + ")", Params: inner.Params}, nil
	case "_==_", "=":
		return comparison(call.Args, "=")
	case "_!=_", "!=":
		return comparison(call.Args, "!=")
	case "_<_", "<":
		return comparison(call.Args, "<")
	case "_<=_", "<=":
		return comparison(call.Args, "<=")
	case "_>_", ">":
		return comparison(call.Args, ">")
	case "_>=_", ">=":
		return comparison(call.Args, ">=")
	default:
		return Condition{}, fmt.Errorf("unsupported function: %s", call.Function)
	}
}

func combine(args []*expr.Expr, op string) (Condition, error) {
	if len(args) != 2 {
		return Condition{}, fmt.Errorf("%s requires 2 arguments", op)
	}
	left, err := walk(args[0])
	if err != nil {
		return Condition{}, err
	}
	right, err := walk(args[1])
	if err != nil {
		return Condition{}, err
	}
	return Condition{
		Clause: fmt.Sprintf("(%s %s %s)", left.Clause, op, right.Clause),
		Params: append(left.Params, right.Params...),
	}, nil
}

func comparison(args []*expr.Expr, op string) (Condition, error) {
	if len(args) != 2 {
		return Condition{}, fmt.Errorf("comparison requires 2 arguments")
	}
	field, err := identName(args[0])
	if err != nil {
		return Condition{}, err
	}
	column, err := columnFor(field)
	if err != nil {
		return Condition{}, err
	}
	value, err := constValue(args[1])
	if err != nil {
		return Condition{}, err
	}
	return Condition{
		Clause: fmt.Sprintf("%s %s ?", column, op),
		Params: []any{value},
	}, nil
}

func columnFor(field string) (string, error) {
	column, ok := taskColumns[field]
	if !ok {
		return "", fmt.Errorf("unknown field: %s", field)
	}
	return column, nil
}

func identName(e *expr.Expr) (string, error) {
	if e == nil {
		return "", fmt.Errorf("nil expression")
	}
	ident, ok := e.ExprKind.(*expr.Expr_IdentExpr)
	if !ok {
		return "", fmt.Errorf("expected identifier, got %T", e.ExprKind)
	}
	return ident.IdentExpr.Name, nil
}

func constValue(e *expr.Expr) (any, error) {
	if e == nil {
		return nil, fmt.Errorf("nil expression")
	}
	constant, ok := e.ExprKind.(*expr.Expr_ConstExpr)
	if !ok {
		return nil, fmt.Errorf("expected constant, got %T", e.ExprKind)
	}
	switch kind := constant.ConstExpr.ConstantKind.(type) {
	case *expr.Constant_StringValue:
		return kind.StringValue, nil
	case *expr.Constant_Int64Value:
		return kind.Int64Value, nil
	case *expr.Constant_BoolValue:
		return kind.BoolValue, nil
	default:
		return nil, fmt.Errorf("unsupported constant type: %T", kind)
	}
}
