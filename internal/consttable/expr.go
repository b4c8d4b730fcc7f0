package consttable

import (
	"errors"
	"fmt"
	"go/ast"
	"go/constant"
	"go/parser"
	"go/token"
	"math/big"
	"strings"
)

// maxShift bounds `<<` so that a typo cannot allocate an enormous integer.
const maxShift = 1024

var (
	errNotInteger = errors.New("not an integer")
	errNegative   = errors.New("negative result")
)

// Env supplies the current value string of referenced names.
type Env map[string]string

// Eval parses expr as integer arithmetic and evaluates it against env.
// Names resolve only when their current value is itself an integer literal.
func Eval(expr string, env Env) (*big.Int, error) {
	node, err := parser.ParseExpr(expr)
	if err != nil {
		return nil, err
	}
	v, err := evalNode(node, env)
	if err != nil {
		return nil, err
	}
	out, ok := new(big.Int).SetString(v.ExactString(), 10)
	if !ok {
		return nil, errNotInteger
	}
	if out.Sign() < 0 {
		return nil, errNegative
	}
	return out, nil
}

// FormatHex renders n canonically: 0x followed by lowercase digits, 0x0 for zero.
func FormatHex(n *big.Int) string {
	return "0x" + n.Text(16)
}

// IsCanonicalHex reports whether s is already in FormatHex form.
func IsCanonicalHex(s string) bool {
	if !strings.HasPrefix(s, "0x") || len(s) < 3 {
		return false
	}
	n, ok := new(big.Int).SetString(s[2:], 16)
	return ok && FormatHex(n) == s
}

// References lists the UPPER_SNAKE_CASE identifiers used by expr, in order of
// first appearance. Values that do not parse reference nothing.
func References(expr string) []string {
	node, err := parser.ParseExpr(expr)
	if err != nil {
		return nil
	}
	var refs []string
	seen := make(map[string]struct{})
	ast.Inspect(node, func(n ast.Node) bool {
		id, ok := n.(*ast.Ident)
		if !ok || !IsIdent(id.Name) {
			return true
		}
		if _, dup := seen[id.Name]; !dup {
			seen[id.Name] = struct{}{}
			refs = append(refs, id.Name)
		}
		return true
	})
	return refs
}

func evalNode(node ast.Expr, env Env) (constant.Value, error) {
	switch n := node.(type) {
	case *ast.BasicLit:
		if n.Kind != token.INT {
			return nil, fmt.Errorf("%s literal %s: %w", n.Kind, n.Value, errNotInteger)
		}
		return intLiteral(n.Value)
	case *ast.Ident:
		raw, ok := env[n.Name]
		if !ok {
			return nil, fmt.Errorf("unknown name %s", n.Name)
		}
		v, err := intLiteral(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("%s is not resolved yet", n.Name)
		}
		return v, nil
	case *ast.ParenExpr:
		return evalNode(n.X, env)
	case *ast.UnaryExpr:
		x, err := evalNode(n.X, env)
		if err != nil {
			return nil, err
		}
		switch n.Op {
		case token.ADD, token.SUB:
			return constant.UnaryOp(n.Op, x, 0), nil
		}
		return nil, fmt.Errorf("unsupported unary operator %s", n.Op)
	case *ast.BinaryExpr:
		x, err := evalNode(n.X, env)
		if err != nil {
			return nil, err
		}
		y, err := evalNode(n.Y, env)
		if err != nil {
			return nil, err
		}
		return binary(n.Op, x, y)
	}
	return nil, fmt.Errorf("unsupported expression %T", node)
}

func binary(op token.Token, x, y constant.Value) (constant.Value, error) {
	switch op {
	case token.ADD, token.SUB, token.MUL, token.AND, token.OR, token.XOR, token.AND_NOT:
		return constant.BinaryOp(x, op, y), nil
	case token.QUO, token.REM:
		if constant.Sign(y) == 0 {
			return nil, errors.New("division by zero")
		}
		if op == token.QUO {
			// целочисленное деление
			op = token.QUO_ASSIGN
		}
		return constant.BinaryOp(x, op, y), nil
	case token.SHL, token.SHR:
		s, ok := constant.Uint64Val(y)
		if !ok || s > maxShift {
			return nil, fmt.Errorf("invalid shift count %s", y.ExactString())
		}
		return constant.Shift(x, op, uint(s)), nil
	}
	return nil, fmt.Errorf("unsupported operator %s", op)
}

func intLiteral(lit string) (constant.Value, error) {
	v := constant.MakeFromLiteral(lit, token.INT, 0)
	if v.Kind() != constant.Int {
		return nil, errNotInteger
	}
	return v, nil
}
