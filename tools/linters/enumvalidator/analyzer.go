// Package enumvalidator reports string literals stored into enum-like types.
// A named string type counts as an enum when its package declares at least one
// constant of that type, e.g. review.Sentiment or conversation.Role.
package enumvalidator

import (
	"go/ast"
	"go/token"
	"go/types"

	"golang.org/x/tools/go/analysis"
)

var Analyzer = &analysis.Analyzer{
	Name: "enumvalidator",
	Doc:  "checks that enum-typed fields and variables use declared constants, not string literals",
	Run:  run,
}

func run(pass *analysis.Pass) (interface{}, error) {
	enums := map[*types.Named]bool{}

	check := func(target ast.Expr, value ast.Expr, pos token.Pos) {
		if !isStringLiteral(value) {
			return
		}
		if named, ok := enumType(pass.TypesInfo.TypeOf(target), enums); ok {
			pass.Reportf(pos, "%s assigned string literal %s; use a declared %s constant",
				types.ExprString(target), value.(*ast.BasicLit).Value, named.Obj().Name())
		}
	}

	for _, file := range pass.Files {
		ast.Inspect(file, func(n ast.Node) bool {
			switch node := n.(type) {
			case *ast.AssignStmt:
				if len(node.Lhs) != len(node.Rhs) || node.Tok == token.DEFINE {
					return true
				}
				for i, lhs := range node.Lhs {
					check(lhs, node.Rhs[i], node.Pos())
				}
			case *ast.CompositeLit:
				for _, elt := range node.Elts {
					if kv, ok := elt.(*ast.KeyValueExpr); ok {
						check(kv.Key, kv.Value, kv.Pos())
					}
				}
			}
			return true
		})
	}
	return nil, nil
}

// enumType reports whether t is a named string type with declared constants.
func enumType(t types.Type, cache map[*types.Named]bool) (*types.Named, bool) {
	named, ok := t.(*types.Named)
	if !ok {
		return nil, false
	}
	if known, seen := cache[named]; seen {
		return named, known
	}

	isEnum := false
	basic, ok := named.Underlying().(*types.Basic)
	if pkg := named.Obj().Pkg(); ok && basic.Info()&types.IsString != 0 && pkg != nil {
		scope := pkg.Scope()
		for _, name := range scope.Names() {
			if c, ok := scope.Lookup(name).(*types.Const); ok && types.Identical(c.Type(), named) {
				isEnum = true
				break
			}
		}
	}
	cache[named] = isEnum
	return named, isEnum
}

func isStringLiteral(expr ast.Expr) bool {
	lit, ok := expr.(*ast.BasicLit)
	return ok && lit.Kind == token.STRING
}
