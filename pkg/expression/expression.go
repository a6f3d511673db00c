// Package expression evaluates user-configured skip filters against folders.
package expression

import (
	"fmt"

	"github.com/dlclark/regexp2"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Folder is the evaluation environment exposed to filter expressions.
type Folder struct {
	Name       string
	Key        string
	Archives   int
	TotalBytes int64
}

// Matches exposes regex matching against the folder name to expressions,
// with .NET-style pattern support (lookarounds, etc).
func (f Folder) Matches(pattern string) bool {
	re, err := regexp2.Compile(pattern, regexp2.IgnoreCase)
	if err != nil {
		return false
	}

	ok, err := re.MatchString(f.Name)
	return err == nil && ok
}

type CompiledExpression struct {
	Text    string
	Program *vm.Program
}

// Compile validates and compiles filter expressions up front so a bad filter
// fails the run at startup, not per folder.
func Compile(expressions []string) ([]CompiledExpression, error) {
	compiled := make([]CompiledExpression, 0, len(expressions))

	for _, text := range expressions {
		program, err := expr.Compile(text, expr.Env(Folder{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compile expression %q: %w", text, err)
		}

		compiled = append(compiled, CompiledExpression{Text: text, Program: program})
	}

	return compiled, nil
}
