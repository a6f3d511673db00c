package expression

import (
	"fmt"

	"github.com/expr-lang/expr"
)

// CheckFolderSingleMatch reports whether any expression matches the folder.
func CheckFolderSingleMatch(f Folder, expressions []CompiledExpression) (bool, error) {
	match, _, err := CheckFolderSingleMatchWithReason(f, expressions)
	return match, err
}

// CheckFolderSingleMatchWithReason reports the first matching expression's
// text so skips are never silent.
func CheckFolderSingleMatchWithReason(f Folder, expressions []CompiledExpression) (bool, string, error) {
	for _, expression := range expressions {
		result, err := expr.Run(expression.Program, f)
		if err != nil {
			return false, "", fmt.Errorf("check expression: %w", err)
		}

		expResult, ok := result.(bool)
		if !ok {
			return false, "", fmt.Errorf("expression %q did not evaluate to a bool", expression.Text)
		}

		if expResult {
			return true, expression.Text, nil
		}
	}

	return false, "", nil
}
