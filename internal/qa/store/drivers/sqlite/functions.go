package sqlite

import (
	"database/sql/driver"
	"fmt"
	"strings"

	msqlite "modernc.org/sqlite"
)

// unicodeLower is a full Unicode replacement for sqlite's LOWER, which only
// folds ASCII letters.
const unicodeLower = "unicode_lower"

func init() {
	if err := msqlite.RegisterDeterministicScalarFunction(unicodeLower, 1, lowerFunc); err != nil {
		panic(fmt.Sprintf("sqlite: register %s: %v", unicodeLower, err))
	}
}

func lowerFunc(_ *msqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return nil, fmt.Errorf("%s: unsupported argument type %T", unicodeLower, v)
	}
}
