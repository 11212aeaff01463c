package util

import (
	"database/sql/driver"
	"fmt"
	"slices"
	"strings"
	"sync"

	"modernc.org/sqlite"
)

// NameList is a SQL aggregate that joins distinct non-empty values in sorted
// order. group_concat gives no ordering guarantee.
type NameList struct {
	seen map[string]struct{}
	sep  string
}

func NewNameList(sep string) *NameList {
	return &NameList{seen: make(map[string]struct{}), sep: sep}
}

func (nl *NameList) Step(ctx *sqlite.FunctionContext, rowArgs []driver.Value) error {
	switch v := rowArgs[0].(type) {
	case nil:
	case string:
		if v != "" {
			nl.seen[v] = struct{}{}
		}
	case []byte:
		if len(v) > 0 {
			nl.seen[string(v)] = struct{}{}
		}
	default:
		return fmt.Errorf("invalid type: %T", rowArgs[0])
	}
	return nil
}

func (nl *NameList) WindowValue(ctx *sqlite.FunctionContext) (driver.Value, error) {
	values := make([]string, 0, len(nl.seen))
	for v := range nl.seen {
		values = append(values, v)
	}
	slices.Sort(values)
	return strings.Join(values, nl.sep), nil
}

func (nl *NameList) WindowInverse(ctx *sqlite.FunctionContext, rowArgs []driver.Value) error {
	return nil
}

func (nl *NameList) Final(ctx *sqlite.FunctionContext) {}

var registerOnce sync.Once

// RegisterSQLFunctions installs the custom functions into the sqlite driver.
// The driver keeps a process wide registry, so this runs once.
func RegisterSQLFunctions() {
	registerOnce.Do(func() {
		sqlite.MustRegisterFunction("namelist", &sqlite.FunctionImpl{
			NArgs:         1,
			Deterministic: true,
			MakeAggregate: func(ctx sqlite.FunctionContext) (sqlite.AggregateFunction, error) {
				return NewNameList("; "), nil
			},
		})
	})
}
