package folio

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrDuplicateTicker = errors.New("ticker already in portfolio")
	ErrStockNotFound   = errors.New("stock not found")
	ErrGoalNotFound    = errors.New("goal not found")
)

// ValidationError reports every invalid field of a record submitted by the user.
type ValidationError struct {
	Record string            // "stock", "goal", "settings"
	Fields map[string]string // field name to problem
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	problems := make([]string, 0, len(names))
	for _, name := range names {
		problems = append(problems, fmt.Sprintf("%s %s", name, e.Fields[name]))
	}
	return fmt.Sprintf("invalid %s: %s", e.Record, strings.Join(problems, "; "))
}

// Field returns the problem reported for 'name', if any.
func (e *ValidationError) Field(name string) (string, bool) {
	msg, ok := e.Fields[name]
	return msg, ok
}

func (e *ValidationError) add(field, problem string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = problem
}

// orNil returns nil when no field was reported.
func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
