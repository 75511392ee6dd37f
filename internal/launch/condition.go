package launch

import (
	"fmt"
	"strings"
)

// Condition gates whether an action takes part in the launch
type Condition interface {
	Evaluate(lc *Context) (bool, error)
	String() string
}

// IfCondition is true when its predicate resolves to a true value
type IfCondition struct {
	Predicate Substitution
}

// If is shorthand for IfCondition{Predicate: predicate}
func If(predicate Substitution) IfCondition {
	return IfCondition{Predicate: predicate}
}

// Evaluate implements Condition
func (c IfCondition) Evaluate(lc *Context) (bool, error) {
	return evaluatePredicate(lc, c.Predicate)
}

func (c IfCondition) String() string {
	return fmt.Sprintf("if %s", c.Predicate)
}

// UnlessCondition is true when its predicate resolves to a false value
type UnlessCondition struct {
	Predicate Substitution
}

// Unless is shorthand for UnlessCondition{Predicate: predicate}
func Unless(predicate Substitution) UnlessCondition {
	return UnlessCondition{Predicate: predicate}
}

// Evaluate implements Condition
func (c UnlessCondition) Evaluate(lc *Context) (bool, error) {
	v, err := evaluatePredicate(lc, c.Predicate)
	return !v, err
}

func (c UnlessCondition) String() string {
	return fmt.Sprintf("unless %s", c.Predicate)
}

func evaluatePredicate(lc *Context, predicate Substitution) (bool, error) {
	if predicate == nil {
		return false, fmt.Errorf("%w: empty predicate", ErrInvalidBool)
	}
	v, err := predicate.Perform(lc)
	if err != nil {
		return false, err
	}
	b, err := ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("condition %s: %w", predicate, err)
	}
	return b, nil
}

// ParseBool parses a launch boolean: true/false or 1/0, case-insensitively.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q (expected true, false, 1 or 0)", ErrInvalidBool, s)
	}
}
