package config

import (
	"fmt"
	"strings"
)

// AssignmentSeparator separates name and value in launch argument overrides
const AssignmentSeparator = ":="

// ParseAssignments splits command line words into name:=value overrides and
// the remaining positional words. A later assignment of the same name wins.
func ParseAssignments(args []string) (map[string]string, []string, error) {
	overrides := make(map[string]string)
	var rest []string

	for _, arg := range args {
		name, value, ok := strings.Cut(arg, AssignmentSeparator)
		if !ok {
			rest = append(rest, arg)
			continue
		}
		if !argumentName.MatchString(name) {
			return nil, nil, fmt.Errorf("invalid argument assignment %q: bad name %q", arg, name)
		}
		overrides[name] = value
	}
	return overrides, rest, nil
}
