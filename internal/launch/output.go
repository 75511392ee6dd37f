package launch

import "fmt"

// OutputTarget is where one output stream of a process goes
type OutputTarget string

const (
	// OutputScreen writes to the terminal running armlaunch
	OutputScreen OutputTarget = "screen"
	// OutputLog writes to the entity's log file in the run directory
	OutputLog OutputTarget = "log"
	// OutputBoth writes to the terminal and the log file
	OutputBoth OutputTarget = "both"
)

// ParseOutputTarget validates an output target name. Empty means log.
func ParseOutputTarget(s string) (OutputTarget, error) {
	switch OutputTarget(s) {
	case "", OutputLog:
		return OutputLog, nil
	case OutputScreen, OutputBoth:
		return OutputTarget(s), nil
	default:
		return "", fmt.Errorf("invalid output target %q (must be screen, log or both)", s)
	}
}

// Screen reports whether the stream is shown on the terminal
func (t OutputTarget) Screen() bool {
	return t == OutputScreen || t == OutputBoth
}

// Log reports whether the stream is written to the log file
func (t OutputTarget) Log() bool {
	return t == "" || t == OutputLog || t == OutputBoth
}

// OutputPolicy routes stdout and stderr independently
type OutputPolicy struct {
	Stdout OutputTarget `json:"stdout" yaml:"stdout"`
	Stderr OutputTarget `json:"stderr" yaml:"stderr"`
}

// Output applies the same target to both streams
func Output(target OutputTarget) OutputPolicy {
	return OutputPolicy{Stdout: target, Stderr: target}
}

// normalized fills unset streams with the log default
func (p OutputPolicy) normalized() OutputPolicy {
	if p.Stdout == "" {
		p.Stdout = OutputLog
	}
	if p.Stderr == "" {
		p.Stderr = OutputLog
	}
	return p
}

func (p OutputPolicy) String() string {
	p = p.normalized()
	if p.Stdout == p.Stderr {
		return string(p.Stdout)
	}
	return fmt.Sprintf("stdout=%s,stderr=%s", p.Stdout, p.Stderr)
}
