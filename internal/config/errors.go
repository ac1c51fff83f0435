package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// PermissionError reports a config file or directory the process cannot
// read or write.
type PermissionError struct {
	Path string
	Op   string      // "read" or "write"
	Mode os.FileMode // zero when unknown
	Err  error
}

func (e *PermissionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "permission denied (cannot %s config): %s\n", e.Op, e.Path)
	if e.Mode != 0 {
		fmt.Fprintf(&b, "Current permissions: %04o\n", e.Mode.Perm())
	}
	b.WriteString("💡 Fix: " + e.Fix())
	return b.String()
}

func (e *PermissionError) Unwrap() error { return e.Err }

// Fix returns a platform-specific suggestion.
func (e *PermissionError) Fix() string {
	if runtime.GOOS == "windows" {
		grant := "Read"
		if e.Op == "write" {
			grant = "Write"
		}
		return fmt.Sprintf("Right-click %s → Properties → Security → Grant '%s' permission", e.Path, grant)
	}
	if e.Op == "write" {
		return "Run: chmod u+w " + e.Path
	}
	return "Run: chmod 644 " + e.Path
}

// ConfigNotFoundError reports a missing config file.
type ConfigNotFoundError struct {
	Path string
}

func (e *ConfigNotFoundError) Error() string {
	return fmt.Sprintf("config file not found: %s\n\n💡 Run 'tingle-radar config init' to create configuration, or point %s at another file",
		e.Path, EnvConfigPath)
}

// InvalidConfigError reports a config that does not parse or validate.
type InvalidConfigError struct {
	Path string
	Err  error
	Hint string
}

func (e *InvalidConfigError) Error() string {
	msg := fmt.Sprintf("invalid config: %s\n", e.Path)
	if e.Err != nil {
		msg += e.Err.Error() + "\n"
	}
	if e.Hint != "" {
		msg += "💡 " + e.Hint
	}
	return msg
}

func (e *InvalidConfigError) Unwrap() error { return e.Err }

// EnvError reports an environment override that cannot be applied.
type EnvError struct {
	Var   string
	Value string
	Err   error
}

func (e *EnvError) Error() string {
	return fmt.Sprintf("invalid %s=%q: %v", e.Var, e.Value, e.Err)
}

func (e *EnvError) Unwrap() error { return e.Err }
