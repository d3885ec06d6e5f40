package macro

import (
	"fmt"
	"strings"
)

// ConfigurationError reports a macro argument of the wrong shape or type.
type ConfigurationError struct {
	Macro    string
	Arg      string
	Expected string
	Got      string
}

func (e *ConfigurationError) Error() string {
	var b strings.Builder
	b.WriteString(e.Macro)
	if e.Arg != "" {
		fmt.Fprintf(&b, ": argument %q", e.Arg)
	}
	fmt.Fprintf(&b, ": expected %s", e.Expected)
	if e.Got != "" {
		fmt.Fprintf(&b, ", got %s", e.Got)
	}
	return b.String()
}

// UnknownMacroError is returned when a macro name is not registered.
type UnknownMacroError struct {
	Name      string
	Available []string
}

func (e *UnknownMacroError) Error() string {
	return fmt.Sprintf("unknown macro %q (available: %s)", e.Name, strings.Join(e.Available, ", "))
}
