// Package starmacro loads user-defined macros from Starlark files.
//
// Every exported function in <dir>/<namespace>.star becomes a macro named
// NAMESPACE__FUNCTION. Arguments reach the function as SQL text rendered in
// the active dialect; it returns SQL text (a string) or a list of them.
package starmacro

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Loader scans a directory for .star files and loads them as Starlark modules.
type Loader struct {
	dir string
}

// NewLoader creates a new macro loader for the specified directory.
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// Module is a loaded Starlark macro file.
type Module struct {
	// Namespace is derived from filename (e.g., "keys" from "keys.star")
	Namespace string

	// Path is the path to the .star file
	Path string

	// Functions are the exported functions (names not starting with _)
	Functions []*starlark.Function
}

// Load scans the macro directory and loads all .star files in name order.
// A missing directory is not an error and yields no modules.
func (l *Loader) Load() ([]*Module, error) {
	info, err := os.Stat(l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to access macros directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("macros path is not a directory: %s", l.dir)
	}

	files, err := filepath.Glob(filepath.Join(l.dir, "*.star"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan macros directory: %w", err)
	}
	sort.Strings(files)

	modules := make([]*Module, 0, len(files))
	for _, file := range files {
		module, err := l.loadFile(file)
		if err != nil {
			return nil, err
		}
		modules = append(modules, module)
	}
	return modules, nil
}

func (l *Loader) loadFile(path string) (*Module, error) {
	content, err := os.ReadFile(path) //nolint:gosec // G304: path comes from a glob within the macros directory
	if err != nil {
		return nil, &LoadError{File: path, Message: fmt.Sprintf("failed to read file: %v", err)}
	}

	namespace := strings.TrimSuffix(filepath.Base(path), ".star")
	if err := validateNamespace(namespace); err != nil {
		return nil, &LoadError{File: path, Message: err.Error()}
	}

	thread := &starlark.Thread{
		Name:  "load:" + namespace,
		Print: func(_ *starlark.Thread, _ string) {},
	}

	globals, err := starlark.ExecFileOptions(&syntax.FileOptions{}, thread, path, content, builtins())
	if err != nil {
		return nil, &LoadError{File: path, Message: fmt.Sprintf("Starlark execution error: %v", err)}
	}

	names := make([]string, 0, len(globals))
	for name := range globals {
		names = append(names, name)
	}
	sort.Strings(names)

	module := &Module{Namespace: namespace, Path: path}
	for _, name := range names {
		if strings.HasPrefix(name, "_") {
			continue
		}
		fn, ok := globals[name].(*starlark.Function)
		if !ok {
			continue
		}
		if fn.HasKwargs() || fn.NumKwonlyParams() > 0 {
			return nil, &LoadError{File: path, Message: fmt.Sprintf("%s: keyword-only and **kwargs parameters are not supported", name)}
		}
		module.Functions = append(module.Functions, fn)
	}
	return module, nil
}

// validateNamespace checks if a namespace name is a valid identifier.
func validateNamespace(name string) error {
	if name == "" {
		return fmt.Errorf("namespace cannot be empty")
	}
	for i, r := range name {
		if i == 0 {
			if !isLetter(r) && r != '_' {
				return fmt.Errorf("namespace must start with letter or underscore: %s", name)
			}
		} else if !isLetter(r) && !isDigit(r) && r != '_' {
			return fmt.Errorf("namespace contains invalid character: %s", name)
		}
	}
	return nil
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// LoadError represents an error loading a macro file.
type LoadError struct {
	File    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("macros/%s: %s", filepath.Base(e.File), e.Message)
}
