package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/leapmacro/pkg/core"
	"github.com/spf13/cobra"
)

const (
	replPrompt     = "leapmacro> "
	replContinue   = "     ...> "
	replHistoryRel = ".leapmacro_history"
)

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Expand macros interactively",
		Long: `Start an interactive session. Each statement, terminated by a semicolon,
is expanded and printed. Type .help for commands.`,
		Args: cobra.NoArgs,
		RunE: runREPL,
	}
}

func runREPL(cmd *cobra.Command, _ []string) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	historyFile := ""
	if cc.Cfg.ConfigFile != "" {
		historyFile = filepath.Join(filepath.Dir(cc.Cfg.ConfigFile), replHistoryRel)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     historyFile,
		AutoComplete:    newMacroCompleter(cc),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "leapmacro REPL (dialect: %s)\n", cc.Dialect.Name)
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	session := &replSession{cc: cc, out: cmd.OutOrStdout(), errOut: cmd.ErrOrStderr()}
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			session.reset()
			rl.SetPrompt(replPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}

		prompt, quit := session.handleLine(cmd.Context(), line)
		if quit {
			return nil
		}
		rl.SetPrompt(prompt)
	}
}

// replSession accumulates statements and expands them.
type replSession struct {
	cc     *CommandContext
	out    io.Writer
	errOut io.Writer
	buf    strings.Builder
}

func (s *replSession) reset() {
	s.buf.Reset()
}

// handleLine processes one input line and returns the next prompt.
func (s *replSession) handleLine(ctx context.Context, line string) (prompt string, quit bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		if s.buf.Len() > 0 {
			return replContinue, false
		}
		return replPrompt, false
	}

	if s.buf.Len() == 0 && strings.HasPrefix(line, ".") {
		return replPrompt, s.dotCommand(ctx, line)
	}

	// Accumulate multi-line SQL until semicolon
	s.buf.WriteString(line)
	if !strings.HasSuffix(line, ";") {
		s.buf.WriteString("\n")
		return replContinue, false
	}

	statement := s.buf.String()
	s.buf.Reset()

	out, err := s.cc.Renderer.Render(ctx, statement)
	if err != nil {
		_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
		return replPrompt, false
	}
	_, _ = fmt.Fprintln(s.out, out)
	return replPrompt, false
}

// dotCommand runs a REPL command and reports whether the session should end.
func (s *replSession) dotCommand(ctx context.Context, line string) bool {
	parts := strings.Fields(line)

	switch strings.ToLower(parts[0]) {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(s.out)

	case ".macros":
		for _, m := range s.cc.Evaluator.Registry.List() {
			_, _ = fmt.Fprintf(s.out, "  %s\n", m.Usage())
		}

	case ".schema":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(s.errOut, "Usage: .schema <relation>")
			return false
		}
		if s.cc.Resolver == nil {
			_, _ = fmt.Fprintln(s.errOut, "Error: no schema source configured")
			return false
		}
		cols, err := s.cc.Resolver.ColumnsFor(ctx, core.Table(parts[1]))
		if err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
			return false
		}
		for _, name := range cols.Names() {
			typ, _ := cols.Get(name)
			_, _ = fmt.Fprintf(s.out, "  %s %s\n", name, typ)
		}

	default:
		_, _ = fmt.Fprintf(s.errOut, "Unknown command: %s (type .help for commands)\n", parts[0])
	}
	return false
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help              Show this help message
  .macros            List available macros
  .schema <relation> Show the columns of a relation
  .quit / .exit      Exit the REPL

Tips:
  - Statements must end with a semicolon (;)
  - Use arrow keys to navigate history
  - Tab completion works for macro names
`
	_, _ = fmt.Fprintln(w, help)
}

// newMacroCompleter creates a readline completer for macro calls and dot-commands.
func newMacroCompleter(cc *CommandContext) *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	for _, name := range cc.Evaluator.Registry.Names() {
		items = append(items, readline.PcItem("@"+name+"("))
	}
	items = append(items,
		readline.PcItem(".help"),
		readline.PcItem(".macros"),
		readline.PcItem(".schema"),
		readline.PcItem(".quit"),
	)
	return readline.NewPrefixCompleter(items...)
}
