package checks

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// compileScript compiles the file named by argv[1] the way the interpreter
// would import it. A SyntaxError (IndentationError included) is printed as
// "<line>\t<msg>" with exit status 1.
const compileScript = `import sys
p = sys.argv[1]
try:
    compile(open(p, encoding="utf-8").read(), p, "exec")
except SyntaxError as e:
    print("%d\t%s" % (e.lineno or 0, e.msg))
    sys.exit(1)
`

var compileVerdict = regexp.MustCompile(`(?m)^(\d+)\t(.*)$`)

// PythonChecker compiles the snippet and, when available, runs pylint.
type PythonChecker struct {
	runner  Runner
	python  string
	pylint  string
	timeout time.Duration
	logger  *zap.Logger
}

// Check implements Checker.
func (c *PythonChecker) Check(ctx context.Context, code string) Result {
	res := Result{}

	ws, err := newWorkspace(Python, Python.FileName(), code)
	if err != nil {
		res[KeyCheckerError] = err.Error()
		return res
	}
	defer ws.Close()

	synErr, err := c.syntax(ctx, ws, code)
	switch {
	case err != nil:
		res[KeyCheckerError] = err.Error()
	case synErr != nil:
		res[KeySyntaxOK] = false
		res[KeyError] = synErr.String()
	default:
		res[KeySyntaxOK] = true
	}

	if _, err := c.runner.LookPath(c.pylint); err != nil {
		res[KeyPylint] = PylintMissingMsg
		return res
	}

	run := c.runner.Run(ctx, ws.dir, c.timeout, c.pylint, "--disable=R,C", "--score=no", Python.FileName())
	res[KeyPylint] = run.Output
	if run.Err != nil {
		res[KeyPylintError] = run.Err.Error()
		c.logger.Warn("pylint failed", zap.Error(run.Err))
	}
	return res
}

// syntax asks the interpreter to compile the snippet. The tree-sitter
// grammar is only consulted when no interpreter is installed or it could
// not give a verdict, since it accepts Python 2 statements.
func (c *PythonChecker) syntax(ctx context.Context, ws *workspace, code string) (*SyntaxError, error) {
	if _, err := c.runner.LookPath(c.python); err == nil {
		run := c.runner.Run(ctx, ws.dir, c.timeout, c.python, "-c", compileScript, Python.FileName())
		if synErr, ok := parseCompileVerdict(run); ok {
			return synErr, nil
		}
		c.logger.Debug("python compile gave no verdict, using tree-sitter",
			zap.Int("returncode", run.ExitCode), zap.Error(run.Err))
	}
	return scanSyntax(ctx, Python, code)
}

// parseCompileVerdict reads the result of compileScript. ok is false when
// the run neither succeeded nor reported a SyntaxError.
func parseCompileVerdict(run RunResult) (*SyntaxError, bool) {
	if run.Err != nil {
		return nil, false
	}
	if run.ExitCode == 0 {
		return nil, true
	}
	m := compileVerdict.FindStringSubmatch(run.Output)
	if run.ExitCode != 1 || m == nil {
		return nil, false
	}
	line, err := strconv.Atoi(m[1])
	if err != nil {
		return nil, false
	}
	return &SyntaxError{Line: line, Message: strings.TrimSpace(m[2])}, true
}

// NewPythonChecker returns a checker that compiles with the given
// interpreter and lints with the given pylint binary.
func NewPythonChecker(runner Runner, python, pylint string, timeout time.Duration, logger *zap.Logger) *PythonChecker {
	if python == "" {
		python = "python3"
	}
	return &PythonChecker{runner: runner, python: python, pylint: pylint, timeout: timeout, logger: logger}
}
