package checks

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// CompiledChecker runs a compiler in syntax/lint-only mode over a snippet
// written to a fixed file name.
type CompiledChecker struct {
	lang      Language
	fileName  string
	command   string
	args      func(ws *workspace) []string
	outputKey string
	runner    Runner
	timeout   time.Duration
	logger    *zap.Logger
}

// NewJavaChecker returns a checker that runs javac -Xlint on Main.java.
func NewJavaChecker(runner Runner, javac string, timeout time.Duration, logger *zap.Logger) *CompiledChecker {
	return &CompiledChecker{
		lang:     Java,
		fileName: Java.FileName(),
		command:  javac,
		args: func(ws *workspace) []string {
			// -d keeps Main.class inside the workspace so Close removes it.
			return []string{"-Xlint", "-d", ws.dir, Java.FileName()}
		},
		outputKey: "javac_output",
		runner:    runner,
		timeout:   timeout,
		logger:    logger,
	}
}

// NewCPPChecker returns a checker that runs g++ -fsyntax-only.
func NewCPPChecker(runner Runner, cxx string, timeout time.Duration, logger *zap.Logger) *CompiledChecker {
	return &CompiledChecker{
		lang:     CPP,
		fileName: CPP.FileName(),
		command:  cxx,
		args: func(*workspace) []string {
			return []string{"-std=c++17", "-fsyntax-only", CPP.FileName()}
		},
		outputKey: "gpp_output",
		runner:    runner,
		timeout:   timeout,
		logger:    logger,
	}
}

// Check implements Checker.
func (c *CompiledChecker) Check(ctx context.Context, code string) Result {
	res := Result{}

	if synErr, err := scanSyntax(ctx, c.lang, code); err == nil {
		res[KeySyntaxOK] = synErr == nil
		if synErr != nil {
			res[KeySyntaxError] = synErr.String()
		}
	}

	if _, err := c.runner.LookPath(c.command); err != nil {
		res[c.outputKey] = fmt.Sprintf("%s not installed", c.command)
		res[KeyReturnCode] = -1
		return res
	}

	ws, err := newWorkspace(c.lang, c.fileName, code)
	if err != nil {
		res[c.outputKey] = err.Error()
		res[KeyReturnCode] = -1
		return res
	}
	defer ws.Close()

	run := c.runner.Run(ctx, ws.dir, c.timeout, c.command, c.args(ws)...)
	res[c.outputKey] = run.Text()
	res[KeyReturnCode] = run.ExitCode
	if run.Err != nil {
		c.logger.Warn("compiler invocation failed",
			zap.String("language", string(c.lang)),
			zap.String("command", c.command),
			zap.Error(run.Err),
		)
	}
	return res
}
