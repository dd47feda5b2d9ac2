package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

const timeLayout = "2006-01-02 15:04:05"

// New returns a console logger on stdout, coloured when stdout is a terminal.
func New(level string) (*zap.Logger, error) {
	return NewWithWriter(level, os.Stdout, term.IsTerminal(int(os.Stdout.Fd())))
}

func NewWithWriter(level string, w io.Writer, colour bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout(timeLayout)
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	if colour {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	encCfg.EncodeCaller = nil
	encCfg.CallerKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), lvl)
	return zap.New(core), nil
}

// Banner prints a boxed title used at startup and between menu runs.
func Banner(w io.Writer, title string) {
	line := strings.Repeat("=", len(title)+8)
	c := color.New(color.FgCyan, color.Bold)
	c.Fprintln(w, line)
	c.Fprintf(w, "    %s\n", title)
	c.Fprintln(w, line)
}

// Success and Failure decorate one-line outcomes on the console.
func Success(w io.Writer, format string, a ...any) {
	color.New(color.FgGreen).Fprintf(w, "✓ "+format+"\n", a...)
}

func Failure(w io.Writer, format string, a ...any) {
	color.New(color.FgRed).Fprintf(w, "✗ "+format+"\n", a...)
}
