package log

import (
	"io"
	"os"

	"github.com/inconshreveable/log15"
)

type Logger = log15.Logger

type Lvl = log15.Lvl

const (
	LvlCrit  = log15.LvlCrit
	LvlError = log15.LvlError
	LvlWarn  = log15.LvlWarn
	LvlInfo  = log15.LvlInfo
	LvlDebug = log15.LvlDebug
)

func init() {
	Root().SetHandler(log15.LvlFilterHandler(LvlInfo, log15.StreamHandler(os.Stderr, log15.TerminalFormat())))
}

// New returns a new logger with the given context.
func New(ctx ...interface{}) Logger {
	return log15.New(ctx...)
}

func Root() Logger {
	return log15.Root()
}

// Setup redirects the root logger to w, filtering records below verbosity.
// Verbosity follows the usual scale: 0=crit, 1=error, 2=warn, 3=info, 4=debug.
func Setup(w io.Writer, verbosity int, json bool) {
	format := log15.TerminalFormat()
	if json {
		format = log15.JsonFormat()
	}
	Root().SetHandler(log15.LvlFilterHandler(Lvl(verbosity), log15.StreamHandler(w, format)))
}

// Discard silences the root logger.
func Discard() {
	Root().SetHandler(log15.DiscardHandler())
}

func Debug(msg string, ctx ...interface{}) {
	Root().Debug(msg, ctx...)
}

func Info(msg string, ctx ...interface{}) {
	Root().Info(msg, ctx...)
}

func Warn(msg string, ctx ...interface{}) {
	Root().Warn(msg, ctx...)
}

func Error(msg string, ctx ...interface{}) {
	Root().Error(msg, ctx...)
}

func Crit(msg string, ctx ...interface{}) {
	Root().Crit(msg, ctx...)
	os.Exit(1)
}
