package log

import (
	"bytes"
	"runtime/debug"

	"github.com/rs/zerolog"
)

// Panic renders a recovered panic value with a stack trace trimmed of the
// capture machinery frames above the panic site.
func Panic(v any) func(e *zerolog.Event) {
	return func(e *zerolog.Event) {
		e.Dict("panic", zerolog.Dict().Any("content", v).Bytes("stack_traces", panicStack()))
	}
}

func panicStack() []byte {
	lines := bytes.Split(debug.Stack(), []byte("\n"))
	if len(lines) > 11 {
		lines = lines[11:]
	}
	return bytes.Join(lines, []byte("\n"))
}
