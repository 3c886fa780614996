package log

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/xeptore/flaw/v8"
)

// Flaw renders err into the event. Flaw errors are expanded into their
// inner error, appended records, joined errors, and stack trace. Anything
// else goes through the plain error field.
func Flaw(err error) func(e *zerolog.Event) {
	return func(e *zerolog.Event) {
		flawErr := new(flaw.Flaw)
		if !errors.As(err, &flawErr) {
			e.Err(err)
			return
		}

		e.Dict(
			"error",
			zerolog.
				Dict().
				Str("message", flawErr.Inner).
				Str("type_name", flawErr.InnerType).
				Str("syntax_representation", flawErr.InnerSyntaxRepr),
		)
		e.Array("records", flawRecords(flawErr))
		e.Array("joined_errors", flawJoinedErrors(flawErr))
		e.Array("stack_traces", flawStackTrace(flawErr))
	}
}

func flawRecords(f *flaw.Flaw) *zerolog.Array {
	arr := zerolog.Arr()
	for _, rec := range f.Records {
		d := zerolog.Dict().Str("function", rec.Function)
		if b, err := json.MarshalWithOption(rec.Payload, json.UnorderedMap(), json.DisableNormalizeUTF8(), json.DisableHTMLEscape()); nil != err {
			d.Dict("payload", zerolog.Dict().Str("error", err.Error()).Str("raw", fmt.Sprintf("%#+v", rec.Payload)))
		} else {
			d.RawJSON("payload", b)
		}
		arr.Dict(d)
	}
	return arr
}

func flawJoinedErrors(f *flaw.Flaw) *zerolog.Array {
	arr := zerolog.Arr()
	for _, joined := range f.JoinedErrors {
		d := zerolog.Dict().Dict(
			"error",
			zerolog.
				Dict().
				Str("message", joined.Message).
				Str("type_name", joined.TypeName).
				Str("syntax_representation", joined.SyntaxRepr),
		)
		if st := joined.CallerStackTrace; nil != st {
			d.Dict(
				"caller_stack_trace",
				zerolog.
					Dict().
					Str("location", fmt.Sprintf("%s:%d", st.File, st.Line)).
					Str("function", st.Function),
			)
		} else {
			d.Stringer("caller_stack_trace", nil)
		}
		arr.Dict(d)
	}
	return arr
}

func flawStackTrace(f *flaw.Flaw) *zerolog.Array {
	arr := zerolog.Arr()
	for _, frame := range f.StackTrace {
		arr.Dict(zerolog.Dict().Str("location", fmt.Sprintf("%s:%d", frame.File, frame.Line)).Str("function", frame.Function))
	}
	return arr
}
