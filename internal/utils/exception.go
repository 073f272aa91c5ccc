package utils

import (
	"github.com/getsentry/sentry-go"
	"github.com/samgozman/vn-market-thread/pkg/errlvl"
)

type sentryHub interface {
	CaptureException(exception error) *sentry.EventID
	WithScope(callback func(scope *sentry.Scope))
}

// CaptureSentryException is a helper function that captures an exception with the given name and error.
// The main purpose of this function is to rewrite the exception type to the given name.
// In Sentry, the exception type is always the name of the error type, which is *collector.FetchError or
// *errors.joinError and is not very useful.
//
// Tags are set on the event scope (e.g. run_id, source).
func CaptureSentryException(name string, hub sentryHub, err error, tags ...map[string]string) {
	level := errorsLevelMatcher(err)
	hub.WithScope(func(scope *sentry.Scope) {
		for _, t := range tags {
			scope.SetTags(t)
		}
		scope.AddEventProcessor(func(e *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			// NOTE: we need to change top element type in the stack.
			// e.Exception[0] is the first element in the stack, so it's the bottom one.
			if n := len(e.Exception); n > 0 {
				e.Exception[n-1].Type = name
			}
			e.Level = level
			return e
		})
		hub.CaptureException(err)
	})
}

// errorsLevelMatcher is a helper function that returns the Sentry level for the given error.
func errorsLevelMatcher(err error) sentry.Level {
	switch errlvl.Of(err) {
	case errlvl.FATAL:
		return sentry.LevelFatal
	case errlvl.WARN:
		return sentry.LevelWarning
	case errlvl.INFO:
		return sentry.LevelInfo
	case errlvl.DEBUG:
		return sentry.LevelDebug
	default:
		return sentry.LevelError
	}
}
