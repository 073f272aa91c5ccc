package errlvl

import (
	"errors"
	"fmt"
)

type Lvl uint8

const (
	DEBUG Lvl = iota + 1
	INFO
	WARN
	ERROR
	FATAL
)

// String returns the name of the level as it is printed in the error prefix.
func (l Lvl) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ErrorLevel is a type that represents the severity of an error in the application.
//
// Every package of the bot wraps its errors with one of these levels, so the job can decide
// how loud the failure should be (log level, Sentry level).
type ErrorLevel error

var (
	ErrDebug ErrorLevel = errors.New("[DEBUG]") // ErrDebug marks errors that are only interesting while debugging.
	ErrInfo  ErrorLevel = errors.New("[INFO]")  // ErrInfo marks expected conditions (disabled delivery, empty message).
	ErrWarn  ErrorLevel = errors.New("[WARN]")  // ErrWarn marks degraded results (one source failed).
	ErrError ErrorLevel = errors.New("[ERROR]") // ErrError marks failures that need attention.
	ErrFatal ErrorLevel = errors.New("[FATAL]") // ErrFatal marks failures that stop the process.
)

// Wrap wraps the given error with the given level.
// An error that already has a level keeps it.
func Wrap(err error, level Lvl) error {
	if err == nil || hasLevel(err) {
		return err
	}

	return fmt.Errorf("%w %w", sentinel(level), err)
}

// Of returns the level of the given error. Errors without a level are treated as ERROR.
func Of(err error) Lvl {
	switch {
	case err == nil:
		return DEBUG
	case errors.Is(err, ErrFatal):
		return FATAL
	case errors.Is(err, ErrError):
		return ERROR
	case errors.Is(err, ErrWarn):
		return WARN
	case errors.Is(err, ErrInfo):
		return INFO
	case errors.Is(err, ErrDebug):
		return DEBUG
	default:
		return ERROR
	}
}

func sentinel(level Lvl) ErrorLevel {
	switch level {
	case DEBUG:
		return ErrDebug
	case INFO:
		return ErrInfo
	case WARN:
		return ErrWarn
	case FATAL:
		return ErrFatal
	default:
		return ErrError
	}
}

// hasLevel checks if the given error has a level set already.
func hasLevel(err error) bool {
	return errors.Is(err, ErrDebug) || errors.Is(err, ErrInfo) || errors.Is(err, ErrWarn) || errors.Is(err, ErrError) || errors.Is(err, ErrFatal)
}
