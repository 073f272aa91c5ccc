package utils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/samgozman/vn-market-thread/pkg/errlvl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockHub struct {
	mock.Mock
}

func (m *MockHub) CaptureException(exception error) *sentry.EventID {
	args := m.Called(exception)
	return args.Get(0).(*sentry.EventID)
}

func (m *MockHub) WithScope(callback func(scope *sentry.Scope)) {
	m.Called(callback)
	callback(sentry.NewScope())
}

func TestCaptureSentryException(t *testing.T) {
	hub := new(MockHub)
	err := errors.New("some error")
	hub.On("WithScope", mock.Anything)
	hub.On("CaptureException", err).Return(new(sentry.EventID))

	CaptureSentryException("collectorGoldFetchError", hub, err)

	hub.AssertExpectations(t)
}

func TestCaptureSentryException_Event(t *testing.T) {
	tests := []struct {
		name      string
		eventName string
		err       error
		tags      []map[string]string
		wantLevel sentry.Level
	}{
		{
			name:      "plain error",
			eventName: "collectorGoldFetchError",
			err:       errors.New("some error"),
			wantLevel: sentry.LevelError,
		},
		{
			name:      "warn error with tags",
			eventName: "collectorCryptoFetchError",
			err:       errlvl.Wrap(errors.New("crypto: failed to fetch prices"), errlvl.WARN),
			tags:      []map[string]string{{"source": "crypto", "run_id": "0b7f"}},
			wantLevel: sentry.LevelWarning,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured *sentry.Event
			client, err := sentry.NewClient(sentry.ClientOptions{
				BeforeSend: func(e *sentry.Event, _ *sentry.EventHint) *sentry.Event {
					captured = e
					return nil
				},
			})
			require.NoError(t, err)
			hub := sentry.NewHub(client, sentry.NewScope())

			CaptureSentryException(tt.eventName, hub, tt.err, tt.tags...)

			require.NotNil(t, captured)
			require.NotEmpty(t, captured.Exception)
			assert.Equal(t, tt.eventName, captured.Exception[len(captured.Exception)-1].Type)
			assert.Equal(t, tt.wantLevel, captured.Level)
			for _, tags := range tt.tags {
				for k, v := range tags {
					assert.Equal(t, v, captured.Tags[k])
				}
			}
		})
	}
}

type customError struct {
	// severity level of the error
	level errlvl.Lvl
	// errors stack (preferably generic error + the real error)
	err error
}

func (e *customError) Error() string {
	return errlvl.Wrap(e.err, e.level).Error()
}

func (e *customError) Unwrap() error {
	return errlvl.Wrap(e.err, e.level)
}

func newError(lvl errlvl.Lvl, err error) *customError {
	return &customError{
		level: lvl,
		err:   err,
	}
}

func Test_errorsLevelMatcher(t *testing.T) {
	normalErr := errors.New("normal error")
	publisherErr := newError(errlvl.INFO, normalErr)
	joinedErr := errors.Join(errors.New("some other error"), publisherErr)
	formattedErr := fmt.Errorf("[customError]: %w", joinedErr)

	type args struct {
		err error
	}
	tests := []struct {
		name string
		args args
		want sentry.Level
	}{
		{
			name: "Test with nil error",
			args: args{
				err: nil,
			},
			want: sentry.LevelDebug,
		},
		{
			name: "Test with generic error",
			args: args{
				err: errors.New("generic error"),
			},
			want: sentry.LevelError,
		},
		{
			name: "Test with ErrError",
			args: args{
				err: errlvl.ErrError,
			},
			want: sentry.LevelError,
		},
		{
			name: "Test with ErrFatal",
			args: args{
				err: errlvl.ErrFatal,
			},
			want: sentry.LevelFatal,
		},
		{
			name: "Test with ErrWarn",
			args: args{
				err: errlvl.ErrWarn,
			},
			want: sentry.LevelWarning,
		},
		{
			name: "Test with ErrInfo",
			args: args{
				err: errlvl.ErrInfo,
			},
			want: sentry.LevelInfo,
		},
		{
			name: "Test with ErrDebug",
			args: args{
				err: errlvl.ErrDebug,
			},
			want: sentry.LevelDebug,
		},
		{
			name: "Test with difficult error wrapped in customError",
			args: args{
				err: formattedErr,
			},
			want: sentry.LevelInfo,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errorsLevelMatcher(tt.args.err); got != tt.want {
				t.Errorf("errorsLevelMatcher() = %v, want %v", got, tt.want)
			}
		})
	}
}
