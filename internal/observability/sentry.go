package observability

import (
	"errors"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/mauv0809/finance-dashboard/internal/dashboard"
)

func InitSentry(dsn, env, release string) (func(), error) {
	if dsn == "" {
		return func() {}, nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: env,
		Release:     release,
	}); err != nil {
		return func() {}, err
	}
	return func() { sentry.Flush(2 * time.Second) }, nil
}

// CaptureErr reports err. Processing errors carry their stage and stack as context.
func CaptureErr(err error) {
	if err == nil {
		return
	}
	var uerr *dashboard.UnexpectedProcessingError
	if !errors.As(err, &uerr) {
		sentry.CaptureException(err)
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("stage", uerr.Stage)
		scope.SetContext("processing", sentry.Context{"stack": string(uerr.Stack)})
		sentry.CaptureException(uerr)
	})
}
