package jobs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/samgozman/vn-market-thread/collector"
	"github.com/samgozman/vn-market-thread/composer"
	"github.com/samgozman/vn-market-thread/internal/utils"
	"github.com/samber/lo"
)

type marketCollector interface {
	CollectAll(ctx context.Context, configs collector.ServiceConfig) *collector.CollectionResult
}

type marketPublisher interface {
	Send(ctx context.Context, msg string) bool
}

// MarketJob collects the market data once, composes the update message and delivers it.
type MarketJob struct {
	collector marketCollector   // collector with all the registered providers
	publisher marketPublisher   // publisher that will send the message to the chat
	logger    *slog.Logger      // special logger for the job
	options   *marketJobOptions // options for the job
	out       io.Writer         // dry-run output
	now       func() time.Time  // clock for the message footer
}

type marketJobOptions struct {
	services      collector.ServiceConfig // per-source params for the collector
	shouldPublish bool                    // if true, will publish the message. Else: will just print it to the console (for development)
}

func NewMarketJob(c marketCollector, p marketPublisher) *MarketJob {
	return &MarketJob{
		collector: c,
		publisher: p,
		logger:    slog.Default(),
		options:   &marketJobOptions{services: collector.ServiceConfig{}},
		out:       os.Stdout,
		now:       time.Now,
	}
}

// WithServiceConfig sets the per-source params for the collection.
func (j *MarketJob) WithServiceConfig(cfg collector.ServiceConfig) *MarketJob {
	j.options.services = cfg
	return j
}

// WithLogger sets the logger of the job.
func (j *MarketJob) WithLogger(l *slog.Logger) *MarketJob {
	j.logger = l
	return j
}

// WithOutput sets the writer for the dry-run message.
func (j *MarketJob) WithOutput(w io.Writer) *MarketJob {
	j.out = w
	return j
}

// Publish sets the flag that will publish the message to the chat. Else: will just print it to the console (for development).
func (j *MarketJob) Publish() *MarketJob {
	j.options.shouldPublish = true
	return j
}

// Report is the summary of one run.
type Report struct {
	RunID     uuid.UUID // id of the run, attached to the logs and Sentry events
	Succeeded []string  // sources that returned data
	Failed    []string  // sources that failed
	Message   string    // composed message, empty if there was nothing to send
	Delivered bool      // true if the message was sent to Telegram
}

// Run runs the market update once. It never fails: failed sources are logged, captured
// and left out of the message.
func (j *MarketJob) Run(ctx context.Context) Report {
	report := Report{RunID: uuid.New()}
	logger := j.logger.With("run_id", report.RunID.String())

	tx := sentry.StartTransaction(ctx, "Job.MarketUpdate")
	tx.Op = "job-market"

	// Sentry performance monitoring
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub().Clone()
		ctx = sentry.SetHubOnContext(ctx, hub)
	}
	hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("run_id", report.RunID.String())
	})

	defer func() {
		tx.Finish()
		hub.Flush(2 * time.Second)
	}()

	span := sentry.StartSpan(ctx, "Collector.CollectAll", sentry.WithTransactionName("MarketJob.Run"))
	res := j.collector.CollectAll(ctx, j.options.services)
	span.Finish()

	report.Succeeded = res.Succeeded()
	report.Failed = lo.Map(res.Failed(), func(o collector.Outcome, _ int) string {
		return o.Source
	})
	for _, o := range res.Failed() {
		hub.AddBreadcrumb(&sentry.Breadcrumb{
			Category: "collector",
			Message:  fmt.Sprintf("Source %s failed", o.Source),
			Level:    sentry.LevelWarning,
		}, nil)
		utils.CaptureSentryException(captureName(o.Source), hub, o.Err, map[string]string{
			"source": o.Source,
			"run_id": report.RunID.String(),
		})
	}
	hub.AddBreadcrumb(&sentry.Breadcrumb{
		Category: "successful",
		Message:  fmt.Sprintf("CollectAll returned %d of %d sources", len(report.Succeeded), res.Len()),
		Level:    sentry.LevelInfo,
	}, nil)
	logger.Info("[MarketJob][CollectAll] Collection finished",
		"succeeded", strings.Join(report.Succeeded, ","),
		"failed", strings.Join(report.Failed, ","),
	)

	span = sentry.StartSpan(ctx, "Compose", sentry.WithTransactionName("MarketJob.Run"))
	report.Message = composer.Compose(composer.SectionsFrom(res), j.now())
	span.Finish()
	if report.Message == "" {
		logger.Warn("[MarketJob][Compose] No data to send")
		hub.AddBreadcrumb(&sentry.Breadcrumb{
			Category: "debug",
			Message:  "No data to send",
			Level:    sentry.LevelDebug,
		}, nil)
		return report
	}

	if !j.options.shouldPublish {
		_, _ = fmt.Fprintln(j.out, report.Message)
		return report
	}

	span = sentry.StartSpan(ctx, "Publish", sentry.WithTransactionName("MarketJob.Run"))
	report.Delivered = j.publisher.Send(ctx, report.Message)
	span.Finish()
	if !report.Delivered {
		hub.AddBreadcrumb(&sentry.Breadcrumb{
			Category: "publisher",
			Message:  "Message was not delivered",
			Level:    sentry.LevelWarning,
		}, nil)
		return report
	}

	hub.AddBreadcrumb(&sentry.Breadcrumb{
		Category: "successful",
		Message:  "Market update published successfully",
		Level:    sentry.LevelInfo,
	}, nil)

	return report
}

// captureName is the Sentry exception type of a failed source: "gold" => "jobMarketGoldFetchError".
func captureName(source string) string {
	if source == "" {
		return "jobMarketFetchError"
	}
	return "jobMarket" + strings.ToUpper(source[:1]) + source[1:] + "FetchError"
}
