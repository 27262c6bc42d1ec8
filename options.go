package crossfilter

import (
	"log/slog"
	"time"

	"github.com/hupe1980/crossfilter/admission"
	"github.com/hupe1980/crossfilter/config"
	"github.com/hupe1980/crossfilter/headless"
	"github.com/hupe1980/crossfilter/i18n"
	"github.com/hupe1980/crossfilter/resolve"
	"github.com/hupe1980/crossfilter/tooltip"
)

type options struct {
	settings         config.Settings
	metricsCollector MetricsCollector
	logger           *Logger
	localizer        *i18n.Localizer
	builder          resolve.Builder
	strategies       []resolve.Strategy
	engine           headless.EngineFactory
	tooltips         tooltip.Service
	limits           admission.Limits
	noticeInterval   time.Duration
	onAbort          func(admission.Abort)
}

// Option configures an Interactor.
type Option func(*options)

// WithSettings replaces the interactivity settings. The default is
// config.Default().
func WithSettings(s config.Settings) Option {
	return func(o *options) {
		o.settings = s
	}
}

// WithMetrics configures the metrics collector.
//
// If nil is passed, NoopMetricsCollector is used.
func WithMetrics(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures the logger.
//
// If nil is passed, NoopLogger is used.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithLogLevel configures a text logger to stderr at level.
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithLocalizer configures the message catalog. The default is built from
// the settings locale.
func WithLocalizer(l *i18n.Localizer) Option {
	return func(o *options) {
		o.localizer = l
	}
}

// WithBuilder sets the host identity builder used when rendered datums match
// no row structurally.
func WithBuilder(b resolve.Builder) Option {
	return func(o *options) {
		o.builder = b
	}
}

// WithStrategies replaces the resolver tiers.
func WithStrategies(strategies ...resolve.Strategy) Option {
	return func(o *options) {
		o.strategies = strategies
	}
}

// WithEngine sets the pipeline engine used for advanced cross-filtering.
func WithEngine(f headless.EngineFactory) Option {
	return func(o *options) {
		o.engine = f
	}
}

// WithTooltipService sets the host tooltip service. Without one, tooltip
// events are ignored.
func WithTooltipService(svc tooltip.Service) Option {
	return func(o *options) {
		o.tooltips = svc
	}
}

// WithLimits replaces the admission bounds. The default limit is still
// taken from the settings unless limits.Default is set.
func WithLimits(limits admission.Limits) Option {
	return func(o *options) {
		o.limits = limits
	}
}

// WithNoticeInterval throttles abort notices to one per interval.
func WithNoticeInterval(d time.Duration) Option {
	return func(o *options) {
		o.noticeInterval = d
	}
}

// WithAbortHandler registers fn to receive abort status changes: a set
// status when a gesture is rejected and a cleared one when the next gesture
// is admitted.
func WithAbortHandler(fn func(admission.Abort)) Option {
	return func(o *options) {
		o.onAbort = fn
	}
}

func defaultOptions() options {
	limits := admission.DefaultLimits()
	// Zero defers the default limit to settings.SelectionMaxDataPoints.
	limits.Default = 0
	return options{
		settings:         config.Default(),
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		limits:           limits,
	}
}
