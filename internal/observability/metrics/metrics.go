package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/gestao/internal/config"
	"go.uber.org/fx"
)

const (
	SubscriptionResultActive   = "active"
	SubscriptionResultInactive = "inactive"
	SubscriptionResultError    = "error"
)

// Config labels every series with the deployment it came from.
type Config struct {
	ServiceName string
	Environment string
}

// Metrics exposes the domain instruments of the billing core.
type Metrics struct {
	registry            *prometheus.Registry
	billingsGenerated   prometheus.Counter
	generationRuns      *prometheus.CounterVec
	billingTransitions  *prometheus.CounterVec
	subscriptionChecks  *prometheus.CounterVec
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

var Module = fx.Module("observability.metrics",
	fx.Provide(func(cfg config.Config) *Metrics {
		return New(Config{ServiceName: cfg.AppName, Environment: cfg.Environment})
	}),
)

// New builds the metrics on a private registry so tests never collide on the
// default registerer.
func New(cfg Config) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return newMetrics(registry, cfg)
}

func newMetrics(registry *prometheus.Registry, cfg Config) *Metrics {
	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "gestao"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	billingsGenerated := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "gestao_billings_generated_total",
		Help:        "Billing rows inserted by recurring generation.",
		ConstLabels: constLabels,
	})
	generationRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "gestao_billing_generation_runs_total",
		Help:        "Recurring generation runs by outcome.",
		ConstLabels: constLabels,
	}, []string{"outcome"})
	billingTransitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "gestao_billing_transitions_total",
		Help:        "Billing status transitions by target status.",
		ConstLabels: constLabels,
	}, []string{"to"})
	subscriptionChecks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "gestao_subscription_checks_total",
		Help:        "Subscription checks against the managed backend by result.",
		ConstLabels: constLabels,
	}, []string{"result"})
	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "gestao_http_requests_total",
		Help:        "HTTP requests by route and status class.",
		ConstLabels: constLabels,
	}, []string{"method", "route", "status"})
	httpRequestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "gestao_http_request_duration_seconds",
		Help:        "HTTP request latency by route.",
		Buckets:     []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		ConstLabels: constLabels,
	}, []string{"method", "route"})

	registry.MustRegister(
		billingsGenerated,
		generationRuns,
		billingTransitions,
		subscriptionChecks,
		httpRequests,
		httpRequestDuration,
	)

	return &Metrics{
		registry:            registry,
		billingsGenerated:   billingsGenerated,
		generationRuns:      generationRuns,
		billingTransitions:  billingTransitions,
		subscriptionChecks:  subscriptionChecks,
		httpRequests:        httpRequests,
		httpRequestDuration: httpRequestDuration,
	}
}

// AddBillingsGenerated records the rows a generation run actually inserted.
func (m *Metrics) AddBillingsGenerated(created int) {
	if m == nil || created <= 0 {
		return
	}
	m.billingsGenerated.Add(float64(created))
}

func (m *Metrics) IncGenerationRun(outcome string) {
	if m == nil {
		return
	}
	m.generationRuns.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncBillingTransition(to string) {
	if m == nil {
		return
	}
	m.billingTransitions.WithLabelValues(strings.TrimSpace(to)).Inc()
}

func (m *Metrics) IncSubscriptionCheck(result string) {
	if m == nil {
		return
	}
	m.subscriptionChecks.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// GinMiddleware counts requests by matched route to keep label cardinality low.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		method := c.Request.Method
		m.httpRequests.WithLabelValues(method, route, statusClass(c.Writer.Status())).Inc()
		m.httpRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

func statusClass(status int) string {
	if status < 100 {
		return "unknown"
	}
	return strconv.Itoa(status/100) + "xx"
}
