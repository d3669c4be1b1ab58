package prom

import (
	"fmt"
	"sync"

	xhttp "github.com/NdanyuzweGentil/My-DS-Portfolio/pkg/http"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

const (
	SystemContact  = "contact"
	SystemHTTP     = "http"
	SystemNotifier = "notifier"
)

const (
	MetricContactSubmissions   = "submissions_total"
	MetricContactRateLimited   = "rate_limited_total"
	MetricContactStatusUpdates = "status_updates_total"
	MetricHTTPRequestDuration  = "request_duration_seconds"
	MetricNotifierDeliveries   = "deliveries_total"
	MetricNotifierQueueDepth   = "queue_depth"
)

const (
	TypeCounter      = "counter"
	TypeCounterVec   = "counterVec"
	TypeHistogram    = "histogram"
	TypeHistogramVec = "histogramVec"
	TypeGaugeVec     = "gaugeVec"
)

var lockCreateMetricLock = &sync.Mutex{}
var namespace = "none"

var MetricSystemEnabled = false

var MetricCollectionCounters = make(map[string]prometheus.Counter)
var MetricCollectionCounterVec = make(map[string]*prometheus.CounterVec)
var MetricCollectionGaugeVec = make(map[string]*prometheus.GaugeVec)
var MetricCollectionHistogram = make(map[string]prometheus.Histogram)
var MetricCollectionHistogramVec = make(map[string]*prometheus.HistogramVec)

var defaultLabels prometheus.Labels

// registry holds everything Create registers. It is private so repeated
// Create calls in one process do not collide on the global registerer.
var registry = prometheus.NewRegistry()

// Create registers the application metrics. Calling it again is a no-op.
func Create(host string, env string, nameSpace string) error {
	lockCreateMetricLock.Lock()
	if MetricSystemEnabled {
		lockCreateMetricLock.Unlock()
		return nil
	}
	defaultLabels = make(prometheus.Labels)
	defaultLabels["env"] = env
	defaultLabels["instance"] = host
	namespace = nameSpace
	lockCreateMetricLock.Unlock()

	var err error
	hasError := func(e error) {
		if err == nil && e != nil {
			err = e
		}
	}

	hasError(createCounterVec(SystemContact, MetricContactSubmissions, "Contact submissions by outcome.", []string{"result"}))
	hasError(createCounter(SystemContact, MetricContactRateLimited, "Contact submissions rejected by the rate limiter."))
	hasError(createCounterVec(SystemContact, MetricContactStatusUpdates, "Status changes by target status.", []string{"status"}))
	hasError(createHistogramVec(SystemHTTP, MetricHTTPRequestDuration, "HTTP request latency.", []string{"method", "code"}))
	hasError(createCounterVec(SystemNotifier, MetricNotifierDeliveries, "Notification e-mails by outcome.", []string{"result"}))
	hasError(createGaugeVec(SystemNotifier, MetricNotifierQueueDepth, "Notification stream entries by kind.", []string{"kind"}))

	if err == nil {
		lockCreateMetricLock.Lock()
		MetricSystemEnabled = true
		lockCreateMetricLock.Unlock()
	}
	return err
}

func CreateMetric(metricType, metricSubsystem, metricName, help string, labelsValues ...string) error {
	switch metricType {
	case TypeCounter:
		return createCounter(metricSubsystem, metricName, help)
	case TypeCounterVec:
		return createCounterVec(metricSubsystem, metricName, help, labelsValues)
	case TypeHistogram:
		return createHistogram(metricSubsystem, metricName, help)
	case TypeHistogramVec:
		return createHistogramVec(metricSubsystem, metricName, help, labelsValues)
	case TypeGaugeVec:
		return createGaugeVec(metricSubsystem, metricName, help, labelsValues)
	}
	return fmt.Errorf("metric type %s is not defined", metricType)
}

// Handler exposes the registry in the Prometheus text format.
func Handler() fasthttp.RequestHandler {
	return fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
}

func ListenAndServer(addr string, url string) {
	s := xhttp.CreateServer()
	s.GET(url, Handler())
	logger.Info("[metrics-server] listening...", "addr", addr, "url", url)
	if err := s.ListenAndServe(addr); err != nil {
		logger.Error("[metrics-server] http listen error", "error", err)
	}
}

func createCounter(subsystem, name, help string) error {
	lockCreateMetricLock.Lock()
	defer lockCreateMetricLock.Unlock()
	MetricCollectionCounters[subsystem+name] = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: defaultLabels,
	})
	return registry.Register(MetricCollectionCounters[subsystem+name])
}

func createCounterVec(subsystem, name, help string, labels []string) error {
	lockCreateMetricLock.Lock()
	defer lockCreateMetricLock.Unlock()
	MetricCollectionCounterVec[subsystem+name] = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: defaultLabels,
	}, labels)
	return registry.Register(MetricCollectionCounterVec[subsystem+name])
}

func createHistogram(subsystem, name, help string) error {
	lockCreateMetricLock.Lock()
	defer lockCreateMetricLock.Unlock()
	MetricCollectionHistogram[subsystem+name] = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: defaultLabels,
		Buckets:     prometheus.DefBuckets,
	})
	return registry.Register(MetricCollectionHistogram[subsystem+name])
}

func createHistogramVec(subsystem, name, help string, labels []string) error {
	lockCreateMetricLock.Lock()
	defer lockCreateMetricLock.Unlock()
	MetricCollectionHistogramVec[subsystem+name] = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: defaultLabels,
		Buckets:     prometheus.DefBuckets,
	}, labels)
	return registry.Register(MetricCollectionHistogramVec[subsystem+name])
}

func createGaugeVec(subsystem, name, help string, labels []string) error {
	lockCreateMetricLock.Lock()
	defer lockCreateMetricLock.Unlock()

	MetricCollectionGaugeVec[subsystem+name] = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: defaultLabels,
	}, labels)
	return registry.Register(MetricCollectionGaugeVec[subsystem+name])
}

func IncCounter(subsystem, name string) {
	AddCounter(subsystem, name, 1)
}

func AddCounter(subsystem, name string, number float64) {
	if !MetricSystemEnabled {
		return
	}
	if v, ok := MetricCollectionCounters[subsystem+name]; ok {
		v.Add(number)
		return
	}
	logger.Warn("[metrics-server] counter not found", "subsystem", subsystem, "name", name)
}

func SetGaugeVec(subsystem, name string, num float64, labelValues ...string) {
	if !MetricSystemEnabled {
		return
	}
	if v, ok := MetricCollectionGaugeVec[subsystem+name]; ok {
		v.WithLabelValues(labelValues...).Set(num)
		return
	}
	logger.Warn("[metrics-server] gauge not found", "subsystem", subsystem, "name", name)
}

func AddCounterVec(subsystem, name string, num float64, labelValues ...string) {
	if !MetricSystemEnabled {
		return
	}
	if v, ok := MetricCollectionCounterVec[subsystem+name]; ok {
		v.WithLabelValues(labelValues...).Add(num)
		return
	}
	logger.Warn("[metrics-server] counter vec not found", "subsystem", subsystem, "name", name)
}

func IncCounterVec(subsystem, name string, labelValues ...string) {
	AddCounterVec(subsystem, name, 1, labelValues...)
}

func AddHistogramVec(subsystem, name string, number float64, labelValues ...string) {
	if !MetricSystemEnabled {
		return
	}
	if v, ok := MetricCollectionHistogramVec[subsystem+name]; ok {
		v.WithLabelValues(labelValues...).Observe(number)
		return
	}
	logger.Warn("[metrics-server] histogram vec not found", "subsystem", subsystem, "name", name)
}
