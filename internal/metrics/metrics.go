package metrics

import (
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns the service's prometheus registry
type Collector struct {
	reg *prometheus.Registry

	PingsAccepted    prometheus.Counter
	PingsRejected    *prometheus.CounterVec // reason label
	PingsImplausible prometheus.Counter

	RateLimitedReqs *prometheus.CounterVec // surface label: ingest|public

	SnapshotCacheHits   prometheus.Counter
	SnapshotCacheMisses prometheus.Counter

	Arrivals   prometheus.Counter
	Departures prometheus.Counter

	NATSPublished   prometheus.Counter
	NATSPublishErrs prometheus.Counter
	NATSConnected   prometheus.Gauge
}

// NewCollector builds and registers the full metric set
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		PingsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracking_pings_accepted_total",
			Help: "Total location reports accepted and persisted.",
		}),
		PingsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tracking_pings_rejected_total",
			Help: "Total location reports rejected at intake.",
		}, []string{"reason"}),
		PingsImplausible: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracking_pings_implausible_total",
			Help: "Total reports persisted as implausible (soft rejects).",
		}),
		RateLimitedReqs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tracking_rate_limited_total",
			Help: "Total requests rejected by a rate limiter.",
		}, []string{"surface"}),
		SnapshotCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracking_snapshot_cache_hits_total",
			Help: "Public reads served from the snapshot cache.",
		}),
		SnapshotCacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracking_snapshot_cache_misses_total",
			Help: "Public reads that reached the store.",
		}),
		Arrivals: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracking_auto_arrivals_total",
			Help: "Automatic stop arrivals triggered by the geofence engine.",
		}),
		Departures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracking_auto_departures_total",
			Help: "Automatic stop departures triggered by the geofence engine.",
		}),
		NATSPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracking_nats_published_total",
			Help: "Total NATS messages published.",
		}),
		NATSPublishErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracking_nats_publish_errors_total",
			Help: "Total NATS publish errors.",
		}),
		NATSConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tracking_nats_connected",
			Help: "1 if NATS connection is established, 0 otherwise.",
		}),
	}

	// Register
	reg.MustRegister(
		c.PingsAccepted, c.PingsRejected, c.PingsImplausible,
		c.RateLimitedReqs,
		c.SnapshotCacheHits, c.SnapshotCacheMisses,
		c.Arrivals, c.Departures,
		c.NATSPublished, c.NATSPublishErrs, c.NATSConnected,
	)

	return c
}

// Serve exposes /metrics on addr and returns the server so the caller can
// shut it down
func (c *Collector) Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server error: %v", err)
		}
	}()
	return srv
}

// service.Metrics implementation

func (c *Collector) PingAccepted()              { c.PingsAccepted.Inc() }
func (c *Collector) PingRejected(reason string) { c.PingsRejected.WithLabelValues(reason).Inc() }
func (c *Collector) PingImplausible()           { c.PingsImplausible.Inc() }
func (c *Collector) RateLimited(surface string) { c.RateLimitedReqs.WithLabelValues(surface).Inc() }
func (c *Collector) CacheHit()                  { c.SnapshotCacheHits.Inc() }
func (c *Collector) CacheMiss()                 { c.SnapshotCacheMisses.Inc() }
func (c *Collector) AutoArrival()               { c.Arrivals.Inc() }
func (c *Collector) AutoDeparture()             { c.Departures.Inc() }

// activity.PublisherMetrics implementation

func (c *Collector) NATSPublishedInc() { c.NATSPublished.Inc() }
func (c *Collector) NATSPublishErrInc() { c.NATSPublishErrs.Inc() }
func (c *Collector) NATSSetConnected(connected bool) {
	if connected {
		c.NATSConnected.Set(1)
	} else {
		c.NATSConnected.Set(0)
	}
}
