package service

// Metrics is the slice of instrumentation the services emit. A nil Metrics
// is valid and means no instrumentation.
type Metrics interface {
	PingAccepted()
	PingRejected(reason string)
	PingImplausible()
	RateLimited(surface string)
	CacheHit()
	CacheMiss()
	AutoArrival()
	AutoDeparture()
}
