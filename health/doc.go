// Package health reports the operational state of the fetch pipeline's
// components.
//
// A Checker is anything that can report its health; results carry a
// three-level Status (healthy, degraded, unhealthy) plus a message and
// free-form details. The package ships checkers for the pieces the
// pipeline actually runs on: circuit breakers guarding remote sites,
// the listing cache, and process memory. An Aggregator fans checks out
// in parallel with a shared timeout and folds the results into one
// overall status.
//
// # Basic Usage
//
//	// Surface a breaker's state as a health check
//	siteCheck := health.NewBreakerChecker("listing-site", breaker)
//
//	// Watch the cache's hit ratio and occupancy
//	cacheCheck := health.NewCacheChecker("listing-cache", health.CacheCheckerConfig{
//	    Stats:   c.Stats,
//	    Len:     c.Len,
//	    MaxSize: 500,
//	})
//
//	agg := health.NewAggregator(health.AggregatorConfig{})
//	agg.Register("listing-site", siteCheck)
//	agg.Register("listing-cache", cacheCheck)
//	agg.Register("memory", health.NewMemoryChecker(health.MemoryCheckerConfig{}))
//
//	results := agg.CheckAll(ctx)
//	overall := agg.OverallStatus(results)
//
// # HTTP Endpoints
//
// Standard probe handlers are provided for serving the status:
//
//	mux := http.NewServeMux()
//	health.RegisterHandlers(mux, agg)
//	// GET /healthz  liveness, always OK while the process runs
//	// GET /readyz   readiness, 503 when any check is unhealthy
//	// GET /health   detailed JSON per check
package health
