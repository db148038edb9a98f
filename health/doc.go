// Package health provides health checking for the gateway process.
//
// A Checker reports one component's Status: Healthy, Degraded, or
// Unhealthy. The Aggregator runs a set of checkers under a shared timeout
// and folds their results into an overall status. RegisterHandlers mounts
// the probe endpoints on a chi router:
//
//	agg := health.NewAggregator()
//	agg.Register("signing_key", health.NewSigningKeyChecker(codec))
//	agg.Register("users", health.NewUserStoreChecker(users))
//	agg.Register("runtime", health.NewRuntimeChecker(health.RuntimeCheckerConfig{}))
//	health.RegisterHandlers(r, agg)
//
// /healthz answers as long as the process serves HTTP. /readyz and /health
// run every checker; an unhealthy component turns them into 503.
package health
