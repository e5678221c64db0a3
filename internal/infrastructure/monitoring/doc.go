/*
Package monitoring exports object runtime activity to Prometheus.

# Overview

Metrics implements object.Observer. Once installed it counts allocations,
destructions, resurrections, weak extensions, upgrades, client registrations,
cycle rejections and broadcasts. It also carries the request metrics of the
diagnostics server and the run metrics of the stress scenarios.

# Usage

	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg, "objmgr")
	object.SetObserver(metrics)

	router := monitoring.NewRouter(metrics, reg)
	_ = router.Run(":9090")

# Endpoints

	GET /metrics        Prometheus exposition
	GET /debug/objects  object.ReadStats plus the observer snapshot
*/
package monitoring
