package duel

import "expvar"

var (
	metricRequestsTotal     = expvar.NewInt("duel_requests_total")
	metricRequestsRejected  = expvar.NewInt("duel_request_rejected_total")
	metricRequestsExpired   = expvar.NewInt("duel_requests_expired_total")
	metricSessionsStarted   = expvar.NewInt("duel_sessions_started_total")
	metricSessionsPromoted  = expvar.NewInt("duel_sessions_promoted_total")
	metricSessionsResolved  = expvar.NewInt("duel_sessions_resolved_total")
	metricSessionsAbandoned = expvar.NewInt("duel_sessions_shutdown_total")
)
