package httptransport

import "expvar"

var (
	metricChallengeTotal  = expvar.NewInt("http_challenge_total")
	metricChallengeErrors = expvar.NewInt("http_challenge_errors_total")
	metricAcceptTotal     = expvar.NewInt("http_accept_total")
	metricAcceptErrors    = expvar.NewInt("http_accept_errors_total")

	metricEventStreamsTotal  = expvar.NewInt("player_event_streams_total")
	metricEventStreamsActive = expvar.NewInt("player_event_streams_active")
)
