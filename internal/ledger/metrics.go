package ledger

import "expvar"

var (
	metricTransferTotal    = expvar.NewInt("duel_transfer_total")
	metricTransferFailed   = expvar.NewInt("duel_transfer_failed_total")
	metricTransferRefunded = expvar.NewInt("duel_transfer_refunded_total")
	metricTransferCritical = expvar.NewInt("duel_transfer_critical_total")
)
