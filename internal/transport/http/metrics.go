package httptransport

import "expvar"

var (
	metricSellTotal  = expvar.NewInt("auction_sell_total")
	metricSellErrors = expvar.NewInt("auction_sell_errors_total")

	metricUndoTotal  = expvar.NewInt("auction_undo_total")
	metricUndoErrors = expvar.NewInt("auction_undo_errors_total")

	metricSnapshotTotal = expvar.NewInt("auction_snapshot_total")

	metricSSEConnectionsTotal  = expvar.NewInt("sse_connections_total")
	metricSSEConnectionsActive = expvar.NewInt("sse_connections_active")
)
