// Package metrics provides a lightweight rolling-window metric recorder
// with threshold-based alerting.
//
// Each named metric keeps the last 1000 recorded samples. Threshold
// rules are evaluated synchronously on every Record call and fire all
// registered alert listeners when breached.
//
//	mon := metrics.NewMonitor(
//	    metrics.WithThreshold("queue_size", 5000),
//	    metrics.WithAlertCooldown(time.Minute),
//	)
//	mon.AddAlert(func(a metrics.Alert) {
//	    log.Warn("threshold breached", "metric", a.Metric, "value", a.Value)
//	})
//
//	mon.Record("queue_size", float64(q.Len()))
//
// Without a cooldown every breach fires every listener, matching the
// behavior of simple in-process monitors; long-running services should
// set a cooldown to avoid alert storms.
package metrics
