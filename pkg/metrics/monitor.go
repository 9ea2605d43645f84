package metrics

import (
	"sync"
	"time"
)

// windowSize is the number of samples retained per metric.
const windowSize = 1000

// Well-known metric names recorded by the dispatch queue.
const (
	MetricProcessingTime  = "processing_time"
	MetricQueueSize       = "queue_size"
	MetricErrorRate       = "error_rate"
	MetricDropped         = "notifications_dropped"
	MetricDroppedOverflow = "queue_dropped_overflow"
)

// Alert describes a threshold breach.
type Alert struct {
	Metric    string
	Value     float64
	Threshold float64
	At        time.Time
}

// AlertFunc is invoked synchronously when a threshold is breached.
type AlertFunc func(Alert)

// Snapshot summarizes the retained samples of one metric.
type Snapshot struct {
	Avg   float64
	Min   float64
	Max   float64
	Count int
}

type series struct {
	samples []float64
	start   int // ring buffer head once full
}

func (s *series) add(v float64) {
	if len(s.samples) < windowSize {
		s.samples = append(s.samples, v)
		return
	}
	s.samples[s.start] = v
	s.start = (s.start + 1) % windowSize
}

// Monitor records named metrics and evaluates alert thresholds.
// Safe for concurrent use. The zero value is not usable; use NewMonitor.
type Monitor struct {
	mu         sync.Mutex
	series     map[string]*series
	thresholds map[string]float64
	alerts     []AlertFunc
	cooldown   time.Duration
	lastFired  map[string]time.Time
	now        func() time.Time
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithThreshold sets or overrides the alert threshold for a metric.
// Recording a value strictly greater than the threshold fires the alerts.
func WithThreshold(metric string, value float64) Option {
	return func(m *Monitor) {
		m.thresholds[metric] = value
	}
}

// WithAlertCooldown suppresses repeat alerts for the same metric within d.
// A zero cooldown (the default) fires on every breach.
func WithAlertCooldown(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.cooldown = d
		}
	}
}

// WithClock injects a custom time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) {
		if now != nil {
			m.now = now
		}
	}
}

// NewMonitor creates a monitor with the default threshold rules:
// processing_time > 5000, queue_size > 5000, error_rate > 0.1.
func NewMonitor(opts ...Option) *Monitor {
	m := &Monitor{
		series: make(map[string]*series),
		thresholds: map[string]float64{
			MetricProcessingTime: 5000,
			MetricQueueSize:      5000,
			MetricErrorRate:      0.1,
		},
		lastFired: make(map[string]time.Time),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddAlert registers a listener. All listeners fire for every breach.
func (m *Monitor) AddAlert(fn AlertFunc) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts = append(m.alerts, fn)
}

// Record appends a sample to the metric's rolling window and evaluates
// the metric's threshold rule, if any. Alert listeners run synchronously
// on the calling goroutine.
func (m *Monitor) Record(metric string, value float64) {
	m.mu.Lock()

	s, ok := m.series[metric]
	if !ok {
		s = &series{}
		m.series[metric] = s
	}
	s.add(value)

	var fire []AlertFunc
	var alert Alert

	threshold, hasRule := m.thresholds[metric]
	if hasRule && value > threshold {
		now := m.now()
		last, fired := m.lastFired[metric]
		if m.cooldown == 0 || !fired || now.Sub(last) >= m.cooldown {
			m.lastFired[metric] = now
			fire = append(fire, m.alerts...)
			alert = Alert{Metric: metric, Value: value, Threshold: threshold, At: now}
		}
	}
	m.mu.Unlock()

	for _, fn := range fire {
		fn(alert)
	}
}

// Get returns the summary of the retained window for a metric.
// The second return value is false when the metric has no samples.
func (m *Monitor) Get(metric string) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.series[metric]
	if !ok || len(s.samples) == 0 {
		return Snapshot{}, false
	}

	snap := Snapshot{
		Min:   s.samples[0],
		Max:   s.samples[0],
		Count: len(s.samples),
	}
	sum := 0.0
	for _, v := range s.samples {
		sum += v
		if v < snap.Min {
			snap.Min = v
		}
		if v > snap.Max {
			snap.Max = v
		}
	}
	snap.Avg = sum / float64(snap.Count)
	return snap, true
}

// Reset drops all recorded samples and cooldown state.
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.series = make(map[string]*series)
	m.lastFired = make(map[string]time.Time)
}
