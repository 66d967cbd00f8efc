package robocoop

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/api/key"
	"go.opentelemetry.io/otel/api/metric"
)

// instrumenter holds data for core instrumentation
type instrumenter struct {
	appName     string
	coreMetrics coreMetrics
	meter       metric.Meter
}

// coreMetrics holds the engine metrics
type coreMetrics struct {
	msgsSeen                   metric.BoundInt64Counter
	msgsProcessed              metric.BoundInt64Counter
	msgProcessingLatencyMillis metric.BoundInt64Measure
}

// newInstrumenter creates a new core instrumenter
func newInstrumenter(appName string, meter metric.Meter) (ins *instrumenter) {
	ins = new(instrumenter)

	defaultLabels := meter.Labels(key.New("name").String(appName))

	msgsSeen := meter.NewInt64Counter("msgSeen", metric.WithKeys(key.New("name")))
	msgsProcessed := meter.NewInt64Counter("msgProcessed", metric.WithKeys(key.New("name")))
	processingLatency := meter.NewInt64Measure("msgProcessingLatencyMillis", metric.WithKeys(key.New("name")))

	ins.appName = appName
	ins.meter = meter
	ins.coreMetrics = coreMetrics{msgsSeen: msgsSeen.Bind(defaultLabels),
		msgsProcessed:              msgsProcessed.Bind(defaultLabels),
		msgProcessingLatencyMillis: processingLatency.Bind(defaultLabels)}

	return ins
}

// measure runs fn and returns the time it took to execute
func measure(fn func()) (duration time.Duration) {
	before := time.Now()
	fn()

	return time.Since(before)
}

// instrumentProcessing records a processed message along with its processing latency
func (ins *instrumenter) instrumentProcessing(d time.Duration) {
	ins.coreMetrics.msgsProcessed.Add(context.Background(), 1)
	ins.coreMetrics.msgProcessingLatencyMillis.Record(context.Background(), d.Milliseconds())
}
