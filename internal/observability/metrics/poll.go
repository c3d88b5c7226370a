package metrics

import (
	"time"

	obserrors "github.com/target/citation-poller/internal/observability/errors"
	"github.com/target/citation-poller/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultNoop    = "noop"
)

// Outcome constants describe how far a successful poll cycle progressed.
const (
	OutcomePending   = "pending"
	OutcomeComplete  = "complete"
	OutcomePreserved = "preserved"
	OutcomeFailed    = "failed"
)

// PollMetric captures a single poll cycle for metric emission.
type PollMetric struct {
	Outcome  string
	Result   string
	Duration time.Duration
	Err      error
}

// EmitPollCycle emits standardised poll cycle metrics.
func EmitPollCycle(sink statsd.Sink, in PollMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"outcome": in.Outcome,
		"result":  in.Result,
	}

	if in.Err != nil && in.Result == ResultError {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("poll.cycle", 1, tags)

	if in.Duration > 0 {
		sink.Timing("poll.cycle_duration", in.Duration, CloneTags(tags))
	}
}

// TickMetric captures one scheduler tick.
type TickMetric struct {
	Fired    int
	Duration time.Duration
	Err      error
	// At is when the tick finished; it feeds the last-success gauge.
	At time.Time
}

// EmitSchedulerTick counts the tick and the triggers it fired. A successful tick also moves
// the scheduler.last_success_epoch gauge, which alerting uses to spot a stalled scheduler.
func EmitSchedulerTick(sink statsd.Sink, in TickMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{"result": ResultSuccess}
	switch {
	case in.Err != nil:
		tags["result"] = ResultError
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	case in.Fired == 0:
		tags["result"] = ResultNoop
	}

	sink.Count("scheduler.tick", 1, tags)
	if in.Fired > 0 {
		sink.Count("scheduler.triggers_fired", int64(in.Fired), CloneTags(tags))
	}
	if in.Duration > 0 {
		sink.Timing("scheduler.tick_duration", in.Duration, CloneTags(tags))
	}
	if in.Err == nil {
		sink.Gauge("scheduler.last_success_epoch", float64(in.At.Unix()), nil)
	}
}

// EmitSideEffectFailure counts a non-fatal cancel or notify failure.
func EmitSideEffectFailure(sink statsd.Sink, effect string, err error) {
	if sink == nil || err == nil {
		return
	}
	sink.Count("poll.side_effect_failure", 1, map[string]string{
		"effect":      effect,
		"error_class": obserrors.Classify(err),
	})
}

// EmitAlertDelivery counts one delivery attempt of a failure alert to sink.
func EmitAlertDelivery(sink statsd.Sink, name string, elapsed time.Duration, err error) {
	if sink == nil {
		return
	}
	tags := map[string]string{"sink": name, "result": ResultSuccess}
	if err != nil {
		tags["result"] = ResultError
	}
	sink.Count("notify.alert", 1, tags)
	sink.Timing("notify.alert_duration", elapsed, CloneTags(tags))
}

// CloneTags creates a shallow copy of a tag map, filtering out empty keys.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		if k == "" {
			continue
		}
		out[k] = v
	}
	return out
}
