// Package metrics names the counters and timings the captioning pipeline emits.
package metrics

import (
	"time"

	obserrors "github.com/image-captioner/captioner/internal/observability/errors"
	"github.com/image-captioner/captioner/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultNoop    = "noop"
)

// Bulk job transitions.
const (
	TransitionStarted  = "started"
	TransitionFinished = "finished"
	TransitionReaped   = "reaped"
)

// BulkJobMetric describes a bulk job lifecycle event.
type BulkJobMetric struct {
	Kind       string
	Transition string
	Result     string
	Duration   time.Duration
	Updated    int
	Err        error
}

// EmitBulkJobLifecycle emits bulk_job.transition and, when known, the job duration
// and number of descriptions written.
func EmitBulkJobLifecycle(sink statsd.Sink, in BulkJobMetric) {
	if sink == nil {
		return
	}
	tags := withErrorClass(map[string]string{
		"kind":       in.Kind,
		"transition": in.Transition,
		"result":     in.Result,
	}, in.Result, in.Err)

	sink.Count("bulk_job.transition", 1, tags)
	if in.Duration > 0 {
		sink.Timing("bulk_job.duration", in.Duration, CloneTags(tags))
	}
	if in.Updated > 0 {
		sink.Count("bulk_job.descriptions_written", int64(in.Updated), CloneTags(tags))
	}
}

// EmitCaptionBatch records one captioning backend call.
func EmitCaptionBatch(sink statsd.Sink, backend string, urls int, d time.Duration, err error) {
	if sink == nil {
		return
	}
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	tags := withErrorClass(map[string]string{"backend": backend, "result": result}, result, err)
	sink.Count("caption.batch", 1, tags)
	sink.Count("caption.images", int64(urls), CloneTags(tags))
	sink.Timing("caption.duration", d, CloneTags(tags))
}

// EmitWebhook records the outcome of one webhook delivery.
func EmitWebhook(sink statsd.Sink, topic, result string, err error) {
	if sink == nil {
		return
	}
	sink.Count("webhook.delivery", 1, withErrorClass(map[string]string{
		"topic":  topic,
		"result": result,
	}, result, err))
}

// EmitReaper records how many stale jobs one sweep closed.
func EmitReaper(sink statsd.Sink, closed int64, err error) {
	if sink == nil {
		return
	}
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	tags := withErrorClass(map[string]string{"result": result}, result, err)
	sink.Count("reaper.run", 1, tags)
	if closed > 0 {
		sink.Count("reaper.closed", closed, CloneTags(tags))
	}
}

func withErrorClass(tags map[string]string, result string, err error) map[string]string {
	if err != nil && result == ResultError {
		if class := obserrors.Classify(err); class != "" {
			tags["error_class"] = class
		}
	}
	return tags
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
