package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Registry holds all Prometheus metrics for a pipeline run.
type Registry struct {
	*prometheus.Registry

	// Fetch metrics
	fetchRequests *prometheus.CounterVec
	fetchRetries  prometheus.Counter

	// Partition metrics
	partitionsWritten prometheus.Counter
	bytesAppended     prometheus.Counter

	// Sync metrics
	partitionsUploaded prometheus.Counter
	partitionsDeleted  prometheus.Counter

	// Workflow metrics
	workflowRuns     *prometheus.CounterVec
	workflowDuration *prometheus.HistogramVec
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		fetchRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ampsync_fetch_requests_total",
				Help: "Total number of export API requests by response class",
			},
			[]string{"class"},
		),

		fetchRetries: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ampsync_fetch_retries_total",
				Help: "Total number of export API retries",
			},
		),

		partitionsWritten: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ampsync_partitions_written_total",
				Help: "Total number of hourly partition appends",
			},
		),

		bytesAppended: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ampsync_bytes_appended_total",
				Help: "Total bytes appended to local partitions",
			},
		),

		partitionsUploaded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ampsync_partitions_uploaded_total",
				Help: "Total number of partitions uploaded to the durable store",
			},
		),

		partitionsDeleted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ampsync_partitions_deleted_total",
				Help: "Total number of local partitions deleted",
			},
		),

		workflowRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ampsync_workflow_runs_total",
				Help: "Total number of workflow runs by workflow and outcome",
			},
			[]string{"workflow", "outcome"},
		),

		workflowDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ampsync_workflow_duration_seconds",
				Help:    "Workflow duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"workflow"},
		),
	}

	reg.MustRegister(r.fetchRequests)
	reg.MustRegister(r.fetchRetries)
	reg.MustRegister(r.partitionsWritten)
	reg.MustRegister(r.bytesAppended)
	reg.MustRegister(r.partitionsUploaded)
	reg.MustRegister(r.partitionsDeleted)
	reg.MustRegister(r.workflowRuns)
	reg.MustRegister(r.workflowDuration)

	return r
}

// RecordFetchRequest increments the request counter for a response class
// ("ok", "server_error", "rate_limited", "rejected", "transport").
func (r *Registry) RecordFetchRequest(class string) {
	r.fetchRequests.WithLabelValues(class).Inc()
}

// RecordFetchRetry increments the retry counter.
func (r *Registry) RecordFetchRetry() {
	r.fetchRetries.Inc()
}

// RecordPartitionWrite records one append of n bytes.
func (r *Registry) RecordPartitionWrite(n int) {
	r.partitionsWritten.Inc()
	r.bytesAppended.Add(float64(n))
}

// RecordUpload increments the upload counter.
func (r *Registry) RecordUpload() {
	r.partitionsUploaded.Inc()
}

// RecordLocalDelete records n local partition deletions.
func (r *Registry) RecordLocalDelete(n int) {
	r.partitionsDeleted.Add(float64(n))
}

// RecordWorkflowRun records a completed workflow run.
func (r *Registry) RecordWorkflowRun(workflow, outcome string, seconds float64) {
	r.workflowRuns.WithLabelValues(workflow, outcome).Inc()
	r.workflowDuration.WithLabelValues(workflow).Observe(seconds)
}

// Push delivers the registry to a Pushgateway. The process is a periodic
// batch job with no scrape surface, so metrics leave by push at end of run.
func (r *Registry) Push(url, job string) error {
	return push.New(url, job).Gatherer(r.Registry).Push()
}
