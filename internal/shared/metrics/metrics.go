package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	downloadsInitiatedTotal atomic.Uint64
	downloadsFailedTotal    atomic.Uint64
	rewardsGrantedTotal     atomic.Uint64

	notifyReceivedTotal  atomic.Uint64
	notifyDeliveredTotal atomic.Uint64
	notifyFailedTotal    atomic.Uint64
	notifyDroppedTotal   atomic.Uint64

	downloadInitDuration = newHistogram([]float64{5, 10, 25, 50, 100, 250, 500, 1000, 2000, 5000})
)

// IncDownloadsInitiated increments the initiated-download counter.
func IncDownloadsInitiated() {
	downloadsInitiatedTotal.Add(1)
}

// IncDownloadsFailed increments the failed-download counter.
func IncDownloadsFailed() {
	downloadsFailedTotal.Add(1)
}

// IncRewardsGranted increments the uploader-reward counter.
func IncRewardsGranted() {
	rewardsGrantedTotal.Add(1)
}

// IncNotifyReceived increments the received-notification counter.
func IncNotifyReceived() {
	notifyReceivedTotal.Add(1)
}

// IncNotifyDelivered increments the delivered-notification counter.
func IncNotifyDelivered() {
	notifyDeliveredTotal.Add(1)
}

// IncNotifyFailed increments the failed-notification counter.
func IncNotifyFailed() {
	notifyFailedTotal.Add(1)
}

// IncNotifyDropped counts unrecoverable notification payloads deleted
// without delivery.
func IncNotifyDropped() {
	notifyDroppedTotal.Add(1)
}

// ObserveDownloadInitMs records how long a download init took in milliseconds.
func ObserveDownloadInitMs(value float64) {
	if value < 0 {
		value = 0
	}
	downloadInitDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "downloads_initiated_total", "Total downloads initiated", downloadsInitiatedTotal.Load())
	writeCounter(&buf, "downloads_failed_total", "Total downloads failed", downloadsFailedTotal.Load())
	writeCounter(&buf, "uploader_rewards_granted_total", "Total uploader rewards granted", rewardsGrantedTotal.Load())
	writeCounter(&buf, "notifications_received_total", "Total queue notifications received", notifyReceivedTotal.Load())
	writeCounter(&buf, "notifications_delivered_total", "Total queue notifications delivered", notifyDeliveredTotal.Load())
	writeCounter(&buf, "notifications_failed_total", "Total queue notifications failed", notifyFailedTotal.Load())
	writeCounter(&buf, "notifications_dropped_total", "Total malformed notifications dropped", notifyDroppedTotal.Load())
	writeHistogram(&buf, "download_init_duration_ms", "Download init duration in milliseconds", downloadInitDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// NowMillis returns current time in milliseconds, useful for callers without time utilities.
func NowMillis() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Millisecond)
}
