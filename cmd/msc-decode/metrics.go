package main

import (
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	symbolsRead    prometheus.Counter
	blocksDecoded  prometheus.Counter
	bytesWritten   prometheus.Counter
	firecodePassed prometheus.Counter
	firecodeFailed prometheus.Counter
	pathMetric     prometheus.Gauge
	pathMetricHist prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer, labels prometheus.Labels) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		symbolsRead: f.NewCounter(prometheus.CounterOpts{
			Name:        "msc_symbols_read_total",
			Help:        "OFDM symbols read from the input lanes",
			ConstLabels: labels,
		}),
		blocksDecoded: f.NewCounter(prometheus.CounterOpts{
			Name:        "msc_blocks_decoded_total",
			Help:        "Sub-channel blocks decoded",
			ConstLabels: labels,
		}),
		bytesWritten: f.NewCounter(prometheus.CounterOpts{
			Name:        "msc_bytes_written_total",
			Help:        "Decoded bytes written to the output",
			ConstLabels: labels,
		}),
		firecodePassed: f.NewCounter(prometheus.CounterOpts{
			Name:        "msc_firecode_passed_total",
			Help:        "DAB+ logical frames with a valid fire code",
			ConstLabels: labels,
		}),
		firecodeFailed: f.NewCounter(prometheus.CounterOpts{
			Name:        "msc_firecode_failed_total",
			Help:        "DAB+ logical frames without a valid fire code",
			ConstLabels: labels,
		}),
		pathMetric: f.NewGauge(prometheus.GaugeOpts{
			Name:        "msc_viterbi_path_metric",
			Help:        "Viterbi path metric of the last decoded block",
			ConstLabels: labels,
		}),
		pathMetricHist: f.NewHistogram(prometheus.HistogramOpts{
			Name:        "msc_viterbi_path_metric_distribution",
			Help:        "Distribution of Viterbi path metrics per block",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(1, 4, 8),
		}),
	}
}

// newRegistry returns a registry carrying the Go runtime and process
// collectors, for receivers to add their own metrics to.
func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// serveMetrics serves g on addr until the process exits.
func serveMetrics(addr string, g prometheus.Gatherer) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	go func() {
		log.Printf("[INFO] Serving metrics on %s/metrics", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Printf("[ERROR] metrics server: %v", err)
		}
	}()
}
