package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Device execution metrics
	ExecutionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "device_execution_duration_ms",
		Help:    "Duration of one unit execution on a device in milliseconds",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 18), // 0.1ms to ~13s
	}, []string{"unit", "device_type"})

	ExecutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "device_executions_total",
		Help: "Total unit executions by unit type and outcome",
	}, []string{"unit", "status"})

	// Parameter store metrics
	ParamsLoaded = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "device_params_loaded",
		Help: "Number of parameter records currently loaded",
	})

	ParamsBytesLoaded = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "device_params_bytes_loaded",
		Help: "Total bytes of bases and omega buffers currently loaded",
	})

	// Device inventory metrics
	DevicesByStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "device_inventory",
		Help: "Managed devices by type and last-observed status",
	}, []string{"device_type", "status"})

	DeviceMemoryUsedBytes = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "device_memory_used_bytes",
		Help: "Device memory currently in use in bytes",
	}, []string{"device"})
)
