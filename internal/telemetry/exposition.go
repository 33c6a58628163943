package telemetry

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	gometrics "github.com/rcrowley/go-metrics"
)

var timerQuantiles = []float64{0.5, 0.9, 0.99}

// Handler renders the registry in the Prometheus text format.
func Handler(registry gometrics.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		c.Status(http.StatusOK)
		WriteRegistry(c.Writer, registry)
	}
}

// WriteRegistry prints every supported metric in the registry, sorted
// by name so the output is stable.
func WriteRegistry(w io.Writer, registry gometrics.Registry) {
	names := make([]string, 0, 32)
	metrics := make(map[string]interface{})
	registry.Each(func(name string, metric interface{}) {
		names = append(names, name)
		metrics[name] = metric
	})
	sort.Strings(names)

	for _, name := range names {
		writeMetric(w, name, metrics[name])
	}
}

func writeMetric(w io.Writer, name string, metric interface{}) {
	base := sanitizeName(name)

	switch m := metric.(type) {
	case gometrics.Counter:
		n := base + "_total"
		fmt.Fprintf(w, "# TYPE %s counter\n", n)
		fmt.Fprintf(w, "%s %d\n", n, m.Count())

	case gometrics.Gauge:
		fmt.Fprintf(w, "# TYPE %s gauge\n", base)
		fmt.Fprintf(w, "%s %d\n", base, m.Value())

	case gometrics.GaugeFloat64:
		fmt.Fprintf(w, "# TYPE %s gauge\n", base)
		fmt.Fprintf(w, "%s %s\n", base, formatFloat(m.Value()))

	case gometrics.Timer:
		// Timers measure durations in nanoseconds; expose seconds.
		snap := m.Snapshot()
		n := base + "_seconds"
		ps := snap.Percentiles(timerQuantiles)
		fmt.Fprintf(w, "# TYPE %s summary\n", n)
		for i, q := range timerQuantiles {
			fmt.Fprintf(w, "%s{quantile=%q} %s\n", n, strconv.FormatFloat(q, 'g', -1, 64), formatFloat(ps[i]/1e9))
		}
		fmt.Fprintf(w, "%s_sum %s\n", n, formatFloat(snap.Mean()*float64(snap.Count())/1e9))
		fmt.Fprintf(w, "%s_count %d\n", n, snap.Count())

	case gometrics.Histogram:
		snap := m.Snapshot()
		ps := snap.Percentiles(timerQuantiles)
		fmt.Fprintf(w, "# TYPE %s summary\n", base)
		for i, q := range timerQuantiles {
			fmt.Fprintf(w, "%s{quantile=%q} %s\n", base, strconv.FormatFloat(q, 'g', -1, 64), formatFloat(ps[i]))
		}
		fmt.Fprintf(w, "%s_sum %s\n", base, formatFloat(snap.Mean()*float64(snap.Count())))
		fmt.Fprintf(w, "%s_count %d\n", base, snap.Count())
	}
}

func sanitizeName(name string) string {
	var b strings.Builder
	for _, ch := range name {
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9', ch == '_':
			b.WriteRune(ch)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
