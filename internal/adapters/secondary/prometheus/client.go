package prometheus

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"model-inference-service/internal/config"
	"model-inference-service/internal/core/domain"
	ports "model-inference-service/internal/core/ports/output"
)

type prometheusClient struct {
	baseURL string
	client  *http.Client
	enabled bool
}

// NewPrometheusClient creates a client for the Prometheus server that
// scrapes this service's /metrics endpoint.
func NewPrometheusClient(cfg *config.PrometheusConfig) ports.PrometheusClient {
	if !cfg.Enabled {
		return &prometheusClient{enabled: false}
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &prometheusClient{
		baseURL: cfg.URL,
		enabled: true,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *prometheusClient) IsAvailable() bool {
	if !c.enabled {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/-/healthy", nil)
	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Prometheus API response structures
type promResponse struct {
	Status string   `json:"status"`
	Data   promData `json:"data"`
}

type promData struct {
	ResultType string       `json:"resultType"`
	Result     []promResult `json:"result"`
}

type promResult struct {
	Metric map[string]string `json:"metric"`
	Values [][]interface{}   `json:"values"` // [timestamp, value]
}

func (c *prometheusClient) query(ctx context.Context, promQL string, tr ports.TimeRange) (*promResponse, error) {
	if !c.enabled {
		return &promResponse{Status: "success"}, nil
	}

	params := url.Values{}
	params.Set("query", promQL)
	params.Set("start", strconv.FormatInt(tr.Start.Unix(), 10))
	params.Set("end", strconv.FormatInt(tr.End.Unix(), 10))
	params.Set("step", tr.Step.String())

	reqURL := fmt.Sprintf("%s/api/v1/query_range?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var promResp promResponse
	if err := json.NewDecoder(resp.Body).Decode(&promResp); err != nil {
		return nil, err
	}

	if promResp.Status != "success" {
		return nil, fmt.Errorf("%w: status %s", domain.ErrPrometheusQueryFailed, promResp.Status)
	}

	return &promResp, nil
}

func (c *prometheusClient) parseDataPoints(result []promResult) []ports.DataPoint {
	if len(result) == 0 {
		return nil
	}

	var points []ports.DataPoint
	for _, r := range result {
		for _, v := range r.Values {
			if len(v) >= 2 {
				ts, _ := v[0].(float64)
				valStr, _ := v[1].(string)
				val, _ := strconv.ParseFloat(valStr, 64)
				points = append(points, ports.DataPoint{
					Timestamp: time.Unix(int64(ts), 0),
					Value:     val,
				})
			}
		}
	}
	return points
}

// --- Latency Queries ---

// The /metrics endpoint exports predict latency as a summary, so the
// quantiles are read back directly rather than via histogram_quantile.

func (c *prometheusClient) QueryLatencyP50(ctx context.Context, tr ports.TimeRange) ([]ports.DataPoint, error) {
	promQL := `avg_over_time(predict_latency_seconds{quantile="0.5"}[5m])`

	resp, err := c.query(ctx, promQL, tr)
	if err != nil {
		return nil, err
	}
	return c.parseDataPoints(resp.Data.Result), nil
}

func (c *prometheusClient) QueryLatencyP99(ctx context.Context, tr ports.TimeRange) ([]ports.DataPoint, error) {
	promQL := `avg_over_time(predict_latency_seconds{quantile="0.99"}[5m])`

	resp, err := c.query(ctx, promQL, tr)
	if err != nil {
		return nil, err
	}
	return c.parseDataPoints(resp.Data.Result), nil
}

// --- Throughput Queries ---

func (c *prometheusClient) QueryRequestRate(ctx context.Context, tr ports.TimeRange) ([]ports.DataPoint, error) {
	promQL := `sum(rate(predict_requests_total[5m]))`

	resp, err := c.query(ctx, promQL, tr)
	if err != nil {
		return nil, err
	}
	return c.parseDataPoints(resp.Data.Result), nil
}

func (c *prometheusClient) QueryErrorRate(ctx context.Context, tr ports.TimeRange) ([]ports.DataPoint, error) {
	promQL := `
		sum(rate(predict_errors_total[5m])) /
		(sum(rate(predict_requests_total[5m])) + sum(rate(predict_errors_total[5m]))) * 100
	`

	resp, err := c.query(ctx, promQL, tr)
	if err != nil {
		return nil, err
	}
	return c.parseDataPoints(resp.Data.Result), nil
}
