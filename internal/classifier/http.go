package classifier

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/ch4uTR/TarimKocum/config"
)

const defaultPredictTimeout = 60 * time.Second

// HTTPClient talks to a model server that holds the pretrained model
// identified by the configured model id. It is safe for concurrent use;
// aside from the lazily fetched label table it keeps no state across calls.
type HTTPClient struct {
	baseURL string
	model   string
	client  *http.Client

	mu     sync.Mutex
	labels map[int]string
}

// NewHTTPClient constructs a classifier client from config.
func NewHTTPClient(cfg config.ClassifierConfig) *HTTPClient {
	return &HTTPClient{
		baseURL: cfg.URL,
		model:   cfg.Model,
		client:  &http.Client{Timeout: defaultPredictTimeout},
	}
}

// predictRequest is the model server /predict request body.
type predictRequest struct {
	Model string `json:"model"`
	Image string `json:"image"`
}

// predictResponse is the model server /predict response body.
type predictResponse struct {
	ClassIndex int     `json:"class_index"`
	Confidence float64 `json:"confidence"`
}

// modelConfig mirrors the pretrained model's configuration. The id2label
// table is keyed by the class index in decimal string form.
type modelConfig struct {
	ID2Label map[string]string `json:"id2label"`
}

// Predict runs one forward pass and maps the argmax index to a label.
// An index missing from the model's table yields UnknownLabel, not an error.
func (c *HTTPClient) Predict(ctx context.Context, image []byte, contentType string) (Prediction, error) {
	labels, err := c.labelTable(ctx)
	if err != nil {
		return Prediction{}, fmt.Errorf("load model config: %w", err)
	}

	body, err := json.Marshal(predictRequest{
		Model: c.model,
		Image: base64.StdEncoding.EncodeToString(image),
	})
	if err != nil {
		return Prediction{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return Prediction{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Prediction{}, fmt.Errorf("predict request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Prediction{}, fmt.Errorf("model server returned %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}

	var result predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Prediction{}, fmt.Errorf("decode predict response: %w", err)
	}

	label, ok := labels[result.ClassIndex]
	if !ok {
		label = UnknownLabel
	}

	return Prediction{
		Index:      result.ClassIndex,
		Label:      label,
		Confidence: result.Confidence,
	}, nil
}

// labelTable returns the model's index-to-label map, fetching it from the
// model server on first use. A failed fetch is retried on the next call.
func (c *HTTPClient) labelTable(ctx context.Context) (map[int]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.labels != nil {
		return c.labels, nil
	}

	configURL := c.baseURL + "/config?model=" + url.QueryEscape(c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, configURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("model server returned %d", resp.StatusCode)
	}

	var cfg modelConfig
	if err := json.NewDecoder(resp.Body).Decode(&cfg); err != nil {
		return nil, err
	}

	labels := make(map[int]string, len(cfg.ID2Label))
	for key, label := range cfg.ID2Label {
		index, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		labels[index] = label
	}

	c.labels = labels
	return labels, nil
}
