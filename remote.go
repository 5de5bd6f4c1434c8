package reviewsense

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// A RemoteScorer sends features to a model hosted behind the TensorFlow
// Serving REST predict API.
type RemoteScorer struct {
	endpoint string
	client   *http.Client
}

// RemoteOpt configures a RemoteScorer.
type RemoteOpt func(*RemoteScorer)

// WithHTTPClient replaces the default client.
func WithHTTPClient(client *http.Client) RemoteOpt {
	return func(r *RemoteScorer) {
		r.client = client
	}
}

// WithTimeout sets the timeout of the default client.
func WithTimeout(timeout time.Duration) RemoteOpt {
	return func(r *RemoteScorer) {
		r.client = &http.Client{Timeout: timeout}
	}
}

// NewRemoteScorer returns a Scorer for the model named model served at
// baseURL, e.g. http://localhost:8501.
func NewRemoteScorer(baseURL, model string, opts ...RemoteOpt) (*RemoteScorer, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("remote scorer: %q is not an absolute URL", baseURL)
	}
	if model == "" {
		return nil, fmt.Errorf("remote scorer: model name is required")
	}

	r := &RemoteScorer{
		endpoint: strings.TrimSuffix(u.String(), "/") + "/v1/models/" + url.PathEscape(model) + ":predict",
		client:   &http.Client{Timeout: 30 * time.Second},
	}
	for _, applyOpt := range opts {
		applyOpt(r)
	}
	return r, nil
}

type predictRequest struct {
	Instances [][]int `json:"instances"`
}

type predictResponse struct {
	Predictions [][]float64 `json:"predictions"`
	Error       string      `json:"error"`
}

// Score implements Scorer.
func (r *RemoteScorer) Score(ctx context.Context, feature Feature) (Prediction, error) {
	body, err := json.Marshal(predictRequest{Instances: [][]int{feature}})
	if err != nil {
		return Prediction{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return Prediction{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return Prediction{}, err
	}
	defer resp.Body.Close()

	var out predictResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&out)

	if resp.StatusCode != http.StatusOK {
		if decodeErr == nil && out.Error != "" {
			return Prediction{}, fmt.Errorf("predict: status %d: %s", resp.StatusCode, out.Error)
		}
		return Prediction{}, fmt.Errorf("predict: status %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return Prediction{}, fmt.Errorf("predict: decode response: %w", decodeErr)
	}
	if len(out.Predictions) != 1 {
		return Prediction{}, fmt.Errorf("predict: want 1 prediction, got %d", len(out.Predictions))
	}

	return predictionFromSlice(out.Predictions[0])
}
