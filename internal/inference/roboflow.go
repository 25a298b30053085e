package inference

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/riceguard/backend/internal/models"
	"github.com/riceguard/backend/internal/profile"
)

// DefaultServerlessURL is the Roboflow serverless workflow API root.
const DefaultServerlessURL = "https://serverless.roboflow.com"

// upstreamBodyLimit caps how much of an upstream error body is surfaced.
const upstreamBodyLimit = 300

// RoboflowConfig configures the serverless workflow client.
type RoboflowConfig struct {
	APIKey     string
	Workspace  string
	WorkflowID string // raw value; normalized on client construction
	BaseURL    string // defaults to DefaultServerlessURL
	Timeout    time.Duration
}

// RoboflowClient calls a Roboflow serverless workflow to detect grains.
type RoboflowClient struct {
	apiKey     string
	workspace  string
	workflowID string
	baseURL    string
	httpClient *http.Client
	profile    *profile.Profile
}

// NewRoboflowClient creates a workflow client. The workflow ID is normalized:
// URLs are reduced to their last path segment and shared-workflow tokens are
// decoded to the embedded workflow ID.
func NewRoboflowClient(cfg RoboflowConfig, prof *profile.Profile) *RoboflowClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultServerlessURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 90 * time.Second
	}
	if prof == nil {
		prof = profile.Default()
	}

	return &RoboflowClient{
		apiKey:     cfg.APIKey,
		workspace:  cfg.Workspace,
		workflowID: NormalizeWorkflowID(cfg.WorkflowID),
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		profile:    prof,
	}
}

// Ready reports whether the client has enough configuration to run inference.
func (c *RoboflowClient) Ready() error {
	if c.apiKey == "" {
		return errors.New("Roboflow API key missing")
	}
	if c.workflowID == "" || c.workspace == "" || c.workspace == "your-workspace" {
		return errors.New("Roboflow workspace or workflow ID missing")
	}
	return nil
}

// WorkflowID returns the normalized workflow identifier.
func (c *RoboflowClient) WorkflowID() string {
	return c.workflowID
}

// Workspace returns the configured workspace slug.
func (c *RoboflowClient) Workspace() string {
	return c.workspace
}

// workflowRequest is the serverless workflow request envelope.
type workflowRequest struct {
	APIKey string         `json:"api_key"`
	Inputs workflowInputs `json:"inputs"`
}

type workflowInputs struct {
	Image string `json:"image"`
}

// workflowResponse mirrors the serverless workflow response: an outputs array
// whose first element carries the prediction list.
type workflowResponse struct {
	Outputs []struct {
		Predictions []prediction `json:"predictions"`
	} `json:"outputs"`
}

// prediction is a single model detection with a center-form bounding box.
type prediction struct {
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
}

// Infer posts the image to the workflow endpoint and converts the returned
// predictions to detections. Classes the grading profile does not know are
// skipped; boxes are converted to corner form and clamped to the image.
func (c *RoboflowClient) Infer(ctx context.Context, imageData []byte, width, height int) ([]models.Detection, error) {
	if err := c.Ready(); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(workflowRequest{
		APIKey: c.apiKey,
		Inputs: workflowInputs{Image: base64.StdEncoding.EncodeToString(imageData)},
	})
	if err != nil {
		return nil, errors.Wrap(err, "encoding workflow request")
	}

	url := fmt.Sprintf("%s/%s/workflows/%s", c.baseURL, c.workspace, c.workflowID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "building workflow request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "calling Roboflow")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading Roboflow response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{Status: resp.StatusCode, Body: truncate(string(body), upstreamBodyLimit)}
	}

	var wr workflowResponse
	if err := json.Unmarshal(body, &wr); err != nil {
		return nil, errors.Wrap(err, "decoding Roboflow response")
	}

	var preds []prediction
	if len(wr.Outputs) > 0 {
		preds = wr.Outputs[0].Predictions
	}

	detections := make([]models.Detection, 0, len(preds))
	for _, p := range preds {
		class, ok := c.profile.ClassOf(p.Class)
		if !ok {
			continue
		}
		if p.Confidence < c.profile.MinConfidence {
			continue
		}

		detections = append(detections, models.Detection{
			Class:      class,
			Confidence: p.Confidence,
			BBox: [4]float64{
				max(0, p.X-p.Width/2),
				max(0, p.Y-p.Height/2),
				min(float64(width), p.X+p.Width/2),
				min(float64(height), p.Y+p.Height/2),
			},
		})
	}

	return detections, nil
}

// UpstreamError reports a non-2xx response from the inference service.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("Roboflow failed (%d): %s", e.Status, e.Body)
}

// NormalizeWorkflowID reduces the various ways a workflow can be referenced
// (plain ID, share URL, shared-workflow JWT) to the bare workflow ID.
func NormalizeWorkflowID(value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return v
	}

	if strings.Contains(v, "/") {
		parts := strings.Split(strings.TrimRight(v, "/"), "/")
		v = parts[len(parts)-1]
	}

	// Shared-workflow tokens are JWTs; the workflow ID lives in the payload.
	if strings.Count(v, ".") >= 2 {
		segment := strings.Split(v, ".")[1]
		if pad := len(segment) % 4; pad != 0 {
			segment += strings.Repeat("=", 4-pad)
		}
		decoded, err := base64.URLEncoding.DecodeString(segment)
		if err != nil {
			return v
		}
		var payload struct {
			WorkflowID string `json:"workflowId"`
		}
		if err := json.Unmarshal(decoded, &payload); err != nil {
			return v
		}
		if id := strings.TrimSpace(payload.WorkflowID); id != "" {
			return id
		}
	}

	return v
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
