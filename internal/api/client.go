package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"thermal-scene/pkg/geometry"
)

// Client is the HTTP client for the collaborator service.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the given base URL, e.g. "http://host:8080".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// pointsPath maps a metric mode to its point-list endpoint.
func pointsPath(mode MetricMode) string {
	if mode == ModeTemperature {
		return "/temperature/points"
	}
	return "/points"
}

// detailPath maps a metric mode to its per-point detail endpoint.
func detailPath(mode MetricMode, id string) string {
	if mode == ModeTemperature {
		return "/temperature/data/" + id
	}
	return "/point/" + id
}

// FetchPoints returns the monitoring point list for a mode. The endpoint
// returns either {"data": [...]} or a bare array depending on deployment;
// both normalize to the same slice.
func (c *Client) FetchPoints(ctx context.Context, mode MetricMode) ([]MonitoringPoint, error) {
	body, err := c.get(ctx, pointsPath(mode))
	if err != nil {
		return nil, err
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read point list: %w", err)
	}
	return normalizePointList(raw)
}

// normalizePointList decodes either response shape into the canonical slice.
func normalizePointList(raw []byte) ([]MonitoringPoint, error) {
	var wrapped struct {
		Data []MonitoringPoint `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Data != nil {
		return wrapped.Data, nil
	}

	var bare []MonitoringPoint
	if err := json.Unmarshal(raw, &bare); err != nil {
		return nil, fmt.Errorf("decode point list: %w", err)
	}
	return bare, nil
}

// FetchDetail returns the detail record for one point under a mode.
func (c *Client) FetchDetail(ctx context.Context, id string, mode MetricMode) (*PointDetail, error) {
	body, err := c.get(ctx, detailPath(mode, id))
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var detail PointDetail
	if err := json.NewDecoder(body).Decode(&detail); err != nil {
		return nil, fmt.Errorf("decode detail for %s: %w", id, err)
	}
	if detail.PointID == "" {
		detail.PointID = id
	}
	return &detail, nil
}

// wireViewpoint is the calibration record as stored by the collaborator.
type wireViewpoint struct {
	Position [3]float64 `json:"position"`
	Target   [3]float64 `json:"target"`
}

// FetchViewpoints returns the persisted calibration anchor poses by point id.
func (c *Client) FetchViewpoints(ctx context.Context) (map[string]geometry.Pose, error) {
	body, err := c.get(ctx, "/viewpoints")
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var wire map[string]wireViewpoint
	if err := json.NewDecoder(body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("decode viewpoints: %w", err)
	}

	out := make(map[string]geometry.Pose, len(wire))
	for id, v := range wire {
		out[id] = geometry.Pose{
			Position: geometry.NewVec3(v.Position[0], v.Position[1], v.Position[2]),
			Target:   geometry.NewVec3(v.Target[0], v.Target[1], v.Target[2]),
		}
	}
	return out, nil
}

// SaveViewpoint persists one calibration anchor.
func (c *Client) SaveViewpoint(ctx context.Context, id string, pose geometry.Pose) error {
	payload := struct {
		PointID  string     `json:"point_id"`
		Position [3]float64 `json:"position"`
		Target   [3]float64 `json:"target"`
	}{
		PointID:  id,
		Position: [3]float64{pose.Position.X, pose.Position.Y, pose.Position.Z},
		Target:   [3]float64{pose.Target.X, pose.Target.Y, pose.Target.Z},
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode viewpoint: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/viewpoints", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("save viewpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("save viewpoint: status %d", resp.StatusCode)
	}
	return nil
}

// get performs a GET and returns the body for 200 responses.
func (c *Client) get(ctx context.Context, path string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("request %s: status %d", path, resp.StatusCode)
	}
	return resp.Body, nil
}
