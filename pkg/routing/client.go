package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrNoRoute indicates the directions response carried no usable route
var ErrNoRoute = errors.New("no route in directions response")

// Coordinate is a point in (longitude, latitude) order, as OpenRouteService expects
type Coordinate struct {
	Lon float64
	Lat float64
}

// Summary is the distance and driving time of a route
type Summary struct {
	DistanceMeters  float64 `json:"distance"`
	DurationSeconds float64 `json:"duration"`
}

// Router computes driving routes between coordinates
type Router interface {
	// Summarize returns the driving distance and duration between two points
	Summarize(ctx context.Context, from, to Coordinate) (*Summary, error)

	// GetName returns the name of the routing backend
	GetName() string
}

// ORSClient implements Router against the OpenRouteService directions API
type ORSClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// ORSConfig holds configuration for the OpenRouteService client
type ORSConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// NewORSClient creates a new OpenRouteService client
func NewORSClient(config ORSConfig) *ORSClient {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &ORSClient{
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		apiKey:  config.APIKey,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// directionsRequest is the POST body of /v2/directions/driving-car
type directionsRequest struct {
	Coordinates [][2]float64 `json:"coordinates"`
}

// directionsResponse holds the parts of the directions response we use
type directionsResponse struct {
	Routes []struct {
		Summary struct {
			Distance *float64 `json:"distance"`
			Duration *float64 `json:"duration"`
		} `json:"summary"`
	} `json:"routes"`
}

// Summarize calls the driving-car directions endpoint
func (c *ORSClient) Summarize(ctx context.Context, from, to Coordinate) (*Summary, error) {
	body, err := json.Marshal(directionsRequest{
		Coordinates: [][2]float64{{from.Lon, from.Lat}, {to.Lon, to.Lat}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal directions request: %w", err)
	}

	url := c.baseURL + "/v2/directions/driving-car"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create directions request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call directions API: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read directions response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("directions API returned status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var parsed directionsResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse directions response: %w", err)
	}

	if len(parsed.Routes) == 0 {
		return nil, ErrNoRoute
	}
	summary := parsed.Routes[0].Summary
	if summary.Distance == nil || summary.Duration == nil {
		return nil, ErrNoRoute
	}

	return &Summary{
		DistanceMeters:  *summary.Distance,
		DurationSeconds: *summary.Duration,
	}, nil
}

// GetName returns the name of the routing backend
func (c *ORSClient) GetName() string {
	return "openrouteservice"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
