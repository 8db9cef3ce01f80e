package geocoder

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Astemirdum/lending-service/pkg/circuit_breaker"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigFastest

var ErrNotFound = errors.New("geocoder: no match")

type Config struct {
	BaseURL   string        `yaml:"baseURL" envconfig:"GEOCODER_URL" default:"https://nominatim.openstreetmap.org"`
	UserAgent string        `yaml:"userAgent" envconfig:"GEOCODER_USER_AGENT" default:"lending-service/1.0"`
	Timeout   time.Duration `yaml:"timeout" envconfig:"GEOCODER_TIMEOUT" default:"5s"`
}

type Place struct {
	Lat         float64
	Lon         float64
	DisplayName string
}

// Client talks to a Nominatim compatible API.
type Client struct {
	cfg    Config
	client *http.Client
	cb     circuit_breaker.CircuitBreaker
}

func New(cfg Config, cb circuit_breaker.CircuitBreaker) *Client {
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		cb:     cb,
	}
}

type place struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
}

func (p place) parse() (Place, error) {
	if p.Error != "" {
		return Place{}, fmt.Errorf("%w: %s", ErrNotFound, p.Error)
	}
	lat, err := strconv.ParseFloat(p.Lat, 64)
	if err != nil {
		return Place{}, fmt.Errorf("parse lat: %w", err)
	}
	lon, err := strconv.ParseFloat(p.Lon, 64)
	if err != nil {
		return Place{}, fmt.Errorf("parse lon: %w", err)
	}
	return Place{Lat: lat, Lon: lon, DisplayName: p.DisplayName}, nil
}

// Search resolves a free-text address to its best match.
func (c *Client) Search(ctx context.Context, query string) (Place, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "jsonv2")
	q.Set("limit", "1")

	var places []place
	if err := c.get(ctx, "/search", q, &places); err != nil {
		return Place{}, err
	}
	if len(places) == 0 {
		return Place{}, ErrNotFound
	}
	return places[0].parse()
}

// Reverse resolves a coordinate to a display address.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) (Place, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("format", "jsonv2")

	var p place
	if err := c.get(ctx, "/reverse", q, &p); err != nil {
		return Place{}, err
	}
	return p.parse()
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	call := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path+"?"+q.Encode(), http.NoBody)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", c.cfg.UserAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("geocoder: status %d", resp.StatusCode)
		}
		return json.NewDecoder(resp.Body).Decode(out)
	}
	if c.cb == nil {
		return call()
	}
	return c.cb.Call(call)
}
