// Package sensor provides the readings Joey can report: location, weather,
// vehicle speed, traffic signal and heart rate.
//
// Every accessor returns a value or an error wrapping ErrUnavailable; the
// dispatcher answers "information unavailable" instead of guessing.
package sensor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/nadzzz/joey/internal/config"
)

// ErrUnavailable marks a reading that could not be taken.
var ErrUnavailable = errors.New("sensor reading unavailable")

// Signal is a traffic light state.
type Signal string

const (
	SignalGreen  Signal = "green"
	SignalYellow Signal = "yellow"
	SignalRed    Signal = "red"
)

// Weather is a current conditions report.
type Weather struct {
	Location  string
	TempC     int
	Condition string
}

// TempF converts the temperature to Fahrenheit, rounded.
func (w Weather) TempF() int {
	f := float64(w.TempC)*9/5 + 32
	if f < 0 {
		return int(f - 0.5)
	}
	return int(f + 0.5)
}

// Speed is the current vehicle speed and the limit in force, in km/h.
type Speed struct {
	KMH   int
	Limit int
}

// Speeding reports whether the limit is exceeded. A zero limit is unknown.
func (s Speed) Speeding() bool {
	return s.Limit > 0 && s.KMH > s.Limit
}

// Sensors reads the current environment.
type Sensors interface {
	Location(ctx context.Context) (string, error)
	Weather(ctx context.Context) (Weather, error)
	Speed(ctx context.Context) (Speed, error)
	TrafficSignal(ctx context.Context) (Signal, error)
	Heartbeat(ctx context.Context) (int, error)
}

// None has no sensors attached.
type None struct{}

func (None) Location(context.Context) (string, error) { return "", ErrUnavailable }
func (None) Weather(context.Context) (Weather, error) { return Weather{}, ErrUnavailable }
func (None) Speed(context.Context) (Speed, error) { return Speed{}, ErrUnavailable }
func (None) TrafficSignal(context.Context) (Signal, error) { return "", ErrUnavailable }
func (None) Heartbeat(context.Context) (int, error) { return 0, ErrUnavailable }

// Simulated returns plausible placeholder readings for demos and tests.
type Simulated struct {
	City      string
	TempC     int
	Condition string
	Limit     int

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulated creates simulated sensors. A nil rng uses a time seed.
func NewSimulated(rng *rand.Rand) *Simulated {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	return &Simulated{
		City:      "New Delhi",
		TempC:     35,
		Condition: "mostly sunny",
		Limit:     60,
		rng:       rng,
	}
}

func (s *Simulated) intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// Location returns the configured city.
func (s *Simulated) Location(context.Context) (string, error) {
	return s.City + ", India", nil
}

// Weather returns fixed conditions for the configured city.
func (s *Simulated) Weather(context.Context) (Weather, error) {
	return Weather{Location: s.City, TempC: s.TempC, Condition: s.Condition}, nil
}

// Speed returns a speed between 30 and 80 km/h.
func (s *Simulated) Speed(context.Context) (Speed, error) {
	return Speed{KMH: 30 + s.intn(51), Limit: s.Limit}, nil
}

// TrafficSignal is mostly green, sometimes red, rarely yellow.
func (s *Simulated) TrafficSignal(context.Context) (Signal, error) {
	switch n := s.intn(13); {
	case n < 10:
		return SignalGreen, nil
	case n < 11:
		return SignalYellow, nil
	default:
		return SignalRed, nil
	}
}

// Heartbeat returns 60 to 100 beats per minute.
func (s *Simulated) Heartbeat(context.Context) (int, error) {
	return 60 + s.intn(41), nil
}

// IPInfo resolves the location from the public ipinfo.io service and
// delegates every other reading.
type IPInfo struct {
	Sensors
	endpoint string
	token    string
	client   *http.Client
}

// NewIPInfo wraps base with an ipinfo.io location lookup.
func NewIPInfo(base Sensors, cfg config.IPInfoConfig) *IPInfo {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "https://ipinfo.io/json"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &IPInfo{
		Sensors:  base,
		endpoint: endpoint,
		token:    cfg.Token,
		client:   &http.Client{Timeout: timeout},
	}
}

type ipinfoResponse struct {
	City    string `json:"city"`
	Region  string `json:"region"`
	Country string `json:"country"`
}

// Location looks up "city, region, country" for the public IP.
func (s *IPInfo) Location(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("%w: creating ipinfo request: %w", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: ipinfo request: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: ipinfo status %d", ErrUnavailable, resp.StatusCode)
	}

	var info ipinfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", fmt.Errorf("%w: decoding ipinfo response: %w", ErrUnavailable, err)
	}

	var parts []string
	for _, p := range []string{info.City, info.Region, info.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("%w: ipinfo returned no location", ErrUnavailable)
	}
	return strings.Join(parts, ", "), nil
}
