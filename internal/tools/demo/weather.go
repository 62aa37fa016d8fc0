package demo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultWeatherURL is the weather.com.cn host serving current conditions.
const DefaultWeatherURL = "http://d1.weather.com.cn"

// Weather is the current conditions of one city.
type Weather struct {
	CityNameEN string `json:"city_name_en"`
	CityNameCN string `json:"city_name_cn"`
	CityCode   string `json:"city_code"`
	Temp       string `json:"temp"`
	WD         string `json:"wd"`
	WS         string `json:"ws"`
	SD         string `json:"sd"`
	AQI        string `json:"aqi"`
	Weather    string `json:"weather"`
}

// WeatherClient fetches current conditions by city code.
type WeatherClient struct {
	log     *slog.Logger
	baseURL string
	http    *http.Client
}

// NewWeatherClient creates a client for baseURL. An empty baseURL selects
// DefaultWeatherURL; a zero timeout disables the request timeout.
func NewWeatherClient(log *slog.Logger, baseURL string, timeout time.Duration) *WeatherClient {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if baseURL == "" {
		baseURL = DefaultWeatherURL
	}

	return &WeatherClient{
		log:     log.With("component", "weather"),
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Lookup returns the current conditions for cityCode.
//
// The endpoint answers with a script assignment ("var dataSK={...}"); the
// object after the first brace is decoded.
func (c *WeatherClient) Lookup(ctx context.Context, cityCode string) (*Weather, error) {
	if cityCode == "" {
		return nil, fmt.Errorf("city_code is empty")
	}

	endpoint := fmt.Sprintf("%s/sk_2d/%s.html", c.baseURL, url.PathEscape(cityCode))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build weather request: %w", err)
	}

	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Referer", "http://www.weather.com.cn/")

	c.log.Debug("Fetching weather", "city_code", cityCode)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather service returned %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read weather response: %w", err)
	}

	start := bytes.IndexByte(body, '{')
	if start < 0 {
		return nil, fmt.Errorf("weather response has no JSON object")
	}

	var data map[string]any
	if err := json.Unmarshal(body[start:], &data); err != nil {
		return nil, fmt.Errorf("decode weather response: %w", err)
	}

	return &Weather{
		CityNameEN: field(data, "nameen"),
		CityNameCN: field(data, "cityname"),
		CityCode:   field(data, "city"),
		Temp:       field(data, "temp"),
		WD:         field(data, "wd"),
		WS:         field(data, "ws"),
		SD:         field(data, "sd"),
		AQI:        field(data, "aqi"),
		Weather:    field(data, "weather"),
	}, nil
}

func field(data map[string]any, key string) string {
	switch v := data[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
