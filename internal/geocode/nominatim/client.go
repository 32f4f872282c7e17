package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	geocodedomain "github.com/smallbiznis/streetsignal/internal/geocode/domain"
	"github.com/smallbiznis/streetsignal/pkg/geo"
)

const (
	DefaultBaseURL   = "https://nominatim.openstreetmap.org"
	DefaultUserAgent = "StreetSignal/1.0"
)

type address struct {
	City         string `json:"city"`
	Town         string `json:"town"`
	Village      string `json:"village"`
	Municipality string `json:"municipality"`
	County       string `json:"county"`
	Country      string `json:"country"`
}

type reverseResponse struct {
	DisplayName string   `json:"display_name"`
	Address     *address `json:"address"`
}

// Client calls the Nominatim reverse endpoint.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

func NewClient(baseURL, userAgent string, timeout time.Duration) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if strings.TrimSpace(userAgent) == "" {
		userAgent = DefaultUserAgent
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Lookup(ctx context.Context, point geo.Point) (geocodedomain.Place, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("lat", strconv.FormatFloat(point.Lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(point.Lng, 'f', -1, 64))
	q.Set("addressdetails", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return geocodedomain.Unresolved(), err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return geocodedomain.Unresolved(), fmt.Errorf("%w: %w", geocodedomain.ErrLookupFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return geocodedomain.Unresolved(), fmt.Errorf("%w: status %d", geocodedomain.ErrLookupFailed, resp.StatusCode)
	}

	var body reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return geocodedomain.Unresolved(), fmt.Errorf("%w: %w", geocodedomain.ErrLookupFailed, err)
	}
	return toPlace(body), nil
}

func toPlace(body reverseResponse) geocodedomain.Place {
	addr := address{}
	if body.Address != nil {
		addr = *body.Address
	}

	city := firstNonEmpty(addr.City, addr.Town, addr.Village, addr.Municipality, addr.County)
	if city == "" {
		city = geocodedomain.UnknownCity
	}
	country := addr.Country
	if country == "" {
		country = geocodedomain.DefaultCountry
	}

	place := geocodedomain.Place{City: &city, Country: country}
	if body.DisplayName != "" {
		full := body.DisplayName
		place.FullAddress = &full
	}
	return place
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
