package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const DefaultDatasetURL = "https://equipements.sports.gouv.fr/api/explore/v2.1/catalog/datasets/data-es/records"

// Facility is one row of the public sports-facility dataset.
type Facility struct {
	ID           string       `json:"id"`
	TypeName     string       `json:"equip_type_name"`
	TypeFamily   string       `json:"equip_type_famille"`
	Installation string       `json:"inst_nom"`
	Town         string       `json:"com_nom"`
	PostalCode   string       `json:"inst_cp"`
	Address      string       `json:"inst_adresse"`
	Coordinates  *Coordinates `json:"equip_coordonnees"`
}

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type page struct {
	TotalCount int        `json:"total_count"`
	Results    []Facility `json:"results"`
}

// Client pages through the dataset API.
type Client struct {
	baseURL    string
	filter     string
	httpClient *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultDatasetURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    baseURL,
		filter:     `equip_type_name like "Basket*"`,
		httpClient: httpClient,
	}
}

func (c *Client) Page(ctx context.Context, offset, limit int) ([]Facility, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	q.Set("where", c.filter)
	q.Set("order_by", "inst_nom")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("dataset api: unexpected status %d", resp.StatusCode)
	}

	var body page
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("dataset api: decode: %w", err)
	}
	return body.Results, nil
}
