// Package reverb is a minimal client for the Reverb marketplace listings API.
package reverb

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

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/fretsource/guitar-scout/internal/model"
	"github.com/fretsource/guitar-scout/internal/resilience"
)

const defaultBaseURL = "https://api.reverb.com/api"

// Client calls the Reverb listings API. It satisfies catalog.Source.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	limiter *rate.Limiter
}

// Options configures a Client.
type Options struct {
	// BaseURL overrides the production API endpoint, mainly for tests.
	BaseURL string
	// Token is the personal access token. Anonymous access works for
	// public listings but is rate limited harder.
	Token string
	// Timeout bounds each HTTP request. Default: 10s.
	Timeout time.Duration
	// RatePerSec throttles outbound requests. Default: 2.
	RatePerSec float64
}

// NewClient returns a Reverb API client.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RatePerSec <= 0 {
		opts.RatePerSec = 2
	}

	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		token:   opts.Token,
		http:    &http.Client{Timeout: opts.Timeout},
		limiter: rate.NewLimiter(rate.Limit(opts.RatePerSec), 1),
	}
}

func (c *Client) Name() string { return "reverb" }

// Search queries the listings endpoint with the filter's terms, brands and
// price bounds.
func (c *Client) Search(ctx context.Context, filter model.CatalogFilter) ([]model.Listing, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "reverb: rate limit wait")
	}

	q := url.Values{}
	if query := buildQuery(filter); query != "" {
		q.Set("query", query)
	}
	if filter.PriceMin > 0 {
		q.Set("price_min", strconv.FormatFloat(filter.PriceMin, 'f', 0, 64))
	}
	if filter.PriceMax > 0 {
		q.Set("price_max", strconv.FormatFloat(filter.PriceMax, 'f', 0, 64))
	}
	perPage := filter.MaxResults
	if perPage <= 0 || perPage > 50 {
		perPage = 25
	}
	q.Set("per_page", strconv.Itoa(perPage))
	q.Set("product_type", "electric-guitars")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/listings?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "reverb: build request")
	}
	req.Header.Set("Accept", "application/hal+json")
	req.Header.Set("Accept-Version", "3.0")
	req.Header.Set("User-Agent", "guitar-scout/1.0")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "reverb: search")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := eris.Errorf("reverb: search returned %d: %s", resp.StatusCode, string(body))
		if resilience.RetryableStatus(resp.StatusCode) {
			return nil, resilience.MarkTransient(err, resp.StatusCode)
		}
		return nil, err
	}

	var page listingsPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, eris.Wrap(err, "reverb: decode response")
	}

	listings := make([]model.Listing, 0, len(page.Listings))
	for _, item := range page.Listings {
		l := item.toListing()
		l.Normalize()
		if l.Valid() {
			listings = append(listings, l)
		}
	}
	return listings, nil
}

// buildQuery joins search terms and brands into one free-text query. Reverb
// has no structured brand filter on this endpoint.
func buildQuery(filter model.CatalogFilter) string {
	parts := append([]string(nil), filter.Brands...)
	parts = append(parts, filter.SearchTerms...)
	return strings.TrimSpace(strings.Join(parts, " "))
}

type listingsPage struct {
	Listings []apiListing `json:"listings"`
}

type apiListing struct {
	Title string `json:"title"`
	Price struct {
		Amount string `json:"amount"`
	} `json:"price"`
	Condition struct {
		DisplayName string `json:"display_name"`
	} `json:"condition"`
	Photos []struct {
		Links struct {
			Full struct {
				Href string `json:"href"`
			} `json:"full"`
		} `json:"_links"`
	} `json:"photos"`
	Links struct {
		Web struct {
			Href string `json:"href"`
		} `json:"web"`
	} `json:"_links"`
}

func (a apiListing) toListing() model.Listing {
	price, _ := strconv.ParseFloat(a.Price.Amount, 64)

	l := model.Listing{
		Title:     a.Title,
		Price:     price,
		Condition: a.Condition.DisplayName,
		Link:      a.Links.Web.Href,
		Source:    "Reverb",
	}
	if len(a.Photos) > 0 {
		l.ImageURL = a.Photos[0].Links.Full.Href
	}
	return l
}

// String implements fmt.Stringer for debug logging without leaking the token.
func (c *Client) String() string {
	return fmt.Sprintf("reverb.Client(%s)", c.baseURL)
}
