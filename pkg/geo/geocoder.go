package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/matzehuels/stamboom/pkg/cache"
	ferrors "github.com/matzehuels/stamboom/pkg/errors"
	"github.com/matzehuels/stamboom/pkg/httputil"
	"github.com/matzehuels/stamboom/pkg/observability"
)

// DefaultBaseURL is the Mapbox forward geocoding v6 endpoint.
const DefaultBaseURL = "https://api.mapbox.com/search/geocode/v6/forward"

const (
	defaultTimeout     = 10 * time.Second
	defaultConcurrency = 4
	defaultRate        = 10 // requests per second
	retryAttempts      = 3
	retryDelay         = 500 * time.Millisecond
)

// Place is a birthplace to resolve. Country is an ISO 3166 alpha-2 code.
type Place struct {
	Country string `json:"country"`
	City    string `json:"city"`
}

func (p Place) String() string { return p.City + ", " + p.Country }

// Location is a resolved place.
type Location struct {
	Name string  `json:"name"`
	Lng  float64 `json:"lng"`
	Lat  float64 `json:"lat"`
}

// entry is the cached form of a lookup; Found is false for a miss.
type entry struct {
	Found    bool      `json:"found"`
	Location *Location `json:"location,omitempty"`
}

// Geocoder resolves places through Mapbox. It is safe for concurrent use.
type Geocoder struct {
	http        *http.Client
	baseURL     string
	token       string
	cache       cache.Cache
	keyer       cache.Keyer
	limiter     *rate.Limiter
	concurrency int
	logger      *log.Logger
}

// Option configures a Geocoder.
type Option func(*Geocoder)

// WithBaseURL points the geocoder at another endpoint, such as a test server.
func WithBaseURL(u string) Option { return func(g *Geocoder) { g.baseURL = u } }

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option { return func(g *Geocoder) { g.http = c } }

// WithCache stores lookups in c using keys from k.
func WithCache(c cache.Cache, k cache.Keyer) Option {
	return func(g *Geocoder) { g.cache, g.keyer = c, k }
}

// WithRateLimit caps outgoing requests per second. Zero or less disables
// the limit.
func WithRateLimit(perSecond float64) Option {
	return func(g *Geocoder) {
		if perSecond <= 0 {
			g.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		g.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithConcurrency bounds parallel lookups in [Geocoder.Locate].
func WithConcurrency(n int) Option {
	return func(g *Geocoder) { g.concurrency = max(n, 1) }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option { return func(g *Geocoder) { g.logger = l } }

// NewGeocoder returns a geocoder authenticated with a Mapbox access token.
func NewGeocoder(token string, opts ...Option) *Geocoder {
	g := &Geocoder{
		http:        &http.Client{Timeout: defaultTimeout},
		baseURL:     DefaultBaseURL,
		token:       token,
		cache:       cache.NewNullCache(),
		keyer:       cache.NewDefaultKeyer(),
		limiter:     rate.NewLimiter(defaultRate, 1),
		concurrency: defaultConcurrency,
		logger:      log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Geocode resolves one place. A place Mapbox does not know returns
// (nil, nil) and is cached as a miss.
func (g *Geocoder) Geocode(ctx context.Context, p Place) (*Location, error) {
	if g.token == "" {
		return nil, ferrors.New(ferrors.ErrCodeInvalidInput, "geocoding requires a mapbox token")
	}
	key := g.keyer.GeocodeKey(p.Country, p.City)
	if data, ok, _ := g.cache.Get(ctx, key); ok {
		var e entry
		if json.Unmarshal(data, &e) == nil {
			observability.Cache().OnCacheHit(ctx, "geocode")
			return e.Location, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, "geocode")

	var loc *Location
	err := httputil.Retry(ctx, retryAttempts, retryDelay, func() error {
		var err error
		loc, err = g.fetch(ctx, p)
		return err
	})
	if err != nil {
		return nil, err
	}

	e := entry{Found: loc != nil, Location: loc}
	ttl := cache.TTLGeocode
	if loc == nil {
		ttl = cache.TTLGeocodeMiss
		g.logger.Debug("place not found", "place", p.String())
	}
	if data, err := json.Marshal(e); err == nil {
		if err := g.cache.Set(ctx, key, data, ttl); err == nil {
			observability.Cache().OnCacheSet(ctx, "geocode", len(data))
		}
	}
	return loc, nil
}

type mapboxResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			NamePreferred string `json:"name_preferred"`
			Name          string `json:"name"`
			Context       struct {
				Country struct {
					CountryCode string `json:"country_code"`
				} `json:"country"`
			} `json:"context"`
		} `json:"properties"`
	} `json:"features"`
}

func (g *Geocoder) fetch(ctx context.Context, p Place) (*Location, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("q", p.City)
	q.Set("country", p.Country)
	q.Set("types", "place,locality")
	q.Set("access_token", g.token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, req.URL.Host, req.URL.Path)
	start := time.Now()

	resp, err := g.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, req.URL.Host, req.URL.Path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &httputil.RetryableError{Err: ferrors.Wrap(ferrors.ErrCodeNetwork, err, "geocode %s", httputil.Describe(req))}
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))
	if err := httputil.StatusError(resp); err != nil {
		return nil, err
	}

	var body mapboxResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode geocode response: %w", err)
	}
	for _, f := range body.Features {
		props := f.Properties
		name := props.NamePreferred
		if name == "" {
			name = props.Name
		}
		if len(f.Geometry.Coordinates) < 2 {
			continue
		}
		if strings.EqualFold(props.Context.Country.CountryCode, p.Country) && strings.EqualFold(name, strings.TrimSpace(p.City)) {
			return &Location{Name: name, Lng: f.Geometry.Coordinates[0], Lat: f.Geometry.Coordinates[1]}, nil
		}
	}
	return nil, nil
}
