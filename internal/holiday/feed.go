package holiday

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"

	"hvac-dispatch-backend/config"
	"hvac-dispatch-backend/internal/parse"
)

// Holiday is a single public holiday returned by the feed.
type Holiday struct {
	Date time.Time
	Name string
}

// feedEntry models one element of the upstream feed's response
// (GET {base}/{year}/{countryCode}).
type feedEntry struct {
	Date      string `json:"date"` // "2006-01-02"
	LocalName string `json:"localName"`
	Name      string `json:"name"`
}

// Service fetches public holidays per calendar year and memoizes them in an
// injected cache so month navigation within a year never re-issues the
// request. Feed failures are swallowed: the calendar simply shows no
// holidays for that year.
type Service struct {
	cfg    *config.HolidayConfig
	client *http.Client
	cache  *cache.Cache
}

// NewService creates a holiday feed client backed by the given cache.
func NewService(cfg *config.HolidayConfig, c *cache.Cache) *Service {
	return &Service{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		cache:  c,
	}
}

// ForYear returns the public holidays of the given year. Results are cached
// on first success and never expire; a failed fetch returns nil without
// caching so the next navigation retries.
func (s *Service) ForYear(ctx context.Context, year int) []Holiday {
	if !s.cfg.Enabled {
		return nil
	}

	key := strconv.Itoa(year)
	if cached, found := s.cache.Get(key); found {
		return cached.([]Holiday)
	}

	holidays, err := s.fetchYear(ctx, year)
	if err != nil {
		log.Printf("Warning: holiday feed fetch for %d failed: %v", year, err)
		return nil
	}

	s.cache.Set(key, holidays, cache.NoExpiration)
	return holidays
}

func (s *Service) fetchYear(ctx context.Context, year int) ([]Holiday, error) {
	url := fmt.Sprintf("%s/%d/%s", s.cfg.URL, year, s.cfg.CountryCode)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received non-200 status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var entries []feedEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal feed response: %w", err)
	}

	holidays := make([]Holiday, 0, len(entries))
	for _, e := range entries {
		date, err := parse.Date(e.Date)
		if err != nil {
			log.Printf("Warning: skipping malformed holiday entry %q: %v", e.Date, err)
			continue
		}
		name := e.LocalName
		if name == "" {
			name = e.Name
		}
		holidays = append(holidays, Holiday{Date: date, Name: name})
	}
	return holidays, nil
}
