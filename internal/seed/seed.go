// Package seed loads the college catalogue from a CSV or YAML source into
// the store.
package seed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"campus-reveal-backend/config"
	"campus-reveal-backend/internal/model"
	"campus-reveal-backend/internal/parse"
	"campus-reveal-backend/internal/store"
)

// Result summarises one import run.
type Result struct {
	Read    int
	Invalid int
	store.InsertResult
}

// Service imports colleges from local files or http(s) URLs.
type Service struct {
	cfg    *config.SeedConfig
	store  store.Store
	client *http.Client
	log    *zap.SugaredLogger
}

// NewService creates an importer writing into s.
func NewService(cfg *config.SeedConfig, s store.Store, log *zap.SugaredLogger) *Service {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	var transport http.RoundTripper = http.DefaultTransport
	if cfg.HTTPProxy != "" {
		proxyURL, err := url.Parse(cfg.HTTPProxy)
		if err != nil {
			log.Warnw("invalid seed proxy, fetching directly", "proxy", cfg.HTTPProxy, "err", err)
		} else {
			transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		}
	}

	return &Service{
		cfg:   cfg,
		store: s,
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		log: log,
	}
}

// Import reads every record from source and inserts the valid ones.
// Colleges already present (same name, city and state) are skipped, so
// importing the same source twice is harmless.
func (s *Service) Import(ctx context.Context, source string) (Result, error) {
	if source == "" {
		source = s.cfg.Source
	}
	if source == "" {
		return Result{}, fmt.Errorf("no seed source given")
	}

	format, err := parse.DetectFormat(source)
	if err != nil {
		return Result{}, err
	}

	body, err := s.open(ctx, source)
	if err != nil {
		return Result{}, err
	}
	defer body.Close()

	records, err := parse.ParseColleges(body, format)
	if err != nil {
		return Result{}, fmt.Errorf("failed to parse %s: %w", source, err)
	}

	res := Result{Read: len(records)}
	colleges := make([]model.College, 0, len(records))
	for i, rec := range records {
		if !rec.Valid() {
			res.Invalid++
			s.log.Warnw("skipping incomplete college record", "index", i, "name", rec.Name)
			continue
		}
		colleges = append(colleges, model.College{
			Name:     rec.Name,
			City:     rec.City,
			State:    rec.State,
			NIRFRank: rec.NIRFRank,
			Rank:     rec.Rank,
		})
	}

	ins, err := s.store.InsertColleges(ctx, colleges)
	if err != nil {
		return res, err
	}
	res.InsertResult = ins

	s.log.Infow("seed import finished",
		"source", source,
		"read", res.Read,
		"invalid", res.Invalid,
		"inserted", res.Inserted,
		"skipped", res.Skipped,
	)
	return res, nil
}

func (s *Service) open(ctx context.Context, source string) (io.ReadCloser, error) {
	if !isRemote(source) {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("failed to open seed file: %w", err)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, value := range s.cfg.Headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("received non-200 status code: %d", resp.StatusCode)
	}
	s.log.Debugw("fetched seed source", "url", source, "elapsed", time.Since(start))
	return resp.Body, nil
}

func isRemote(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
