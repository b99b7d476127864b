package strategy

import (
	"context"
	"fmt"

	"go-careers-scraper/internal/extract"
	"go-careers-scraper/internal/models"
	"go-careers-scraper/internal/transport"
)

// Static fetches the careers page without a browser and runs the extraction
// chain on the served HTML. It only sees server-rendered markup.
type Static struct {
	chain *extract.Chain
}

func NewStatic(chain *extract.Chain) *Static {
	return &Static{chain: chain}
}

func (s *Static) Name() string {
	return "static"
}

func (s *Static) CanHandle(input models.ScrapeInput) bool {
	return input.CareersURL != ""
}

func (s *Static) FetchJobs(ctx context.Context, input models.ScrapeInput, tr transport.Transport) (*Batch, error) {
	resp, err := tr.Get(ctx, input.CareersURL, map[string]string{
		"Accept": "text/html,application/xhtml+xml",
	})
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("careers page returned status %d", resp.Status)
	}

	page, err := extract.NewStaticPage(input.CareersURL, resp.Data)
	if err != nil {
		return nil, err
	}
	out, err := s.chain.Run(ctx, page)
	if err != nil {
		return nil, err
	}
	return &Batch{
		Jobs:         out.Jobs,
		BaseURL:      out.BaseURL,
		Extractor:    out.Extractor,
		NoJobsPhrase: out.NoJobsPhrase,
	}, nil
}
