package strategy

import (
	"fmt"

	"go-careers-scraper/internal/extract"
	"go-careers-scraper/internal/scraper"
)

// Deps are the collaborators strategies are built from.
type Deps struct {
	Scraper scraper.Scraper
	Chain   *extract.Chain
}

// Build returns the named strategies in the given order.
func Build(names []string, deps Deps) ([]Descriptor, error) {
	out := make([]Descriptor, 0, len(names))
	for _, name := range names {
		switch name {
		case "browser":
			if deps.Scraper == nil {
				return nil, fmt.Errorf("strategy %q needs a scraper", name)
			}
			out = append(out, NewBrowser(deps.Scraper))
		case "static":
			if deps.Chain == nil {
				return nil, fmt.Errorf("strategy %q needs an extraction chain", name)
			}
			out = append(out, NewStatic(deps.Chain))
		case "api":
			out = append(out, NewAPI())
		default:
			return nil, fmt.Errorf("unknown strategy %q", name)
		}
	}
	return out, nil
}
