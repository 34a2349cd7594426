package pipeline

import (
	"context"
	"fmt"

	"github.com/loupelabs/loupe/pkg/extract"
	domain "github.com/loupelabs/loupe/pkg/types"
)

// classifyWatch runs the watch chain: common prefix, duplicate gate, detail
// fetch, then attribute capture. Watches carry no scoring; the adapter-side
// filters already narrowed the result set.
func (p *Pipeline) classifyWatch(ctx context.Context, in Input) (*Outcome, error) {
	t, l := in.Task, in.Listing
	bypass := p.isBypass(l)

	if out := p.commonPrefix(in, bypass); out != nil {
		return out, nil
	}

	exists, err := p.matches.WatchMatchExists(ctx, t.ID, l.ItemID)
	if err != nil {
		return nil, fmt.Errorf("checking existing watch match: %w", err)
	}
	if exists && !bypass {
		return &Outcome{Skip: true}, nil
	}

	detail, err := p.details.Fetch(ctx, l.ItemID, false)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		if !bypass {
			return p.reject(t.Type, "detail", "No item details"), nil
		}
		detail = &domain.ListingDetail{ItemID: l.ItemID, Title: l.Title}
	}

	m := &domain.WatchMatch{Match: baseMatch(t, l)}
	m.Brand, _ = extract.WatchBrand(l.Title, detail.Aspects)
	m.Model, _ = extract.WatchModel(detail.Aspects)
	m.CaseMaterial, _ = extract.CaseMaterial(l.Title, detail.Aspects)
	m.BandMaterial, _ = extract.BandMaterial(l.Title, detail.Aspects)
	m.Movement, _ = extract.Movement(l.Title, detail.Aspects)
	m.DialColor, _ = extract.DialColor(l.Title, detail.Aspects)
	if year, ok := extract.WatchYear(l.Title, detail.Aspects, p.nowFunc().Year()+1); ok {
		m.Year = &year
	}

	return &Outcome{Accepted: true, Bypass: bypass, Watch: m}, nil
}
