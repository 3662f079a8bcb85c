package stats

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/samber/lo"

	"github.com/verte-zerg/typecert/internal/model"
	"github.com/verte-zerg/typecert/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Results      []model.ResultRecord
	CharAggs     []model.CharAggregate
	Certificates []model.CertificateRecord
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	results, err := st.ListResults(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	ids := lo.Map(results, func(r model.ResultRecord, _ int) int64 { return r.ID })
	aggs, err := st.ListCharAggregates(ctx, ids)
	if err != nil {
		return Report{}, err
	}
	certs, err := st.ListCertificates(ctx)
	if err != nil {
		return Report{}, err
	}
	idSet := lo.SliceToMap(ids, func(id int64) (int64, struct{}) { return id, struct{}{} })
	certs = lo.Filter(certs, func(c model.CertificateRecord, _ int) bool {
		_, ok := idSet[c.ResultID]
		return ok
	})
	return Report{Results: results, CharAggs: aggs, Certificates: certs}, nil
}

// Render writes the full text report.
func (r Report) Render(w io.Writer, window, rows int) error {
	if err := RenderSummary(w, r.Results); err != nil {
		return err
	}
	if err := RenderHistory(w, r.Results, window, rows); err != nil {
		return err
	}
	if len(r.Results) == 0 {
		return nil
	}
	if top := TopCharsByFrequency(r.CharAggs, 10); len(top) > 0 {
		if _, err := fmt.Fprintf(w, "Most typed: %s\n\n", strings.Join(top, " ")); err != nil {
			return err
		}
	}
	return RenderCharTable(w, r.CharAggs)
}
