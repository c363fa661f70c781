package resolve

import (
	"context"
	"time"

	"github.com/codeGROOVE-dev/rolodex/pkg/person"
)

// Row pairs one query with its resolution outcome in a batch run.
type Row struct {
	Query  person.Query  `json:"query"`
	Result person.Result `json:"result"`
}

// ResolveAll resolves each query in order, one at a time. A failing
// record gets an Error result and the batch continues; the only way to
// stop early is canceling the context.
func (r *Resolver) ResolveAll(ctx context.Context, queries []person.Query) []Row {
	rows := make([]Row, 0, len(queries))

	for i, q := range queries {
		if err := ctx.Err(); err != nil {
			r.logger.WarnContext(ctx, "batch canceled", "completed", i, "total", len(queries))
			break
		}

		res, err := r.Resolve(ctx, q)
		if err != nil {
			r.logger.ErrorContext(ctx, "record failed",
				"index", i, "name", q.FullName(), "error", err)
			res = person.Result{
				Status:       person.StatusError,
				ReviewReason: err.Error(),
				ResolvedAt:   time.Now().UTC(),
			}
		}
		rows = append(rows, Row{Query: q, Result: res})
	}

	return rows
}
