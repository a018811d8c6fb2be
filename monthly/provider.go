package monthly

import (
	"context"
	"fmt"

	"github.com/bzrenis/workt-sub001/generic"
	"github.com/bzrenis/workt-sub001/settings"
)

// StoredProvider serves the breakdown the client computed and uploaded with
// the entry. The CCNL day rules run on the client; the server only reads
// their result.
type StoredProvider struct{}

func (StoredProvider) Breakdown(ctx context.Context, entry WorkEntry, _ settings.Settings) (DailyBreakdown, error) {
	if err := ctx.Err(); err != nil {
		return DailyBreakdown{}, err
	}
	if len(entry.Breakdown) == 0 {
		return DailyBreakdown{}, fmt.Errorf("%w: entry %s has no stored breakdown", generic.ErrMalformedBreakdown, entry.ID)
	}
	return DecodeBreakdown(entry.Breakdown)
}
