package catalog

import (
	"fmt"
	"time"

	"github.com/spf13/cast"

	fixtures "github.com/pumped-fn/pumped-fixtures"
)

// NowKey is the clock option holding the fixed time.
const NowKey = "now"

// Clock provides the test's notion of "now": the "now" option (a time.Time
// or an RFC3339 string) or the current UTC time.
var Clock = fixtures.Define(ClockName, newClock,
	fixtures.WithDescription("fixed point in time"),
)

func newClock(opts fixtures.Options, _ *fixtures.Fixtures) (time.Time, error) {
	raw, ok := opts.Get(NowKey)
	if !ok {
		return time.Now().UTC(), nil
	}
	now, err := cast.ToTimeE(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("clock option %s: %w", NowKey, err)
	}
	return now, nil
}
