package tripbook

import (
	"log/slog"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// TripParameters describes one expedition a handbook is generated for.
//
// BuildRequest does not validate its input. Callers are expected to reject
// malformed parameters with Validate before a request is built.
type TripParameters struct {
	Season       string
	Location     string
	DurationDays int
	GroupSize    int
}

// Validate checks the precondition of BuildRequest: non-empty season and
// location, positive duration and group size.
func (x TripParameters) Validate() error {
	eb := goerr.NewBuilder(goerr.V("trip", x))

	if strings.TrimSpace(x.Season) == "" {
		return eb.Wrap(ErrInvalidTripParameters, "season is required")
	}
	if strings.TrimSpace(x.Location) == "" {
		return eb.Wrap(ErrInvalidTripParameters, "location is required")
	}
	if x.DurationDays <= 0 {
		return eb.Wrap(ErrInvalidTripParameters, "duration must be positive", goerr.V("days", x.DurationDays))
	}
	if x.GroupSize <= 0 {
		return eb.Wrap(ErrInvalidTripParameters, "group size must be positive", goerr.V("group_size", x.GroupSize))
	}

	return nil
}

func (x TripParameters) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("season", x.Season),
		slog.String("location", x.Location),
		slog.Int("days", x.DurationDays),
		slog.Int("group_size", x.GroupSize),
	)
}
