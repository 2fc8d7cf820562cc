package clock

import (
	"time"

	"go.uber.org/fx"
)

// Clock abstracts wall-clock access. The engine is deterministic except for
// one branch (invoice numbering when a row has no order ID and no parsable
// posted date), so that branch reads time through this interface.
type Clock interface {
	Now() time.Time
}

// Module provides the system clock.
var Module = fx.Provide(NewSystemClock)

type SystemClock struct{}

func NewSystemClock() Clock { return SystemClock{} }

func (SystemClock) Now() time.Time { return time.Now().UTC() }
