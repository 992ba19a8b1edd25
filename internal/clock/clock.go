package clock

import (
	"time"

	"go.uber.org/fx"
)

// Clock abstracts wall-clock reads so cooldown and payout-period logic can be
// tested against a fake.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

func NewSystemClock() Clock {
	return SystemClock{}
}

// Module wires the system clock.
var Module = fx.Module("clock",
	fx.Provide(NewSystemClock),
)
