package discussion

import (
	"context"
	"fmt"
)

// effect is a side effect that must not hold up event dispatch. The router
// returns effects, the coordinator runs them.
type effect struct {
	name string
	run  func(ctx context.Context) error
}

// runEffects starts every effect on its own goroutine. Effects outlive the
// stream that produced them, so they do not inherit its cancellation.
func (c *Coordinator) runEffects(ctx context.Context, effects []effect) {
	if len(effects) == 0 {
		return
	}

	ctx = context.WithoutCancel(ctx)
	for _, e := range effects {
		c.effects.Add(1)
		go func() {
			defer c.effects.Done()

			if err := panicSafeEffect(e)(ctx); err != nil {
				logger.WarnContext(ctx, "background effect failed", "effect", e.name, "error", err)
				if c.onEffectError != nil {
					c.onEffectError(e.name, err)
				}
			}
		}()
	}
}

func panicSafeEffect(e effect) func(context.Context) error {
	return func(ctx context.Context) (err error) {
		defer func() {
			if recovered := recover(); recovered != nil {
				err = fmt.Errorf("%s effect panicked: %v", e.name, recovered)
			}
		}()

		if err = e.run(ctx); err != nil {
			return fmt.Errorf("%s effect failed: %w", e.name, err)
		}
		return nil
	}
}
