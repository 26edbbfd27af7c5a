package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/zeromicro/go-zero/core/logx"
)

// runPairs iterates trading pairs with the configured delay between
// fetches. A failing pair is logged and the loop continues; the joined
// errors surface once the sweep finishes.
func runPairs(ctx context.Context, deps Deps, name string, pairs []string, fn func(ctx context.Context, pair string) error) error {
	var errs []error
	for i, pair := range pairs {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		if err := fn(ctx, pair); err != nil {
			logx.WithContext(ctx).Errorf("%s: pair %s: %v", name, pair, err)
			errs = append(errs, fmt.Errorf("%s: %w", pair, err))
		}
		if i < len(pairs)-1 {
			if err := sleepBetween(ctx, deps.pairDelay()); err != nil {
				errs = append(errs, err)
				break
			}
		}
	}
	return errors.Join(errs...)
}

func requireCoinGlass(c Conf, deps Deps) error {
	if deps.Store == nil {
		return errors.New("store is required")
	}
	if deps.CoinGlass == nil {
		return errors.New("coinglass client is required")
	}
	return nil
}

func requireGlassnode(c Conf, deps Deps) error {
	if deps.Store == nil {
		return errors.New("store is required")
	}
	if deps.Glassnode == nil {
		return errors.New("glassnode client is required")
	}
	return nil
}

func requirePairs(c Conf) error {
	if len(c.Pairs) == 0 {
		return errors.New("at least one trading pair is required")
	}
	return nil
}

func requireExchange(c Conf) error {
	if c.Exchange == "" {
		return errors.New("exchange is required")
	}
	return nil
}
