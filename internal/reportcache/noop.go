package reportcache

import (
	"context"
	"time"
)

// Noop never stores anything; every read is a miss.
type Noop struct{}

func (Noop) Get(context.Context, string, any) (bool, error) { return false, nil }

func (Noop) Set(context.Context, string, any, time.Duration) error { return nil }

func (Noop) Invalidate(context.Context, string) error { return nil }

func (Noop) Clear(context.Context) error { return nil }
