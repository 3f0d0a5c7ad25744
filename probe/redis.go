package probe

import (
	"context"

	goredis "github.com/redis/go-redis/v9"
)

// RedisPinger captures the subset of a go-redis client used for connection
// attempts. goredis.UniversalClient satisfies it for single, sentinel and
// cluster deployments.
type RedisPinger interface {
	Ping(ctx context.Context) *goredis.StatusCmd
}

// NewRedisPingProbe creates a Func that issues PING and expects no error.
func NewRedisPingProbe(name string, client RedisPinger) Func {
	return func(ctx context.Context) error {
		if client == nil {
			return nilComponentError(name, "redis client")
		}
		if err := client.Ping(contextOrBackground(ctx)).Err(); err != nil {
			return failed(name, err)
		}
		return nil
	}
}
