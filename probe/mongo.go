package probe

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoPinger captures the subset of *mongo.Client used for connection attempts.
type MongoPinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

// NewMongoPingProbe creates a Func that pings MongoDB. A nil readPref pings
// the primary, which is what writers need before starting.
func NewMongoPingProbe(client MongoPinger, readPref *readpref.ReadPref) Func {
	return NewNamedMongoPingProbe("mongo", client, readPref)
}

// NewNamedMongoPingProbe is NewMongoPingProbe reporting failures under name.
func NewNamedMongoPingProbe(name string, client MongoPinger, readPref *readpref.ReadPref) Func {
	return func(ctx context.Context) error {
		if client == nil {
			return nilComponentError(name, "client")
		}

		rp := readPref
		if rp == nil {
			rp = readpref.Primary()
		}

		if err := client.Ping(contextOrBackground(ctx), rp); err != nil {
			return failed(name, err)
		}
		return nil
	}
}
