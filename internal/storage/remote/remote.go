// Package remote adapts the durable object store to hour-keyed partitions.
// Two implementations share the same contract: S3 for production and a
// local filesystem tree for development, selected at construction time.
package remote

import (
	"context"
	"fmt"

	"github.com/newthinker/ampsync/internal/config"
	"github.com/newthinker/ampsync/internal/core"
	"go.uber.org/zap"
)

// Store is the durable-store capability for hourly partitions. Objects live
// under a fixed key prefix; the adapter owns the prefix and file-suffix
// mapping so callers only ever see canonical hour keys.
type Store interface {
	// List returns the set of hour keys present under the prefix.
	// An empty or absent listing is an empty set, not an error.
	List(ctx context.Context) (map[string]struct{}, error)

	// Put uploads the local file at path under the hour's object key.
	// Failures are fatal to the enclosing sync; there is no internal retry.
	Put(ctx context.Context, hourKey, path string) error

	// Delete removes the hour's object. Missing objects are tolerated.
	Delete(ctx context.Context, hourKey string) error
}

// New constructs the store variant selected by cfg. The dev-mode localfs
// variant substitutes a local tree with identical semantics.
func New(cfg config.RemoteConfig, log *zap.Logger) (Store, error) {
	switch cfg.Type {
	case "s3":
		return NewS3(cfg, log)
	case "localfs":
		return NewLocalFS(cfg.Path, cfg.Prefix, log)
	default:
		return nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown remote type %q", cfg.Type))
	}
}
