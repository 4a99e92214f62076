package storage

import (
	"context"

	"github.com/gridbase/gridbase/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
)

var Module = fx.Module("storage",
	fx.Provide(OpenBucket),
)

// OpenBucket opens the blob bucket holding serialized application
// exports. The URL scheme selects the backing store.
func OpenBucket(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (*blob.Bucket, error) {
	bucket, err := blob.OpenBucket(context.Background(), cfg.Storage.BucketURL)
	if err != nil {
		return nil, err
	}
	log.Info("blob bucket opened", zap.String("url", cfg.Storage.BucketURL))

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return bucket.Close()
		},
	})
	return bucket, nil
}
