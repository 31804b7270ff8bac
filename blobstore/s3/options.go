package s3

import (
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
)

// UploadConfig tunes managed uploads.
type UploadConfig struct {
	// PartSize is the multipart part size. Default: 8MB.
	PartSize int64
	// Concurrency is the number of parallel part uploads. Default: 5.
	Concurrency int
}

// DefaultUploadConfig returns the default upload tuning.
func DefaultUploadConfig() UploadConfig {
	return UploadConfig{
		PartSize:    8 * 1024 * 1024,
		Concurrency: 5,
	}
}

func (c UploadConfig) apply(u *manager.Uploader) {
	if c.PartSize >= manager.MinUploadPartSize {
		u.PartSize = c.PartSize
	}
	if c.Concurrency > 0 {
		u.Concurrency = c.Concurrency
	}
}

type options struct {
	prefix string
	region string
	upload UploadConfig
}

// Option configures New.
type Option func(*options)

// WithPrefix sets the key prefix prepended to all blob names.
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithRegion overrides the region from the default AWS config chain.
func WithRegion(region string) Option {
	return func(o *options) {
		o.region = region
	}
}

// WithUploadConfig tunes managed uploads.
func WithUploadConfig(cfg UploadConfig) Option {
	return func(o *options) {
		o.upload = cfg
	}
}
