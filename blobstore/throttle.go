package blobstore

import (
	"context"

	"golang.org/x/time/rate"
)

// Throttled wraps a BlobStore with a byte-rate limit on writes. Use it
// to keep background mirroring from saturating shared egress.
type Throttled struct {
	inner   BlobStore
	limiter *rate.Limiter
}

// NewThrottled limits writes through inner to bytesPerSecond, with
// bursts up to burst bytes.
func NewThrottled(inner BlobStore, bytesPerSecond float64, burst int) *Throttled {
	return &Throttled{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(bytesPerSecond), burst),
	}
}

// wait reserves n bytes of budget, in chunks no larger than the burst
// so a single large artifact cannot exceed the limiter's capacity.
func (s *Throttled) wait(ctx context.Context, n int) error {
	burst := s.limiter.Burst()
	for n > 0 {
		chunk := n
		if chunk > burst {
			chunk = burst
		}
		if err := s.limiter.WaitN(ctx, chunk); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}

func (s *Throttled) Put(ctx context.Context, name string, data []byte) error {
	if err := s.wait(ctx, len(data)); err != nil {
		return err
	}
	return s.inner.Put(ctx, name, data)
}

func (s *Throttled) Get(ctx context.Context, name string) ([]byte, error) {
	return s.inner.Get(ctx, name)
}

func (s *Throttled) Delete(ctx context.Context, name string) error {
	return s.inner.Delete(ctx, name)
}

func (s *Throttled) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}
