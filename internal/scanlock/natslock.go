package scanlock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// NATSLocker implements Locker on top of a JetStream KeyValue bucket.
//
// Each lock key is one KV entry. Create() supplies setIfAbsent (JetStream
// rejects a Create on an existing key with nats.ErrKeyExists). The CAS
// primitives are revision-checked: Extend uses Update at the read revision
// and CompareAndDelete uses Delete with nats.LastRevision, so a process
// cannot act on a lock it no longer holds. The bucket's configured TTL governs auto-release: because
// each key lives on its own KV subject, an Update/Create refreshes that
// subject's message timestamp and therefore its expiry, so Extend is simply
// "write the same value again".
type NATSLocker struct {
	kv     nats.KeyValue
	logger *zap.Logger
}

// NewNATSLocker ensures the backing KV bucket exists (creating it with the
// given default TTL on first use) and returns a ready-to-use Locker.
func NewNATSLocker(js nats.JetStreamContext, bucket string, defaultTTL time.Duration, logger *zap.Logger) (*NATSLocker, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	kv, err := js.KeyValue(bucket)
	if errors.Is(err, nats.ErrBucketNotFound) {
		kv, err = js.CreateKeyValue(&nats.KeyValueConfig{
			Bucket: bucket,
			TTL:    defaultTTL,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("scanlock: open KV bucket %q: %w", bucket, err)
	}

	logger.Info("scan lock backend ready", zap.String("bucket", bucket), zap.Duration("default_ttl", defaultTTL))
	return &NATSLocker{kv: kv, logger: logger}, nil
}

// SetIfAbsent implements Locker.
func (l *NATSLocker) SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}

	_, err := l.kv.Create(key, []byte(value))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, nats.ErrKeyExists) {
		return false, nil
	}
	return false, fmt.Errorf("scanlock: setIfAbsent %s: %w", key, err)
}

// CompareAndDelete implements Locker.
func (l *NATSLocker) CompareAndDelete(ctx context.Context, key, expectedValue string) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}

	entry, err := l.kv.Get(key)
	if errors.Is(err, nats.ErrKeyNotFound) {
		return false, nil // already gone (expired or released by someone else)
	}
	if err != nil {
		return false, fmt.Errorf("scanlock: get %s: %w", key, err)
	}
	if string(entry.Value()) != expectedValue {
		return false, nil // not ours anymore
	}

	if err := l.kv.Delete(key, nats.LastRevision(entry.Revision())); err != nil {
		if errors.Is(err, nats.ErrKeyNotFound) {
			return false, nil
		}
		// A revision mismatch means someone else raced us; treat as "not ours".
		return false, nil
	}
	return true, nil
}

// Extend implements Locker.
func (l *NATSLocker) Extend(ctx context.Context, key, expectedValue string, ttl time.Duration) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}

	entry, err := l.kv.Get(key)
	if errors.Is(err, nats.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("scanlock: get %s: %w", key, err)
	}
	if string(entry.Value()) != expectedValue {
		return false, nil
	}

	if _, err := l.kv.Update(key, entry.Value(), entry.Revision()); err != nil {
		// Lost the race to someone else's write; the holder no longer owns it.
		return false, nil
	}
	return true, nil
}

// Exists implements Locker.
func (l *NATSLocker) Exists(ctx context.Context, key string) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}

	_, err := l.kv.Get(key)
	if errors.Is(err, nats.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("scanlock: exists %s: %w", key, err)
	}
	return true, nil
}
