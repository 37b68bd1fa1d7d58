package profile

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "profile:"
	// maxTxRetries bounds optimistic retries when another writer touches the key.
	maxTxRetries = 8
)

// ErrTxConflict is returned when an update keeps losing the optimistic race.
var ErrTxConflict = errors.New("profile changed concurrently")

var cborEnc = func() cbor.EncMode {
	em, err := cbor.EncOptions{Time: cbor.TimeRFC3339Nano}.EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

// redisLink and redisProfile are the CBOR value layout.
type redisLink struct {
	ID          uint64  `cbor:"1,keyasint"`
	URI         string  `cbor:"2,keyasint"`
	Title       string  `cbor:"3,keyasint"`
	Description string  `cbor:"4,keyasint"`
	ImageURI    *string `cbor:"5,keyasint,omitempty"`
}

type redisProfile struct {
	Title       string      `cbor:"1,keyasint"`
	Description string      `cbor:"2,keyasint"`
	ImageURI    *string     `cbor:"3,keyasint,omitempty"`
	Links       []redisLink `cbor:"4,keyasint"`
	Published   bool        `cbor:"5,keyasint"`
	NextLinkID  uint64      `cbor:"6,keyasint"`
	CreatedAt   time.Time   `cbor:"7,keyasint"`
	UpdatedAt   time.Time   `cbor:"8,keyasint"`
}

func encodeRedisProfile(p *Profile) ([]byte, error) {
	links := make([]redisLink, 0, len(p.Links))
	for _, l := range p.Links {
		links = append(links, redisLink(l))
	}
	return cborEnc.Marshal(redisProfile{
		Title:       p.Title,
		Description: p.Description,
		ImageURI:    p.ImageURI,
		Links:       links,
		Published:   p.Published,
		NextLinkID:  p.NextLinkID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	})
}

func decodeRedisProfile(owner string, data []byte) (*Profile, error) {
	var rp redisProfile
	if err := cbor.Unmarshal(data, &rp); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", owner, err)
	}
	links := make([]Link, 0, len(rp.Links))
	for _, l := range rp.Links {
		links = append(links, Link(l))
	}
	return &Profile{
		Owner:       owner,
		Title:       rp.Title,
		Description: rp.Description,
		ImageURI:    rp.ImageURI,
		Links:       links,
		Published:   rp.Published,
		NextLinkID:  rp.NextLinkID,
		CreatedAt:   rp.CreatedAt.UTC(),
		UpdatedAt:   rp.UpdatedAt.UTC(),
	}, nil
}

// RedisConfig holds connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	UseTLS   bool
}

// NewRedisClient builds a client from cfg.
func NewRedisClient(cfg RedisConfig) *redis.Client {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.UseTLS {
		opts.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
	}
	return redis.NewClient(opts)
}

// RedisStore implements Store with one CBOR value per owner key.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func redisKey(owner string) string {
	return redisKeyPrefix + owner
}

// Get retrieves a profile by owner.
func (s *RedisStore) Get(ctx context.Context, owner string) (*Profile, error) {
	data, err := s.client.Get(ctx, redisKey(owner)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeRedisProfile(owner, data)
}

// Create writes the profile only if the key does not exist yet.
func (s *RedisStore) Create(ctx context.Context, p *Profile) error {
	data, err := encodeRedisProfile(p)
	if err != nil {
		return err
	}
	ok, err := s.client.SetNX(ctx, redisKey(p.Owner), data, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrAlreadyExists
	}
	return nil
}

// Update runs fn inside a WATCH/MULTI transaction on the owner key and
// retries when a concurrent writer invalidates the watch.
func (s *RedisStore) Update(ctx context.Context, owner string, fn func(p *Profile) error) (*Profile, error) {
	key := redisKey(owner)

	for range maxTxRetries {
		var result *Profile
		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if errors.Is(err, redis.Nil) {
				return ErrNotFound
			}
			if err != nil {
				return err
			}

			p, err := decodeRedisProfile(owner, data)
			if err != nil {
				return err
			}
			if err := fn(p); err != nil {
				return err
			}
			out, err := encodeRedisProfile(p)
			if err != nil {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, out, 0)
				return nil
			})
			if err != nil {
				return err
			}
			result = p
			return nil
		}, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return result, nil
	}
	return nil, fmt.Errorf("update profile %s: %w", owner, ErrTxConflict)
}

// Compile-time interface check
var _ Store = (*RedisStore)(nil)
