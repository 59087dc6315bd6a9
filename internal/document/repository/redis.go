package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/lastutorials/pdfsplit/internal/document"
	"github.com/redis/go-redis/v9"
)

// RedisRepo stores documents as JSON under "<prefix><documentId>" and keeps
// the set of known ids under "<prefix>ids" for List.
type RedisRepo struct {
	client *redis.Client
	prefix string

	// beforeCommit runs between the watched read and EXEC; tests use it to
	// simulate concurrent writers.
	beforeCommit func()
}

// NewRedisRepo creates a Redis-backed repository. Prefix may be empty.
func NewRedisRepo(client *redis.Client, prefix string) *RedisRepo {
	if prefix == "" {
		prefix = "document:"
	}
	return &RedisRepo{client: client, prefix: prefix}
}

func (r *RedisRepo) key(id document.ID) string { return r.prefix + string(id) }
func (r *RedisRepo) idsKey() string            { return r.prefix + "ids" }

func (r *RedisRepo) Create(ctx context.Context, doc *document.Document) error {
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	b, err := marshalRecord(doc)
	if err != nil {
		return err
	}
	ok, err := r.client.SetNX(ctx, r.key(doc.DocumentID), b, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrExists
	}
	return r.client.SAdd(ctx, r.idsKey(), string(doc.DocumentID)).Err()
}

func (r *RedisRepo) Get(ctx context.Context, id document.ID) (*document.Document, error) {
	b, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return unmarshalRecord(b)
}

func (r *RedisRepo) List(ctx context.Context) ([]*document.Document, error) {
	ids, err := r.client.SMembers(ctx, r.idsKey()).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(ids)
	out := make([]*document.Document, 0, len(ids))
	for _, id := range ids {
		d, err := r.Get(ctx, document.ID(id))
		if errors.Is(err, ErrNotFound) {
			// stale id left by an out-of-band delete
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// maxUpdateAttempts bounds optimistic retries when a watched key changes
// between read and EXEC.
const maxUpdateAttempts = 5

func (r *RedisRepo) Update(ctx context.Context, id document.ID, p Patch) (*document.Document, error) {
	var out *document.Document
	key := r.key(id)
	txf := func(tx *redis.Tx) error {
		b, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		d, err := unmarshalRecord(b)
		if err != nil {
			return err
		}
		if r.beforeCommit != nil {
			r.beforeCommit()
		}
		p.apply(d)
		d.UpdatedAt = time.Now().UTC()
		nb, err := marshalRecord(d)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, nb, 0)
			return nil
		})
		out = d
		return err
	}
	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrConflict, id)
}

func (r *RedisRepo) Delete(ctx context.Context, id document.ID) error {
	n, err := r.client.Del(ctx, r.key(id)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return r.client.SRem(ctx, r.idsKey(), string(id)).Err()
}

// redisRecord exists because Document hides ContentKey from the API JSON.
type redisRecord struct {
	document.Document
	ContentKey string `json:"contentKey,omitempty"`
}

func marshalRecord(d *document.Document) ([]byte, error) {
	return json.Marshal(redisRecord{Document: *d, ContentKey: d.ContentKey})
}

func unmarshalRecord(b []byte) (*document.Document, error) {
	var rec redisRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, err
	}
	d := rec.Document
	d.ContentKey = rec.ContentKey
	return &d, nil
}
