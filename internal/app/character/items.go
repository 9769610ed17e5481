package character

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"rfportal/internal/domain/character"
)

type ItemLookup interface {
	Lookup(ctx context.Context, table string, ids []int32) (map[int32]character.ItemMeta, error)
}

// itemResolver fetches item display metadata one query per item table, with
// an optional Redis read-through cache. Item tables are static game data, so
// entries only expire by TTL.
type itemResolver struct {
	lookup   ItemLookup
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
}

func cacheKey(k character.ItemKey) string {
	return "item:" + k.Table + ":" + strconv.FormatInt(int64(k.ID), 10)
}

func (r *itemResolver) resolve(ctx context.Context, refs []character.ItemRef) (map[character.ItemKey]character.ItemMeta, error) {
	out := make(map[character.ItemKey]character.ItemMeta, len(refs))
	if len(refs) == 0 {
		return out, nil
	}
	groups := character.GroupByTable(refs)
	if r.cache != nil {
		groups = r.fromCache(ctx, groups, out)
	}
	for table, ids := range groups {
		found, err := r.lookup.Lookup(ctx, table, ids)
		if err != nil {
			return nil, fmt.Errorf("resolve items: %w", err)
		}
		fetched := make(map[character.ItemKey]character.ItemMeta, len(found))
		for id, m := range found {
			k := character.ItemKey{Table: table, ID: id}
			out[k] = m
			fetched[k] = m
		}
		r.store(ctx, fetched)
	}
	return out, nil
}

// fromCache fills out with cached entries and returns the ids still missing.
func (r *itemResolver) fromCache(ctx context.Context, groups map[string][]int32, out map[character.ItemKey]character.ItemMeta) map[string][]int32 {
	var keys []character.ItemKey
	for table, ids := range groups {
		for _, id := range ids {
			keys = append(keys, character.ItemKey{Table: table, ID: id})
		}
	}
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = cacheKey(k)
	}
	vals, err := r.cache.MGet(ctx, names...).Result()
	if err != nil {
		r.logger.Debug().Err(err).Msg("item cache read failed")
		return groups
	}
	missing := make(map[string][]int32)
	for i, v := range vals {
		k := keys[i]
		if s, ok := v.(string); ok {
			var m character.ItemMeta
			if json.Unmarshal([]byte(s), &m) == nil {
				out[k] = m
				continue
			}
		}
		missing[k.Table] = append(missing[k.Table], k.ID)
	}
	return missing
}

func (r *itemResolver) store(ctx context.Context, fetched map[character.ItemKey]character.ItemMeta) {
	if r.cache == nil || len(fetched) == 0 {
		return
	}
	pipe := r.cache.Pipeline()
	for k, m := range fetched {
		b, err := json.Marshal(m)
		if err != nil {
			continue
		}
		pipe.Set(ctx, cacheKey(k), b, r.cacheTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Debug().Err(err).Msg("item cache write failed")
	}
}
