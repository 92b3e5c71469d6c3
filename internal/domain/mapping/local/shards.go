package local

import (
	"cmp"
	"hash/maphash"
	"slices"
	"sync"
)

const shardCount = 64

// key addresses one list: identifier id of database from, mapped to database to
type key struct {
	from string
	id   string
	to   string
}

type posting struct {
	line  int64
	value string
}

type shard struct {
	mu    sync.Mutex
	lists map[key][]posting
}

// store accumulates postings from concurrent parsers. Each shard has its own
// lock so writers only contend on the same shard.
type store struct {
	seed   maphash.Seed
	shards [shardCount]shard
}

func newStore() *store {
	s := &store{seed: maphash.MakeSeed()}
	for i := range s.shards {
		s.shards[i].lists = make(map[key][]posting)
	}
	return s
}

func (s *store) add(k key, line int64, value string) {
	sh := &s.shards[maphash.String(s.seed, k.id)%shardCount]

	sh.mu.Lock()
	sh.lists[k] = append(sh.lists[k], posting{line: line, value: value})
	sh.mu.Unlock()
}

// freeze orders every list by line number, drops repeated values and merges
// the shards. The store must not be written afterwards.
func (s *store) freeze() map[key][]string {
	size := 0
	for i := range s.shards {
		size += len(s.shards[i].lists)
	}

	out := make(map[key][]string, size)
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		for k, postings := range sh.lists {
			out[k] = ordered(postings)
		}
		sh.lists = nil
		sh.mu.Unlock()
	}
	return out
}

func ordered(postings []posting) []string {
	slices.SortStableFunc(postings, func(a, b posting) int {
		return cmp.Compare(a.line, b.line)
	})

	seen := make(map[string]struct{}, len(postings))
	values := make([]string, 0, len(postings))
	for _, p := range postings {
		if _, ok := seen[p.value]; ok {
			continue
		}
		seen[p.value] = struct{}{}
		values = append(values, p.value)
	}
	return values
}
