package dice

import (
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// Cache memoizes round distributions for the lifetime of the process.
// It is safe for concurrent use; concurrent misses on the same key
// enumerate the round once.
type Cache struct {
	sync.RWMutex
	rules Rules
	table map[Key]*Distribution
	group singleflight.Group
}

func NewCache(rules Rules) *Cache {
	return &Cache{
		rules: rules,
		table: make(map[Key]*Distribution),
	}
}

var defaultCache = NewCache(NewStandardRules())

// Default returns the process-wide cache for the standard rules.
func Default() *Cache {
	return defaultCache
}

func (c *Cache) Rules() Rules {
	return c.rules
}

func (c *Cache) lookup(key Key) (*Distribution, bool) {
	c.RLock()
	defer c.RUnlock()

	dist, ok := c.table[key]
	return dist, ok
}

// Get returns the distribution for key, enumerating it on first use.
func (c *Cache) Get(key Key) (*Distribution, error) {
	if dist, ok := c.lookup(key); ok {
		return dist, nil
	}

	v, err, _ := c.group.Do(key.String(), func() (any, error) {
		if dist, ok := c.lookup(key); ok {
			return dist, nil
		}
		dist, err := Enumerate(c.rules, key)
		if err != nil {
			return nil, err
		}
		c.Lock()
		c.table[key] = dist
		c.Unlock()
		log.Debug().Str("round", key.String()).Int("outcomes", len(dist.outcomes)).Msg("computed round distribution")
		return dist, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Distribution), nil
}

// Len returns the number of cached distributions.
func (c *Cache) Len() int {
	c.RLock()
	defer c.RUnlock()

	return len(c.table)
}

// Round returns the cached distribution for the standard rules.
func Round(attackDice, defenseDice, attackSides, defenseSides int) (*Distribution, error) {
	return defaultCache.Get(Key{
		AttackDice:   attackDice,
		DefenseDice:  defenseDice,
		AttackSides:  attackSides,
		DefenseSides: defenseSides,
	})
}
