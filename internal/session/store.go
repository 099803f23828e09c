package session

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// Store keeps sessions in process memory. Sessions expire after ttl without
// access and are lost on restart.
type Store struct {
	cache *cache.Cache
	ttl   time.Duration
}

// NewStore creates a store whose sessions idle out after ttl.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Store{
		cache: cache.New(ttl, 10*time.Minute),
		ttl:   ttl,
	}
}

// Save stores s, resetting its expiry.
func (r *Store) Save(s *Session) {
	r.cache.Set(s.ID, s, r.ttl)
}

// Get returns the session and extends its lifetime.
func (r *Store) Get(id string) (*Session, bool) {
	x, found := r.cache.Get(id)
	if !found {
		return nil, false
	}
	s := x.(*Session)
	r.Save(s)
	return s, true
}

func (r *Store) Delete(id string) {
	r.cache.Delete(id)
}

// Len reports the number of live sessions.
func (r *Store) Len() int {
	return r.cache.ItemCount()
}
