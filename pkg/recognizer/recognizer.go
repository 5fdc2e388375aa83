// Package recognizer sorts plexes into structural classes. Two plexes share a
// class exactly when an isomorphism exists between them.
package recognizer

import (
	"time"

	"github.com/dd0wney/plexnet/pkg/plex"
)

// Class is one isomorphism class. Its paradigm is the first plex recognized
// in it.
type Class struct {
	ID        int
	Paradigm  plex.Plex
	Invariant plex.Invariant
}

// Recognition is the result of recognizing a plex. Iso maps the query plex
// onto the class paradigm.
type Recognition struct {
	Class  *Class
	Iso    plex.Iso
	New    bool // the query became the paradigm of a new class
	Cached bool // answered from the result cache without searching
}

// Stats counts recognizer activity.
type Stats struct {
	Classes     int
	CacheHits   int
	CacheMisses int
	Searches    int
}

// Observer receives recognizer events. The metrics registry implements it.
type Observer interface {
	ObserveRecognition(result string)
	ObserveSearch(d time.Duration)
}

// Recognition results reported to the Observer.
const (
	ResultCached = "cached"
	ResultHit    = "hit"
	ResultNew    = "new"
)

// Recognizer keeps classes indexed by invariant and memoizes results by exact
// plex value. It is not safe for concurrent use.
type Recognizer struct {
	classes  []*Class
	index    map[plex.Invariant][]*Class
	cache    map[string]Recognition
	useCache bool
	observer Observer
	stats    Stats
}

// Option configures a Recognizer.
type Option func(*Recognizer)

// WithCache turns the result cache on or off. It is on by default.
func WithCache(enabled bool) Option {
	return func(r *Recognizer) { r.useCache = enabled }
}

// WithObserver reports recognitions and search timings to o.
func WithObserver(o Observer) Option {
	return func(r *Recognizer) { r.observer = o }
}

// New creates an empty Recognizer.
func New(opts ...Option) *Recognizer {
	r := &Recognizer{
		index:    make(map[plex.Invariant][]*Class),
		cache:    make(map[string]Recognition),
		useCache: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Recognize returns the class of p and an iso from p onto its paradigm. A plex
// that breaks the connectivity invariant yields modelerr.ErrMalformedStructure.
func (r *Recognizer) Recognize(p plex.Plex) (Recognition, error) {
	var key string
	if r.useCache {
		key = p.Encode()
		if hit, ok := r.cache[key]; ok {
			r.stats.CacheHits++
			r.observe(ResultCached)
			hit.New = false
			hit.Cached = true
			return hit, nil
		}
		r.stats.CacheMisses++
	}

	if err := plex.Check(p); err != nil {
		return Recognition{}, err
	}

	inv := plex.InvariantOf(p)
	for _, c := range r.index[inv] {
		iso, found, err := r.search(p, c.Paradigm)
		if err != nil {
			return Recognition{}, err
		}
		if found {
			rec := Recognition{Class: c, Iso: iso}
			r.remember(key, rec)
			r.observe(ResultHit)
			return rec, nil
		}
	}

	c := &Class{ID: len(r.classes), Paradigm: p.Clone(), Invariant: inv}
	r.classes = append(r.classes, c)
	r.index[inv] = append(r.index[inv], c)
	r.stats.Classes++

	rec := Recognition{Class: c, Iso: plex.Identity(p), New: true}
	r.remember(key, rec)
	r.observe(ResultNew)
	return rec, nil
}

func (r *Recognizer) search(p, paradigm plex.Plex) (plex.Iso, bool, error) {
	start := time.Now()
	iso, found, err := plex.FindIso(p, paradigm)
	r.stats.Searches++
	if r.observer != nil {
		r.observer.ObserveSearch(time.Since(start))
	}
	return iso, found, err
}

func (r *Recognizer) remember(key string, rec Recognition) {
	if r.useCache {
		r.cache[key] = rec
	}
}

func (r *Recognizer) observe(result string) {
	if r.observer != nil {
		r.observer.ObserveRecognition(result)
	}
}

// Class returns the class with the given ID, or nil.
func (r *Recognizer) Class(id int) *Class {
	if id < 0 || id >= len(r.classes) {
		return nil
	}
	return r.classes[id]
}

// Classes returns every class in creation order.
func (r *Recognizer) Classes() []*Class {
	return append([]*Class(nil), r.classes...)
}

// Len returns the number of classes.
func (r *Recognizer) Len() int {
	return len(r.classes)
}

// Stats returns activity counters.
func (r *Recognizer) Stats() Stats {
	return r.stats
}
