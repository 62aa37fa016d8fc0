package vector

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"math"
	"slices"
	"sync"

	"github.com/google/uuid"
)

var (
	// ErrUnknownStore is returned for a store name the Store was not built with.
	ErrUnknownStore = errors.New("unknown store")
	// ErrNotFound is returned when a document id is not in the store.
	ErrNotFound = errors.New("document not found")
	// ErrExists is returned when adding a document whose id is taken.
	ErrExists = errors.New("document already exists")
)

// DefaultStores are the named stores created when Options.Stores is empty.
var DefaultStores = []string{"url", "term", "text"}

// Document is one searchable entry.
type Document struct {
	ID       string         `json:"id"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Match is a search hit.
type Match struct {
	Document
	Score float64 `json:"score"`
}

// Backend persists documents outside the process.
type Backend interface {
	Save(ctx context.Context, store string, doc Document) error
	Delete(ctx context.Context, store, id string) error
	Load(ctx context.Context, store string) ([]Document, error)
}

// Options configures a Store.
type Options struct {
	Stores     []string
	Dimensions int
	// Backend, when set, receives every write before it is applied in memory.
	Backend Backend
	Logger  *slog.Logger
}

// Store is a set of named in-memory document collections searched by
// hashed TF-IDF cosine similarity. It is safe for concurrent use.
type Store struct {
	log     *slog.Logger
	dims    int
	backend Backend

	mu          sync.RWMutex
	collections map[string]*collection
}

// NewStore creates an empty Store.
func NewStore(opts Options) *Store {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	names := opts.Stores
	if len(names) == 0 {
		names = DefaultStores
	}

	dims := opts.Dimensions
	if dims <= 0 {
		dims = DefaultDimensions
	}

	s := &Store{
		log:         log.With("component", "vector"),
		dims:        dims,
		backend:     opts.Backend,
		collections: make(map[string]*collection, len(names)),
	}

	for _, name := range names {
		s.collections[name] = newCollection()
	}

	return s
}

// Stores returns the store names in sorted order.
func (s *Store) Stores() []string {
	return slices.Sorted(maps.Keys(s.collections))
}

// Load fills every store from the backend. It is a no-op without one.
func (s *Store) Load(ctx context.Context) error {
	if s.backend == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for name, c := range s.collections {
		docs, err := s.backend.Load(ctx, name)
		if err != nil {
			return fmt.Errorf("load store %s: %w", name, err)
		}

		for _, doc := range docs {
			c.put(doc)
		}

		s.log.Debug("Loaded documents", "store", name, "count", len(docs))
	}

	return nil
}

// Seed upserts docs into store. Documents without an id get a random one.
func (s *Store) Seed(ctx context.Context, store string, docs []Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.collection(store)
	if err != nil {
		return err
	}

	for _, doc := range docs {
		if doc.ID == "" {
			doc.ID = uuid.NewString()
		}

		if err := s.save(ctx, store, doc); err != nil {
			return err
		}

		c.put(doc)
	}

	s.log.Info("Seeded store", "store", store, "count", len(docs))

	return nil
}

// Add inserts doc into store and returns it with its id set.
func (s *Store) Add(ctx context.Context, store string, doc Document) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.collection(store)
	if err != nil {
		return Document{}, err
	}

	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}

	if _, ok := c.docs[doc.ID]; ok {
		return Document{}, fmt.Errorf("%w: %s", ErrExists, doc.ID)
	}

	if err := s.save(ctx, store, doc); err != nil {
		return Document{}, err
	}

	c.put(doc)

	return doc, nil
}

// Update replaces the document with the given id.
func (s *Store) Update(ctx context.Context, store, id string, doc Document) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.collection(store)
	if err != nil {
		return Document{}, err
	}

	if _, ok := c.docs[id]; !ok {
		return Document{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	doc.ID = id

	if err := s.save(ctx, store, doc); err != nil {
		return Document{}, err
	}

	c.put(doc)

	return doc, nil
}

// Delete removes the document with the given id.
func (s *Store) Delete(ctx context.Context, store, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.collection(store)
	if err != nil {
		return err
	}

	if _, ok := c.docs[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if s.backend != nil {
		if err := s.backend.Delete(ctx, store, id); err != nil {
			return fmt.Errorf("delete %s from store %s: %w", id, store, err)
		}
	}

	c.remove(id)

	return nil
}

// Get returns one document.
func (s *Store) Get(store, id string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, err := s.collection(store)
	if err != nil {
		return Document{}, err
	}

	e, ok := c.docs[id]
	if !ok {
		return Document{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return e.doc, nil
}

// Documents returns every document of store in insertion order.
func (s *Store) Documents(store string) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, err := s.collection(store)
	if err != nil {
		return nil, err
	}

	docs := make([]Document, 0, len(c.order))
	for _, id := range c.order {
		docs = append(docs, c.docs[id].doc)
	}

	return docs, nil
}

// Search returns up to k documents of store most similar to query, best
// first. Documents sharing no term with the query are never returned.
func (s *Store) Search(_ context.Context, store, query string, k int) ([]Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, err := s.collection(store)
	if err != nil {
		return nil, err
	}

	if k <= 0 {
		return []Match{}, nil
	}

	return c.search(query, k, s.dims), nil
}

func (s *Store) collection(name string) (*collection, error) {
	c, ok := s.collections[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStore, name)
	}

	return c, nil
}

func (s *Store) save(ctx context.Context, store string, doc Document) error {
	if s.backend == nil {
		return nil
	}

	if err := s.backend.Save(ctx, store, doc); err != nil {
		return fmt.Errorf("save %s to store %s: %w", doc.ID, store, err)
	}

	return nil
}

type entry struct {
	doc Document
	tf  map[string]float64
}

type collection struct {
	docs  map[string]*entry
	order []string
	// df counts the documents containing each term.
	df map[string]int
}

func newCollection() *collection {
	return &collection{
		docs: make(map[string]*entry),
		df:   make(map[string]int),
	}
}

func (c *collection) put(doc Document) {
	if _, ok := c.docs[doc.ID]; ok {
		c.forget(doc.ID)
	} else {
		c.order = append(c.order, doc.ID)
	}

	e := &entry{doc: doc, tf: termFrequencies(tokenize(doc.Content))}
	for term := range e.tf {
		c.df[term]++
	}

	c.docs[doc.ID] = e
}

func (c *collection) remove(id string) {
	c.forget(id)
	c.order = slices.DeleteFunc(c.order, func(o string) bool { return o == id })
}

// forget drops a document's terms and entry but keeps its position.
func (c *collection) forget(id string) {
	e := c.docs[id]
	for term := range e.tf {
		if c.df[term]--; c.df[term] <= 0 {
			delete(c.df, term)
		}
	}

	delete(c.docs, id)
}

func (c *collection) idf(term string) float64 {
	return math.Log(float64(len(c.docs)+1)/float64(c.df[term]+1)) + 1
}

func (c *collection) search(query string, k, dims int) []Match {
	qtf := termFrequencies(tokenize(query))
	if len(qtf) == 0 {
		return []Match{}
	}

	qvec := embed(qtf, c.idf, dims)

	matches := make([]Match, 0, len(c.order))

	for _, id := range c.order {
		e := c.docs[id]

		shared := false
		for term := range qtf {
			if _, ok := e.tf[term]; ok {
				shared = true

				break
			}
		}

		if !shared {
			continue
		}

		matches = append(matches, Match{
			Document: e.doc,
			Score:    dot(qvec, embed(e.tf, c.idf, dims)),
		})
	}

	slices.SortStableFunc(matches, func(a, b Match) int {
		return cmp.Compare(b.Score, a.Score)
	})

	if len(matches) > k {
		matches = matches[:k]
	}

	return matches
}
