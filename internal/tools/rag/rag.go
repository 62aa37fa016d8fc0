// Package rag registers the retrieval tools backed by a vector.Store:
// the vector set (document maintenance and a mock retriever), the rag set
// (similarity retrieval) and the url set (URL and term lookup).
package rag

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/wagiedev/wstools-go/internal/tool"
	"github.com/wagiedev/wstools-go/internal/vector"
)

// Store names used by the tools.
const (
	StoreURL  = "url"
	StoreTerm = "term"
)

// MaxTopK bounds the number of results any retrieval tool returns.
const MaxTopK = 100

// topKParam declares an optional result count in [0, MaxTopK].
func topKParam(def int) tool.Param {
	lo, hi := 0.0, float64(MaxTopK)

	return tool.Optional("top_k", tool.TypeInteger, def).WithSchema(&jsonschema.Schema{
		Type:    "integer",
		Minimum: &lo,
		Maximum: &hi,
	})
}

func storeParam() tool.Param {
	return tool.Optional("store", tool.TypeString, StoreURL).Describe("Store to use: url, term or text")
}

func register(reg *tool.Registry, descriptors ...*tool.Descriptor) error {
	for _, d := range descriptors {
		if err := reg.Register(d); err != nil {
			return err
		}
	}

	return nil
}

// RegisterVector adds rag_query, rag_add, rag_update, rag_delete and
// retrieve_mock to reg.
func RegisterVector(reg *tool.Registry, store *vector.Store) error {
	return register(reg,
		tool.MustNew("rag_query", "Searches a store and reports the best matches",
			[]tool.Param{
				tool.Required("query", tool.TypeString),
				storeParam(),
				topKParam(3),
			},
			func(ctx context.Context, args tool.Args) (any, error) {
				query, name := args.String("query"), args.String("store")

				matches, err := store.Search(ctx, name, query, args.Int("top_k"))
				if err != nil {
					return nil, err
				}

				return map[string]any{
					"answer":  "RAG结果: " + query,
					"store":   name,
					"results": matches,
				}, nil
			},
		),
		tool.MustNew("rag_add", "Adds a document to a store",
			[]tool.Param{
				tool.Required("doc", tool.TypeObject).Describe(`Document: {"content", "metadata"} or a url record {"uri", "ap", "desc"}`),
				storeParam(),
			},
			func(ctx context.Context, args tool.Args) (any, error) {
				raw, name := args.Map("doc"), args.String("store")

				doc, err := DocumentFrom(raw)
				if err != nil {
					return nil, err
				}

				added, err := store.Add(ctx, name, doc)
				if err != nil {
					return nil, err
				}

				return map[string]any{"status": "added", "id": added.ID, "doc": raw, "store": name}, nil
			},
		),
		tool.MustNew("rag_update", "Replaces a document in a store",
			[]tool.Param{
				tool.Required("doc_id", tool.TypeString),
				tool.Required("doc", tool.TypeObject),
				storeParam(),
			},
			func(ctx context.Context, args tool.Args) (any, error) {
				id, raw, name := args.String("doc_id"), args.Map("doc"), args.String("store")

				doc, err := DocumentFrom(raw)
				if err != nil {
					return nil, err
				}

				if _, err := store.Update(ctx, name, id, doc); err != nil {
					return nil, err
				}

				return map[string]any{"status": "updated", "id": id, "doc": raw, "store": name}, nil
			},
		),
		tool.MustNew("rag_delete", "Deletes a document from a store",
			[]tool.Param{
				tool.Required("doc_id", tool.TypeString),
				storeParam(),
			},
			func(ctx context.Context, args tool.Args) (any, error) {
				id, name := args.String("doc_id"), args.String("store")

				if err := store.Delete(ctx, name, id); err != nil {
					return nil, err
				}

				return map[string]any{"status": "deleted", "id": id, "store": name}, nil
			},
		),
		tool.MustNew("retrieve_mock", "Returns sample url records, or placeholder documents for other stores",
			[]tool.Param{
				tool.Required("question", tool.TypeString),
				topKParam(5),
				storeParam(),
			},
			func(_ context.Context, args tool.Args) (any, error) {
				return RetrieveMock(store, args.String("question"), args.Int("top_k"), args.String("store"))
			},
		),
	)
}

// RegisterRetrieve adds retrieve to reg.
func RegisterRetrieve(reg *tool.Registry, store *vector.Store) error {
	return register(reg,
		tool.MustNew("retrieve", "Similarity search over a store",
			[]tool.Param{
				tool.Required("question", tool.TypeString),
				topKParam(5),
				storeParam(),
			},
			func(ctx context.Context, args tool.Args) (any, error) {
				return store.Search(ctx, args.String("store"), args.String("question"), args.Int("top_k"))
			},
		),
	)
}

// RegisterURL adds query_url and term_match to reg.
func RegisterURL(reg *tool.Registry, store *vector.Store) error {
	return register(reg,
		tool.MustNew("query_url", "Finds the API URL best matching a natural language request",
			[]tool.Param{tool.Required("natural_language_input", tool.TypeString)},
			func(ctx context.Context, args tool.Args) (any, error) {
				return store.Search(ctx, StoreURL, args.String("natural_language_input"), 1)
			},
		),
		tool.MustNew("term_match", "Finds glossary terms matching a text",
			[]tool.Param{
				tool.Required("text", tool.TypeString),
				topKParam(3),
			},
			func(ctx context.Context, args tool.Args) (any, error) {
				matches, err := store.Search(ctx, StoreTerm, args.String("text"), args.Int("top_k"))
				if err != nil {
					return nil, fmt.Errorf("term_match failed: %w", err)
				}

				return matches, nil
			},
		),
	)
}

// DocumentFrom converts a tool argument into a document. The content is
// taken from "content", or from "desc" for url records; "metadata" is used
// as given, and url records keep their own fields as metadata.
func DocumentFrom(raw map[string]any) (vector.Document, error) {
	var doc vector.Document

	doc.ID, _ = raw["id"].(string)

	if content, ok := raw["content"].(string); ok {
		doc.Content = content
		doc.Metadata, _ = raw["metadata"].(map[string]any)

		return doc, nil
	}

	desc, ok := raw["desc"].(string)
	if !ok {
		return vector.Document{}, fmt.Errorf("doc needs a content or desc string")
	}

	doc.Content = desc
	doc.Metadata = make(map[string]any, len(raw))

	for k, v := range raw {
		if k != "id" {
			doc.Metadata[k] = v
		}
	}

	return doc, nil
}

// RetrieveMock samples up to topK url records at random, or makes topK
// placeholder documents for any other store. topK is clamped to
// [0, MaxTopK].
func RetrieveMock(store *vector.Store, question string, topK int, name string) (any, error) {
	topK = min(max(topK, 0), MaxTopK)

	if name != StoreURL {
		docs := make([]vector.Document, topK)
		for i := range docs {
			docs[i] = vector.Document{
				ID:      fmt.Sprintf("%s-%d", name, i+1),
				Content: fmt.Sprintf("[%s]相关内容 %d for '%s'", name, i+1, question),
			}
		}

		return docs, nil
	}

	docs, err := store.Documents(StoreURL)
	if err != nil {
		return nil, err
	}

	records := make([]map[string]any, 0, min(topK, len(docs)))
	for _, i := range rand.Perm(len(docs))[:min(topK, len(docs))] {
		records = append(records, docs[i].Metadata)
	}

	return records, nil
}
