// Package vector provides the document store behind the RAG tools.
//
// Each named store is an in-memory collection. Documents are embedded as
// unit vectors by hashing their TF-IDF weighted terms into a fixed number
// of buckets, and searches rank documents by cosine similarity. A Backend
// such as RedisBackend can persist documents across restarts.
package vector
