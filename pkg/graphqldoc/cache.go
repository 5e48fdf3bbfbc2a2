package graphqldoc

import (
	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru"
	"github.com/vektah/gqlparser/v2/ast"
)

const DefaultCacheSize = 1024

// Cache memoizes parsed documents by the hash of their source. Parse errors
// are not cached.
type Cache struct {
	documents *lru.Cache
}

func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	documents, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &Cache{documents: documents}, nil
}

func (c *Cache) Parse(query string) (*ast.QueryDocument, error) {
	key := xxhash.Sum64String(query)
	if cached, ok := c.documents.Get(key); ok {
		return cached.(*ast.QueryDocument), nil
	}
	doc, err := Parse(query)
	if err != nil {
		return nil, err
	}
	c.documents.Add(key, doc)
	return doc, nil
}

func (c *Cache) Len() int {
	return c.documents.Len()
}
