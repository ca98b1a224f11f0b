package service

import (
	"bytes"
	"crypto/sha1"
	"fmt"
	"os"
	"sort"
)

// Corpus is a static, sorted, read-only set of SHA-1 digests of publicly
// compromised passwords. The whole file is held in memory and shared
// across goroutines without locking; lookups never mutate it.
//
// Failure policy is fail-closed: a corpus that cannot be read or whose
// size is not a whole number of digests is fatal at construction, so a
// checker never exists in a state where lookups could silently pass.
type Corpus struct {
	digests []byte
}

// LoadCorpus reads a corpus file of concatenated, sorted 20-byte SHA-1
// digests (the pwned-passwords binary layout).
func LoadCorpus(path string) (*Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("breach corpus: %w", err)
	}
	return NewCorpus(data)
}

// NewCorpus wraps raw digest bytes, validating the record size.
func NewCorpus(data []byte) (*Corpus, error) {
	if len(data)%sha1.Size != 0 {
		return nil, fmt.Errorf("breach corpus: truncated file, %d bytes is not a multiple of %d", len(data), sha1.Size)
	}
	return &Corpus{digests: data}, nil
}

// Len returns the number of digests in the corpus.
func (c *Corpus) Len() int {
	return len(c.digests) / sha1.Size
}

// IsCompromised binary-searches the password's SHA-1 digest.
func (c *Corpus) IsCompromised(password string) bool {
	digest := sha1.Sum([]byte(password))
	n := c.Len()
	i := sort.Search(n, func(i int) bool {
		return bytes.Compare(c.record(i), digest[:]) >= 0
	})
	return i < n && bytes.Equal(c.record(i), digest[:])
}

func (c *Corpus) record(i int) []byte {
	return c.digests[i*sha1.Size : (i+1)*sha1.Size]
}
