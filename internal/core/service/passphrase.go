package service

import (
	"bufio"
	"crypto/rand"
	"fmt"
	"math/big"
	"os"
	"strings"
)

const (
	passphraseWords = 4
	// minWordListSize keeps a misconfigured word list from silently
	// producing guessable passphrases.
	minWordListSize = 256
)

// PassphraseGenerator produces human-pronounceable multi-word temporary
// passwords, e.g. "ferry-onset-madam-crust".
type PassphraseGenerator struct {
	words []string
}

// LoadWordList reads one word per line, ignoring blanks.
func LoadWordList(path string) (*PassphraseGenerator, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("word list: %w", err)
	}
	defer f.Close()

	var words []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word != "" {
			words = append(words, word)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("word list: %w", err)
	}
	return NewPassphraseGenerator(words)
}

// NewPassphraseGenerator builds a generator over the given words.
func NewPassphraseGenerator(words []string) (*PassphraseGenerator, error) {
	if len(words) < minWordListSize {
		return nil, fmt.Errorf("word list: %d words is below the minimum of %d", len(words), minWordListSize)
	}
	return &PassphraseGenerator{words: words}, nil
}

// Generate picks passphraseWords words uniformly with crypto/rand and
// joins them with dashes.
func (g *PassphraseGenerator) Generate() (string, error) {
	picked := make([]string, passphraseWords)
	max := big.NewInt(int64(len(g.words)))
	for i := range picked {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("passphrase: %w", err)
		}
		picked[i] = g.words[n.Int64()]
	}
	return strings.Join(picked, "-"), nil
}
