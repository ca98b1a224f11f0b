package service

import (
	"bytes"
	"crypto/sha1"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// corpusOf builds an in-memory corpus from plaintext passwords, sorted
// the way the production file is.
func corpusOf(t *testing.T, passwords ...string) []byte {
	t.Helper()
	digests := make([][]byte, 0, len(passwords))
	for _, p := range passwords {
		d := sha1.Sum([]byte(p))
		digests = append(digests, d[:])
	}
	sort.Slice(digests, func(i, j int) bool {
		return bytes.Compare(digests[i], digests[j]) < 0
	})
	return bytes.Join(digests, nil)
}

func TestCorpus_Lookup(t *testing.T) {
	corpus, err := NewCorpus(corpusOf(t, "password", "123456", "qwerty", "letmein"))
	if err != nil {
		t.Fatalf("NewCorpus: %v", err)
	}
	if corpus.Len() != 4 {
		t.Fatalf("expected 4 digests, got %d", corpus.Len())
	}

	for _, pw := range []string{"password", "123456", "qwerty", "letmein"} {
		if !corpus.IsCompromised(pw) {
			t.Fatalf("%q should be reported compromised", pw)
		}
	}
	for _, pw := range []string{"a-genuinely-novel-password", "", "passwor"} {
		if corpus.IsCompromised(pw) {
			t.Fatalf("%q should be reported clean", pw)
		}
	}
}

func TestCorpus_EmptyIsClean(t *testing.T) {
	corpus, err := NewCorpus(nil)
	if err != nil {
		t.Fatalf("NewCorpus: %v", err)
	}
	if corpus.IsCompromised("anything") {
		t.Fatalf("empty corpus reported a hit")
	}
}

func TestLoadCorpus_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.bin")
	if err := os.WriteFile(path, corpusOf(t, "hunter2", "trustno1"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	corpus, err := LoadCorpus(path)
	if err != nil {
		t.Fatalf("LoadCorpus: %v", err)
	}
	if !corpus.IsCompromised("hunter2") {
		t.Fatalf("expected hit for hunter2")
	}
	if corpus.IsCompromised("hunter3") {
		t.Fatalf("expected miss for hunter3")
	}
}

// Fail-closed: a broken corpus is an error, never a permissive checker.
func TestLoadCorpus_FailsClosed(t *testing.T) {
	if _, err := LoadCorpus(filepath.Join(t.TempDir(), "missing.bin")); err == nil {
		t.Fatalf("expected error for missing corpus")
	}

	path := filepath.Join(t.TempDir(), "truncated.bin")
	if err := os.WriteFile(path, []byte("not a whole digest"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := LoadCorpus(path); err == nil {
		t.Fatalf("expected error for truncated corpus")
	}
}
