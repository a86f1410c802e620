// Package verify compares a copy against its source by content digest.
package verify

import (
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/blake3"
	"golang.org/x/sync/errgroup"
)

// Algorithm selects the digest used to compare files.
type Algorithm int

const (
	BLAKE3 Algorithm = iota
	XXH64
)

func (a Algorithm) String() string {
	switch a {
	case BLAKE3:
		return "blake3"
	case XXH64:
		return "xxh64"
	default:
		return "unknown"
	}
}

// ParseAlgorithm accepts "blake3" or "xxh64" (also "xxhash"), case-insensitively.
// An empty name selects BLAKE3.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "blake3":
		return BLAKE3, nil
	case "xxh64", "xxhash":
		return XXH64, nil
	}
	return 0, fmt.Errorf("unknown checksum algorithm %q", name)
}

func (a Algorithm) newHash() hash.Hash {
	if a == XXH64 {
		return xxhash.New()
	}
	return blake3.New()
}

// HashFile computes the digest of the file at path, returning it hex-encoded.
func HashFile(path string, alg Algorithm) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := alg.newHash()
	buf := make([]byte, 32*1024)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// Result holds the outcome of comparing one pair of files.
type Result struct {
	SrcHash   string
	DstHash   string
	Algorithm Algorithm
}

// Match reports whether both digests were computed and agree.
func (r Result) Match() bool {
	return r.SrcHash != "" && r.SrcHash == r.DstHash
}

// Files hashes src and dst concurrently and returns both digests. An error
// means a file could not be read; a mismatch is reported through Result.
func Files(src, dst string, alg Algorithm) (Result, error) {
	res := Result{Algorithm: alg}
	var g errgroup.Group
	g.Go(func() error {
		h, err := HashFile(src, alg)
		res.SrcHash = h
		return err
	})
	g.Go(func() error {
		h, err := HashFile(dst, alg)
		res.DstHash = h
		return err
	})
	return res, g.Wait()
}
