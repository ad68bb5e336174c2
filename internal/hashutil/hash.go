// Package hashutil provides the simulator's deterministic hash primitive
// and the ephemeral Merkle-tree builder used to summarize a block's
// events into a single root digest.
//
// The only contract on the hash function is pure determinism and
// fixed-width lowercase hex output. H's padding behavior (the output is
// right-padded with '0' to reach the configured width) is part of that
// contract, not an implementation detail, because block and event hashes
// are compared by leading-zero prefix.
package hashutil

import (
	"crypto/sha256"
	"encoding/hex"
)

// H returns a deterministic, lowercase hex digest of data, exactly width
// characters long. If the underlying digest's hex encoding is shorter
// than width, the result is right-padded with '0'; if longer, it is
// truncated. Callers almost always use width == their Config.HashLength.
func H(data []byte, width int) string {
	sum := sha256.Sum256(data)
	h := hex.EncodeToString(sum[:])
	if len(h) >= width {
		return h[:width]
	}
	padding := make([]byte, width-len(h))
	for i := range padding {
		padding[i] = '0'
	}
	return h + string(padding)
}

// MerkleRoot computes the Merkle root of an ordered sequence of event
// hashes:
//   - zero hashes: the all-zero string of the given width
//   - one hash: the hash itself
//   - two or more: pairwise-combine adjacent leaves level by level; a
//     level with an odd number of nodes promotes a duplicate of its last
//     node as the missing sibling, so every internal node has exactly
//     two children
//
// The tree itself is never materialized as a persistent structure: it is
// built and discarded within this call.
func MerkleRoot(hashes []string, width int) string {
	switch len(hashes) {
	case 0:
		return zeroHash(width)
	case 1:
		return hashes[0]
	}

	level := make([]string, len(hashes))
	copy(level, hashes)

	for len(level) > 1 {
		if len(level)%2 == 1 {
			// Odd span: synthesize the missing sibling as a duplicate
			// leaf carrying the last real node's hash.
			level = append(level, level[len(level)-1])
		}
		next := make([]string, 0, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			next = append(next, H([]byte(level[i]+level[i+1]), width))
		}
		level = next
	}
	return level[0]
}

func zeroHash(width int) string {
	b := make([]byte, width)
	for i := range b {
		b[i] = '0'
	}
	return string(b)
}
