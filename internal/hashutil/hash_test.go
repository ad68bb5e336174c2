package hashutil_test

import (
	"testing"

	"github.com/empower1/powsim/internal/hashutil"
)

func TestH_Deterministic(t *testing.T) {
	a := hashutil.H([]byte("payload"), 64)
	b := hashutil.H([]byte("payload"), 64)
	if a != b {
		t.Errorf("H is not deterministic: %q != %q", a, b)
	}
	if len(a) != 64 {
		t.Errorf("H returned %d characters, want 64", len(a))
	}
}

func TestH_WidthPaddingAndTruncation(t *testing.T) {
	padded := hashutil.H([]byte("x"), 100)
	if len(padded) != 100 {
		t.Errorf("padded H() length = %d, want 100", len(padded))
	}
	for i := 64; i < 100; i++ {
		if padded[i] != '0' {
			t.Errorf("padded H()[%d] = %q, want '0'", i, padded[i])
		}
	}

	truncated := hashutil.H([]byte("x"), 8)
	if len(truncated) != 8 {
		t.Errorf("truncated H() length = %d, want 8", len(truncated))
	}
}

func TestMerkleRoot_ZeroAndOne(t *testing.T) {
	if got := hashutil.MerkleRoot(nil, 8); got != "00000000" {
		t.Errorf("MerkleRoot(nil) = %q, want all zeros", got)
	}
	single := hashutil.H([]byte("only"), 8)
	if got := hashutil.MerkleRoot([]string{single}, 8); got != single {
		t.Errorf("MerkleRoot(single) = %q, want %q", got, single)
	}
}

func TestMerkleRoot_OddSpanDuplicatesLastLeaf(t *testing.T) {
	a := hashutil.H([]byte("a"), 8)
	b := hashutil.H([]byte("b"), 8)
	c := hashutil.H([]byte("c"), 8)

	odd := hashutil.MerkleRoot([]string{a, b, c}, 8)
	even := hashutil.MerkleRoot([]string{a, b, c, c}, 8)
	if odd != even {
		t.Errorf("odd-span root %q does not match the duplicated-leaf root %q", odd, even)
	}
}

func TestMerkleRoot_OrderSensitive(t *testing.T) {
	a := hashutil.H([]byte("a"), 8)
	b := hashutil.H([]byte("b"), 8)

	ab := hashutil.MerkleRoot([]string{a, b}, 8)
	ba := hashutil.MerkleRoot([]string{b, a}, 8)
	if ab == ba {
		t.Error("MerkleRoot should be sensitive to leaf order")
	}
}
