package record_test

import (
	"errors"
	"strings"
	"testing"

	"nymedit/internal/record"
)

func TestSanitize(t *testing.T) {
	t.Run("lower-cases and normalizes", func(t *testing.T) {
		got, err := record.Sanitize("Anne")
		if err != nil {
			t.Fatalf("Sanitize() error = %v", err)
		}
		if got != "anne" {
			t.Errorf("Sanitize() = %q, want %q", got, "anne")
		}
	})

	t.Run("compatibility-equivalent keys collide", func(t *testing.T) {
		// Fullwidth A normalizes to plain a; near-duplicate entries are
		// meant to land on the same path.
		full, err := record.Sanitize("Ａnna")
		if err != nil {
			t.Fatalf("Sanitize() error = %v", err)
		}
		plain, err := record.Sanitize("Anna")
		if err != nil {
			t.Fatalf("Sanitize() error = %v", err)
		}
		if full != plain {
			t.Errorf("Sanitize() fullwidth = %q, plain = %q, want equal", full, plain)
		}
	})

	t.Run("length ceiling counts characters, not bytes", func(t *testing.T) {
		// 200 two-byte characters is 400 bytes but well under the ceiling.
		if _, err := record.Sanitize(strings.Repeat("æ", 200)); err != nil {
			t.Errorf("Sanitize(200 multi-byte chars) error = %v, want nil", err)
		}
		if _, err := record.Sanitize(strings.Repeat("æ", 255)); err != nil {
			t.Errorf("Sanitize(255 multi-byte chars) error = %v, want nil", err)
		}
		_, err := record.Sanitize(strings.Repeat("æ", 256))
		var invalid *record.InvalidKeyError
		if !errors.As(err, &invalid) {
			t.Errorf("Sanitize(256 chars) error = %v, want InvalidKeyError", err)
		}
	})

	t.Run("rejects hostile keys", func(t *testing.T) {
		bad := []string{
			"",
			"..",
			"a..b",
			"a/b",
			`a\b`,
			strings.Repeat("x", 256),
		}
		for _, key := range bad {
			_, err := record.Sanitize(key)
			var invalid *record.InvalidKeyError
			if !errors.As(err, &invalid) {
				t.Errorf("Sanitize(%q) error = %v, want InvalidKeyError", key, err)
			}
		}
	})
}

func TestShardedPath(t *testing.T) {
	t.Run("builds prefix shards up to depth", func(t *testing.T) {
		got, err := record.ShardedPath("CNFs", "Anne", 3)
		if err != nil {
			t.Fatalf("ShardedPath() error = %v", err)
		}
		want := "CNFs/a/an/ann/anne.xml"
		if got != want {
			t.Errorf("ShardedPath() = %q, want %q", got, want)
		}
	})

	t.Run("short keys produce one level per character", func(t *testing.T) {
		got, err := record.ShardedPath("VNFs", "ab", 6)
		if err != nil {
			t.Fatalf("ShardedPath() error = %v", err)
		}
		want := "VNFs/a/ab/ab.xml"
		if got != want {
			t.Errorf("ShardedPath() = %q, want %q", got, want)
		}
	})

	t.Run("depth zero shards nothing", func(t *testing.T) {
		got, err := record.ShardedPath("bib", "B1", 0)
		if err != nil {
			t.Fatalf("ShardedPath() error = %v", err)
		}
		if got != "bib/b1.xml" {
			t.Errorf("ShardedPath() = %q, want %q", got, "bib/b1.xml")
		}
	})

	t.Run("is deterministic", func(t *testing.T) {
		first, err := record.ShardedPath("CNFs", "Ælfric", 3)
		if err != nil {
			t.Fatalf("ShardedPath() error = %v", err)
		}
		second, err := record.ShardedPath("CNFs", "Ælfric", 3)
		if err != nil {
			t.Fatalf("ShardedPath() error = %v", err)
		}
		if first != second {
			t.Errorf("ShardedPath() not deterministic: %q != %q", first, second)
		}
	})

	t.Run("case-insensitive keys share a path", func(t *testing.T) {
		upper, _ := record.ShardedPath("CNFs", "ANNE", 3)
		lower, _ := record.ShardedPath("CNFs", "anne", 3)
		if upper != lower {
			t.Errorf("ShardedPath() upper = %q, lower = %q, want equal", upper, lower)
		}
	})

	t.Run("propagates invalid keys", func(t *testing.T) {
		_, err := record.ShardedPath("CNFs", "../etc/passwd", 3)
		var invalid *record.InvalidKeyError
		if !errors.As(err, &invalid) {
			t.Errorf("ShardedPath() error = %v, want InvalidKeyError", err)
		}
	})
}

func TestVariantPathKey(t *testing.T) {
	v := &record.VariantEntry{Name: "Anne", Date: "1599/1600", BibKey: "B1"}
	if got, want := v.PathKey(), "Anne_1599s1600_B1"; got != want {
		t.Errorf("PathKey() = %q, want %q", got, want)
	}
}
