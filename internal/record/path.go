package record

import (
	"path"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// maxKeyLen is the ceiling on a sanitized key, in characters.
const maxKeyLen = 255

// Layout describes where records of one kind live inside a working copy:
// the base directory and how many shard levels to insert beneath it.
type Layout struct {
	Dir   string
	Depth int
}

// Sanitize normalizes a semantic key into a safe file basename: NFKC
// composition followed by lower-casing. Case-insensitive and
// compatibility-equivalent keys intentionally collide, which prevents
// near-duplicate entries. Keys that are empty after normalization, exceed
// the length ceiling, or contain a path separator or parent reference are
// rejected with InvalidKeyError.
func Sanitize(key string) (string, error) {
	s := norm.NFKC.String(strings.ToLower(key))
	if s == "" || utf8.RuneCountInString(s) > maxKeyLen {
		return "", &InvalidKeyError{Key: key}
	}
	if strings.ContainsAny(s, `/\`) || strings.Contains(s, "..") {
		return "", &InvalidKeyError{Key: key}
	}
	return s, nil
}

// ShardedPath derives the relative repository path for a record key:
// baseDir/<first char>/<first 2 chars>/.../<first depth chars>/<key>.xml,
// using slash separators. A key shorter than depth produces one level per
// character it has; no zero-length shard segment is ever emitted. The result
// is deterministic and involves no I/O.
func ShardedPath(baseDir, key string, depth int) (string, error) {
	s, err := Sanitize(key)
	if err != nil {
		return "", err
	}

	runes := []rune(s)
	levels := depth
	if len(runes) < levels {
		levels = len(runes)
	}

	parts := make([]string, 0, levels+2)
	parts = append(parts, baseDir)
	for i := 1; i <= levels; i++ {
		parts = append(parts, string(runes[:i]))
	}
	parts = append(parts, s+".xml")
	return path.Join(parts...), nil
}

// RecordPath derives the relative repository path for a record under the
// given layout.
func RecordPath(r Record, layout Layout) (string, error) {
	return ShardedPath(layout.Dir, r.PathKey(), layout.Depth)
}
