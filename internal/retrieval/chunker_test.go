package retrieval

import (
	"reflect"
	"strings"
	"testing"
)

func TestSplitTextWindowsShareOverlap(t *testing.T) {
	chunks := SplitText("abcdefghij", 4, 2)
	want := []string{"abcd", "cdef", "efgh", "ghij"}
	if !reflect.DeepEqual(chunks, want) {
		t.Fatalf("unexpected chunks: %#v", chunks)
	}
}

func TestSplitTextLastWindowMayBeShorter(t *testing.T) {
	chunks := SplitText("abcdefg", 4, 1)
	want := []string{"abcd", "defg"}
	if !reflect.DeepEqual(chunks, want) {
		t.Fatalf("unexpected chunks: %#v", chunks)
	}

	chunks = SplitText("abcdefgh", 5, 0)
	if len(chunks) != 2 || chunks[1] != "fgh" {
		t.Fatalf("expected short tail window, got %#v", chunks)
	}
}

func TestSplitTextIsIdempotent(t *testing.T) {
	text := strings.Repeat("the quick brown fox jumps over the lazy dog ", 50)
	first := SplitText(text, 100, 40)
	second := SplitText(text, 100, 40)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("re-split of identical text produced different chunks")
	}
	if len(first) == 0 {
		t.Fatalf("expected chunks for non-empty text")
	}
}

func TestSplitTextCountsRunesNotBytes(t *testing.T) {
	chunks := SplitText("日本語のテキスト", 4, 0)
	want := []string{"日本語の", "テキスト"}
	if !reflect.DeepEqual(chunks, want) {
		t.Fatalf("unexpected chunks: %#v", chunks)
	}
}

func TestSplitTextEmptyAndDegenerateParams(t *testing.T) {
	if chunks := SplitText("", 100, 10); chunks != nil {
		t.Fatalf("expected no chunks for empty text, got %#v", chunks)
	}
	// Overlap >= size must not loop forever.
	chunks := SplitText("abcdef", 3, 5)
	if len(chunks) == 0 {
		t.Fatalf("expected chunks despite degenerate overlap")
	}
}
