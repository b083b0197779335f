package document

import (
	"context"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestNewSplitter_Validation(t *testing.T) {
	_, err := NewSplitter(0, 0)
	assert.Error(t, err)
	_, err = NewSplitter(10, 10)
	assert.Error(t, err)
	_, err = NewSplitter(10, -1)
	assert.Error(t, err)

	s, err := NewSplitter(1000, 200)
	require.NoError(t, err)
	assert.Equal(t, DefaultSeparators, s.Separators)
}

func TestSplitText_ShortTextIsOneChunk(t *testing.T) {
	s, err := NewSplitter(100, 20)
	require.NoError(t, err)
	assert.Equal(t, []string{"hello world"}, s.SplitText("  hello world \n"))
	assert.Empty(t, s.SplitText(""))
}

func TestSplitText_PrefersParagraphs(t *testing.T) {
	s, err := NewSplitter(20, 0)
	require.NoError(t, err)

	chunks := s.SplitText("first paragraph\n\nsecond paragraph\n\nthird one")
	assert.Equal(t, []string{"first paragraph", "second paragraph", "third one"}, chunks)
}

func TestSplitText_CountsRunes(t *testing.T) {
	s, err := NewSplitter(4, 0)
	require.NoError(t, err)

	chunks := s.SplitText("人工智能机器学习")
	assert.Equal(t, []string{"人工智能", "机器学习"}, chunks)
}

func TestSplitText_UnbrokenOverlap(t *testing.T) {
	s, err := NewSplitter(10, 3)
	require.NoError(t, err)

	chunks := s.SplitText("abcdefghijklmnopqrstuvwxyz")
	require.Equal(t, []string{"abcdefghij", "hijklmnopq", "opqrstuvwx", "vwxyz"}, chunks)
}

func TestSplitText_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		size := rapid.IntRange(1, 60).Draw(t, "size")
		overlap := rapid.IntRange(0, size-1).Draw(t, "overlap")
		text := rapid.StringOfN(rapid.RuneFrom([]rune("ab 机\n")), 0, 400, -1).Draw(t, "text")

		s, err := NewSplitter(size, overlap)
		if err != nil {
			t.Fatalf("NewSplitter: %v", err)
		}
		for _, c := range s.SplitText(text) {
			if n := runeLen(c); n > size {
				t.Fatalf("chunk %q has %d runes, limit %d", c, n, size)
			}
			if c == "" {
				t.Fatalf("empty chunk")
			}
		}
	})
}

func TestSplitText_UnbrokenChunkCount(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		size := rapid.IntRange(2, 50).Draw(t, "size")
		overlap := rapid.IntRange(0, size-1).Draw(t, "overlap")
		length := rapid.IntRange(size+1, 500).Draw(t, "length")

		s, err := NewSplitter(size, overlap)
		if err != nil {
			t.Fatalf("NewSplitter: %v", err)
		}
		chunks := s.SplitText(strings.Repeat("x", length))

		step := size - overlap
		want := (length - overlap + step - 1) / step
		if len(chunks) != want {
			t.Fatalf("got %d chunks, want %d", len(chunks), want)
		}
		for i := 0; i+1 < len(chunks); i++ {
			if len(chunks[i]) != size {
				t.Fatalf("chunk %d has %d runes, want %d", i, len(chunks[i]), size)
			}
		}
	})
}

func TestTransform_CarriesMetadata(t *testing.T) {
	s, err := NewSplitter(5, 0)
	require.NoError(t, err)

	out, err := s.Transform(context.Background(), []*schema.Document{{
		ID:       "notes.txt",
		Content:  "aaaa bbbb",
		MetaData: map[string]any{MetaSource: "notes.txt"},
	}})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "notes.txt#0", out[0].ID)
	assert.Equal(t, "notes.txt#1", out[1].ID)
	assert.Equal(t, "notes.txt", out[1].MetaData[MetaSource])
	assert.Equal(t, 1, out[1].MetaData[MetaChunk])
}
