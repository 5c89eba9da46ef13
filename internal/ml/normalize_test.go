package ml_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spacesedan/sentiserve/internal/ml"
)

func TestConvertMarkdownToText(t *testing.T) {
	got := ml.ConvertMarkdownToText("**great** [site](https://example.com/a) visit www.example.com")
	assert.Equal(t, "great site visit", got)
}

func TestConvertMarkdownToText_Concurrent(t *testing.T) {
	const input = "# Title\n\n**great** [site](https://example.com/a) and _more_"
	want := ml.ConvertMarkdownToText(input)

	var wg sync.WaitGroup
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				assert.Equal(t, want, ml.ConvertMarkdownToText(input))
			}
		}()
	}
	wg.Wait()
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "", ml.NormalizeText("   "))
	assert.Equal(t, "loved the food", ml.NormalizeText("Loved   the _FOOD_"))
}

func TestTokenize(t *testing.T) {
	tokens := ml.Tokenize(ml.NormalizeText("Don't stop, 5 stars!"))
	assert.Equal(t, []string{"dont", "stop", "5", "stars"}, tokens)
	assert.Empty(t, ml.Tokenize(""))
}
