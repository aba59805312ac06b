package gherkin

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		word string
		want Category
	}{
		{"Given", Given},
		{"When", When},
		{"Then", Then},
		{"And", And},
		{"But", But},
		{"*", Other},
		{"Дано", Given},
		{"Когда", When},
		{"Alors", Then},
		{"Und", And},
		{"Aber", But},
		{"given", Other},
		{"Whenever", Other},
		{"", Other},
	}
	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.word))
		})
	}
}

func TestClassifyFirstTableWins(t *testing.T) {
	// "Kad" is listed for both Given and When.
	assert.Equal(t, Given, Classify("Kad"))
	// "Tha" is listed for both When and Then.
	assert.Equal(t, When, Classify("Tha"))
	// "En" is listed for both And and But.
	assert.Equal(t, And, Classify("En"))
}

func TestClassifyFold(t *testing.T) {
	assert.Equal(t, When, ClassifyFold("when"))
	assert.Equal(t, Given, ClassifyFold("GIVEN"))
	assert.Equal(t, Then, ClassifyFold("tHeN"))
	assert.Equal(t, Other, ClassifyFold("defineStep"))
	assert.Equal(t, Other, ClassifyFold("StepDefinition"))
}

func TestKeywordPatternCompiles(t *testing.T) {
	re, err := regexp.Compile(`^(\s*)(` + KeywordPattern() + `)(\s+)(.*)`)
	require.NoError(t, err)

	m := re.FindStringSubmatch("    When I do something")
	require.NotNil(t, m)
	assert.Equal(t, "    ", m[1])
	assert.Equal(t, "When", m[2])
	assert.Equal(t, "I do something", m[4])

	m = re.FindStringSubmatch("* I do something")
	require.NotNil(t, m)
	assert.Equal(t, "*", m[2])

	m = re.FindStringSubmatch("Etant donné que la base est vide")
	require.NotNil(t, m)
	assert.Equal(t, "la base est vide", m[4])

	assert.Nil(t, re.FindStringSubmatch("WhenI do something"))
	assert.Nil(t, re.FindStringSubmatch("I do something"))
}

func TestWordsIncludesOther(t *testing.T) {
	words := Words()
	assert.Contains(t, words, "Given")
	assert.Contains(t, words, "*")
	assert.Equal(t, "*", words[len(words)-1])
}

func TestCategoryText(t *testing.T) {
	assert.Equal(t, "When", When.String())
	assert.Equal(t, "Other", Category(42).String())
	b, err := Then.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "Then", string(b))

	c, ok := ParseCategory("given")
	assert.True(t, ok)
	assert.Equal(t, Given, c)
	_, ok = ParseCategory("nope")
	assert.False(t, ok)

	assert.True(t, Given.IsPrimary())
	assert.False(t, And.IsPrimary())
	assert.False(t, Other.IsPrimary())
}

func TestUTF16Len(t *testing.T) {
	assert.Equal(t, 0, UTF16Len(""))
	assert.Equal(t, 4, UTF16Len("When"))
	assert.Equal(t, 6, UTF16Len("Étant "))
	assert.Equal(t, 3, UTF16Len("a😀"))
}

func TestByteOffset(t *testing.T) {
	tests := []struct {
		s    string
		col  int
		want int
	}{
		{"When I do", 0, 0},
		{"When I do", 4, 4},
		{"When I do", 99, 9},
		{"Étant", 1, 2},
		{"a😀b", 1, 1},
		{"a😀b", 3, 5},
		{"a😀b", 2, 5},
		{"a😀b", 4, 6},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ByteOffset(tt.s, tt.col), "ByteOffset(%q, %d)", tt.s, tt.col)
	}
}
