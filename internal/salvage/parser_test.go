package salvage

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStrictJSON(t *testing.T) {
	p := NewParser(nil)

	raw, err := p.Parse(`{"total": 100}`)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, float64(100), got["total"])
}

func TestParseTopLevelArray(t *testing.T) {
	p := NewParser(nil)

	raw, err := p.Parse(`[{"name": "a"}, {"name": "b"}]`)
	require.NoError(t, err)

	var got []map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Len(t, got, 2)
}

func TestParseRecoversFromLeadingProse(t *testing.T) {
	p := NewParser(nil)

	raw, err := p.Parse("Here is the extracted data:\n{\"total\": 42}")
	require.NoError(t, err)
	assert.JSONEq(t, `{"total": 42}`, string(raw))
}

func TestParseRecoversFromSurroundingProse(t *testing.T) {
	p := NewParser(nil)

	raw, err := p.Parse("Sure! ```json\n{\"lines\": []}\n``` Let me know if you need anything else.")
	require.NoError(t, err)
	assert.JSONEq(t, `{"lines": []}`, string(raw))
}

func TestParseGreedyKeepsWidestBlock(t *testing.T) {
	p := NewParser(nil)

	// Nested braces with trailing text: the span must run to the LAST
	// closing brace, not stop at the first.
	raw, err := p.Parse(`result: {"a": {"b": 1}} done`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": {"b": 1}}`, string(raw))
}

func TestParseEmptyInput(t *testing.T) {
	p := NewParser(nil)

	for _, input := range []string{"", "   ", "\n\t"} {
		_, err := p.Parse(input)
		assert.ErrorIs(t, err, ErrEmptyOutput)
	}
}

func TestParseRejectsScalars(t *testing.T) {
	p := NewParser(nil)

	_, err := p.Parse(`"just a string"`)
	require.Error(t, err)
	var pe *ParseError
	assert.ErrorAs(t, err, &pe)
}

func TestParsePropagatesFirstError(t *testing.T) {
	p := NewParser(nil)

	// No brackets anywhere: the error must come from the whole-string
	// attempt, not from a later strategy.
	_, err := p.Parse("the invoice could not be read")
	require.Error(t, err)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Error(t, pe.Err)
}

func TestParseUnsalvageable(t *testing.T) {
	p := NewParser(nil)

	_, err := p.Parse("prose { not json at all ] more prose")
	require.Error(t, err)
	var pe *ParseError
	assert.ErrorAs(t, err, &pe)
}
