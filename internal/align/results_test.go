package align

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResults(t *testing.T) {
	got, err := ParseResults([]byte(`{"10234": 915200, "10235": 915640}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"10234": 915200, "10235": 915640}, got)

	got, err = ParseResults([]byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParseResultsRejectsNonObject(t *testing.T) {
	for _, payload := range []string{`[915200]`, `915200`, `"E1"`, `null`, `true`} {
		_, err := ParseResults([]byte(payload))
		assert.ErrorIs(t, err, ErrNotObject, "payload %s", payload)
	}

	_, err := ParseResults([]byte(`{"E1": 915200`))
	assert.Error(t, err, "truncated JSON")
}

func TestParseResultsRejectsBadValues(t *testing.T) {
	// Non-numeric value: whole import rejected, offending key named.
	_, err := ParseResults([]byte(`{"E1": 915200, "E2": "soon"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"E2"`)

	// Fractional milliseconds are rejected too.
	_, err = ParseResults([]byte(`{"E1": 915200.5}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"E1"`)
}

func TestMarshalParseRoundTrip(t *testing.T) {
	in := map[string]int64{"E1": 1100, "E2": 1900, "42": 0}
	data, err := MarshalResults(in)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "{"), "export must be a flat object: %s", data)

	out, err := ParseResults(data)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
