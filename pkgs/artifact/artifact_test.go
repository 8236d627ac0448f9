package artifact

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalIsDeterministic(t *testing.T) {
	u := &Unit{
		Source:   "$a?.b",
		Code:     "const $tmp = opt_data.a;\n$tmp == null ? null : $tmp.b;",
		Requires: []string{"sable"},
	}

	first, err := u.MarshalBinary()
	require.NoError(t, err)
	second, err := u.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRequireOrderDoesNotAffectHash(t *testing.T) {
	a := &Unit{Source: "s", Code: "c", Requires: []string{"zzz", "aaa", "mmm"}}
	b := &Unit{Source: "s", Code: "c", Requires: []string{"mmm", "aaa", "zzz", "aaa"}}

	ha, err := a.Hash()
	require.NoError(t, err)
	hb, err := b.Hash()
	require.NoError(t, err)
	assert.Equal(t, ha, hb)
}

func TestHashCoversEveryField(t *testing.T) {
	base := Unit{Source: "s", Code: "c", Requires: []string{"r"}}

	baseHash, err := base.Hash()
	require.NoError(t, err)

	changedSource := base
	changedSource.Source = "s2"
	changedCode := base
	changedCode.Code = "c2"
	changedRequires := base
	changedRequires.Requires = []string{"r2"}

	for _, u := range []Unit{changedSource, changedCode, changedRequires} {
		h, err := u.Hash()
		require.NoError(t, err)
		assert.NotEqual(t, baseHash, h)
	}
}

func TestHashStringIsHex(t *testing.T) {
	u := &Unit{Source: "s", Code: "c"}
	s, err := u.HashString()
	require.NoError(t, err)
	assert.Len(t, s, 64)
	assert.Regexp(t, "^[0-9a-f]+$", s)
}

func TestWriteReadRoundTrip(t *testing.T) {
	u := &Unit{
		Source:   "length($x) + app.CONST",
		Code:     "sable.length(opt_data.x) + app.CONST;",
		Requires: []string{"sable", "app.CONST", "sable"},
	}

	var buf bytes.Buffer
	sum, err := Write(&buf, u)
	require.NoError(t, err)

	contentHash, err := u.Hash()
	require.NoError(t, err)
	assert.Equal(t, contentHash, sum)

	got, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, u.Source, got.Source)
	assert.Equal(t, u.Code, got.Code)
	// Requires are stored canonically: sorted, duplicates dropped.
	assert.Equal(t, []string{"app.CONST", "sable"}, got.Requires)
}

func TestReadRejectsBadMagic(t *testing.T) {
	var buf bytes.Buffer
	_, err := Write(&buf, &Unit{Source: "s", Code: "c"})
	require.NoError(t, err)

	raw := buf.Bytes()
	raw[0] = 'X'
	_, err = Read(bytes.NewReader(raw))
	assert.ErrorContains(t, err, "bad magic")
}

func TestReadRejectsUnknownVersion(t *testing.T) {
	var buf bytes.Buffer
	_, err := Write(&buf, &Unit{Source: "s", Code: "c"})
	require.NoError(t, err)

	raw := buf.Bytes()
	raw[4] = 0xFF
	raw[5] = 0xFF
	_, err = Read(bytes.NewReader(raw))
	assert.ErrorContains(t, err, "unsupported artifact version")
}

func TestReadRejectsTruncatedBody(t *testing.T) {
	var buf bytes.Buffer
	_, err := Write(&buf, &Unit{Source: "s", Code: "c"})
	require.NoError(t, err)

	raw := buf.Bytes()
	_, err = Read(bytes.NewReader(raw[:len(raw)-1]))
	assert.ErrorContains(t, err, "reading body")
}
