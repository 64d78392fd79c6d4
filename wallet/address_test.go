package wallet

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	friendly = "EQA0i8-CdGnF_DhUHHf92R1ONH6sIA9vLZ_WLcCIhfBBXwtG"
	rawHash  = "348bcf827469c5fc38541c77fdd91d4e347eac200f6f2d9fd62dc08885f0415f"
)

func TestParseFriendlyAddress(t *testing.T) {
	a, err := ParseAddress(friendly)
	require.NoError(t, err)

	assert.Equal(t, int32(0), a.Workchain())
	assert.Equal(t, rawHash, hex.EncodeToString(a.Data()))
	assert.True(t, a.IsBounceable())
	assert.False(t, a.IsTestnetOnly())
	assert.Equal(t, friendly, a.String())
	assert.Equal(t, "0:"+rawHash, RawAddress(a))
}

func TestFormatAddressFlags(t *testing.T) {
	a, err := ParseAddress("0:" + rawHash)
	require.NoError(t, err)
	assert.False(t, a.IsBounceable())

	assert.Equal(t, friendly, FormatAddress(a, true, true, true, false))
	assert.Equal(t, "EQA0i8+CdGnF/DhUHHf92R1ONH6sIA9vLZ/WLcCIhfBBXwtG", FormatAddress(a, true, false, true, false))
	assert.Equal(t, "UQA0i8-CdGnF_DhUHHf92R1ONH6sIA9vLZ_WLcCIhfBBX1aD", FormatAddress(a, true, true, false, false))
	assert.Equal(t, "kQA0i8-CdGnF_DhUHHf92R1ONH6sIA9vLZ_WLcCIhfBBX7DM", FormatAddress(a, true, true, true, true))
	assert.Equal(t, "0:"+rawHash, FormatAddress(a, false, true, true, true))

	// formatting leaves the parsed flags alone
	assert.False(t, a.IsBounceable())
}

func TestMasterchainAddress(t *testing.T) {
	a, err := ParseAddress("Ef80i8-CdGnF_DhUHHf92R1ONH6sIA9vLZ_WLcCIhfBBX_QO")
	require.NoError(t, err)
	assert.Equal(t, int32(-1), a.Workchain())
	assert.Equal(t, "-1:"+rawHash, RawAddress(a))

	b, err := ParseAddress(RawAddress(a))
	require.NoError(t, err)
	assert.True(t, a.Equals(b))
}

func TestParseNonBounceableTestOnlyAddress(t *testing.T) {
	a, err := ParseAddress("0QA0i8+CdGnF/DhUHHf92R1ONH6sIA9vLZ/WLcCIhfBBX+0J")
	require.NoError(t, err)
	assert.False(t, a.IsBounceable())
	assert.True(t, a.IsTestnetOnly())
	assert.Equal(t, "0QA0i8+CdGnF/DhUHHf92R1ONH6sIA9vLZ/WLcCIhfBBX+0J", FormatAddress(a, true, false, false, true))
}

func TestParseAddressErrors(t *testing.T) {
	for _, s := range []string{
		"EQA0i8-CdGnF_DhUHHf92R1ONH6sIA9vLZ_WLcCIhfBBXwtH",
		"EQA0i8",
		"0:1234",
		"x:" + rawHash,
	} {
		_, err := ParseAddress(s)
		assert.ErrorIs(t, err, ErrBadAddress, s)
	}
}
