package wire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, []byte("hello")))

	got, err := ReadFrame(&buf)
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), got)
}

func TestFrameEmptyPayload(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, nil))

	got, err := ReadFrame(&buf)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestReadFrameShortHeader(t *testing.T) {
	buf := bytes.NewBuffer([]byte{0x00, 0x01})
	_, err := ReadFrame(buf)
	require.ErrorIs(t, err, ErrLinkBroken)
}

func TestReadFrameShortPayload(t *testing.T) {
	buf := bytes.NewBuffer([]byte{0x00, 0x00, 0x00, 0x05, 'h', 'i'})
	_, err := ReadFrame(buf)
	require.ErrorIs(t, err, ErrLinkBroken)
}

func TestPublicKeyRoundTrip(t *testing.T) {
	var pub [PublicKeySize]byte
	for i := range pub {
		pub[i] = byte(i)
	}

	var buf bytes.Buffer
	require.NoError(t, WritePublicKey(&buf, pub))

	got, err := ReadPublicKey(&buf)
	require.NoError(t, err)
	require.Equal(t, pub, got)
}

func TestReadPublicKeyWrongLength(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, []byte("too short")))

	_, err := ReadPublicKey(&buf)
	require.Error(t, err)
}

func TestBaseTimeRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteBaseTime(&buf, 1700000000))

	got, err := ReadBaseTime(&buf)
	require.NoError(t, err)
	require.EqualValues(t, 1700000000, got)
}

func TestReadBaseTimeMalformed(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, []byte("not-a-number")))

	_, err := ReadBaseTime(&buf)
	require.Error(t, err)
}
