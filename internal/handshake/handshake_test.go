package handshake

import (
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// pipeReadWriter adapts a net.Conn pair into the io.ReadWriter each
// side of RunInitiator/RunResponder expects, mimicking a point-to-
// point serial link in a test.
type pipeReadWriter struct {
	io.Reader
	io.Writer
}

func TestHandshakeDerivesEqualKeys(t *testing.T) {
	aConn, bConn := net.Pipe()
	defer aConn.Close()
	defer bConn.Close()

	fixedTime := time.Unix(1700000000, 0)

	type initResult struct {
		res *Result
		err error
	}
	resultCh := make(chan initResult, 1)

	go func() {
		res, err := RunInitiator(pipeReadWriter{aConn, aConn}, func() time.Time { return fixedTime })
		resultCh <- initResult{res, err}
	}()

	bResult, err := RunResponder(pipeReadWriter{bConn, bConn}, nil, nil)
	require.NoError(t, err)

	aOutcome := <-resultCh
	require.NoError(t, aOutcome.err)

	require.Equal(t, aOutcome.res.Key, bResult.Key)
	require.Equal(t, fixedTime.Unix(), bResult.BaseTime.Unix())
}

func TestHandshakeSharedSecretSymmetric(t *testing.T) {
	aPriv, aPub, err := generateEphemeral()
	require.NoError(t, err)
	bPriv, bPub, err := generateEphemeral()
	require.NoError(t, err)

	secretFromA, err := sharedSecret(aPriv, bPub)
	require.NoError(t, err)
	secretFromB, err := sharedSecret(bPriv, aPub)
	require.NoError(t, err)

	require.Equal(t, secretFromA, secretFromB)

	keyFromA, err := deriveKey(secretFromA)
	require.NoError(t, err)
	keyFromB, err := deriveKey(secretFromB)
	require.NoError(t, err)
	require.Equal(t, keyFromA, keyFromB)
}

func TestRunResponderClockFailureIsNotFatal(t *testing.T) {
	aConn, bConn := net.Pipe()
	defer aConn.Close()
	defer bConn.Close()

	go func() {
		_, _ = RunInitiator(pipeReadWriter{aConn, aConn}, time.Now)
	}()

	failingSetClock := func(time.Time) error { return io.ErrClosedPipe }
	result, err := RunResponder(pipeReadWriter{bConn, bConn}, nil, failingSetClock)
	require.NoError(t, err)
	require.NotNil(t, result)
}
