package outbox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func openTest(t *testing.T) *Outbox {
	t.Helper()
	o, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = o.Close() })
	return o
}

func TestPutGetRoundTrip(t *testing.T) {
	o := openTest(t)

	require.NoError(t, o.Put(1, []byte(`{"type":"trade"}`)))
	rec, err := o.Get(1)
	require.NoError(t, err)
	require.Equal(t, StateNew, rec.State)
	require.Equal(t, uint64(1), rec.Seq)
	require.Equal(t, []byte(`{"type":"trade"}`), rec.Payload)
}

func TestStateTransitions(t *testing.T) {
	o := openTest(t)
	require.NoError(t, o.Put(7, []byte("x")))

	require.NoError(t, o.MarkSent(7))
	rec, err := o.Get(7)
	require.NoError(t, err)
	require.Equal(t, StateSent, rec.State)
	require.NotZero(t, rec.LastAttempt)

	require.NoError(t, o.MarkAcked(7))
	rec, err = o.Get(7)
	require.NoError(t, err)
	require.Equal(t, StateAcked, rec.State)
}

func TestScanPendingSkipsAcked(t *testing.T) {
	o := openTest(t)
	for seq := uint64(1); seq <= 3; seq++ {
		require.NoError(t, o.Put(seq, []byte{byte(seq)}))
	}
	require.NoError(t, o.MarkAcked(2))

	var seen []uint64
	require.NoError(t, o.ScanPending(func(rec Record) error {
		seen = append(seen, rec.Seq)
		return nil
	}))
	require.Equal(t, []uint64{1, 3}, seen)
}

func TestScanOrderIsSequential(t *testing.T) {
	o := openTest(t)
	for _, seq := range []uint64{30, 2, 117, 45} {
		require.NoError(t, o.Put(seq, nil))
	}

	var seen []uint64
	require.NoError(t, o.ScanPending(func(rec Record) error {
		seen = append(seen, rec.Seq)
		return nil
	}))
	require.Equal(t, []uint64{2, 30, 45, 117}, seen)
}

func TestTruncateAcked(t *testing.T) {
	o := openTest(t)
	for seq := uint64(1); seq <= 4; seq++ {
		require.NoError(t, o.Put(seq, nil))
		require.NoError(t, o.MarkAcked(seq))
	}
	require.NoError(t, o.Put(5, nil)) // still pending

	require.NoError(t, o.TruncateAcked(3))

	_, err := o.Get(2)
	require.Error(t, err, "acked record below watermark should be gone")
	_, err = o.Get(4)
	require.NoError(t, err, "acked record above watermark stays")
	_, err = o.Get(5)
	require.NoError(t, err, "pending record stays")
}
