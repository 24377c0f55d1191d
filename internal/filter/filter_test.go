package filter

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"citrine/internal/common"
)

func TestOptimalParams(t *testing.T) {
	k, m := OptimalParams(1000, 0.01)
	require.GreaterOrEqual(t, k, uint32(1))
	require.Greater(t, m, uint32(1000), "1%% false positives needs several bits per name")

	// Zero names must still yield a usable filter.
	k, m = OptimalParams(0, 0.01)
	require.GreaterOrEqual(t, k, uint32(1))
	require.GreaterOrEqual(t, m, uint32(1))
}

func TestNoFalseNegatives(t *testing.T) {
	n := 500
	f := New(OptimalParams(uint32(n), 0.01))

	for i := 0; i < n; i++ {
		f.Add([]byte(fmt.Sprintf("column-%04d", i)))
	}
	for i := 0; i < n; i++ {
		require.True(t, f.MayContain([]byte(fmt.Sprintf("column-%04d", i))), "added name %d must be reported present", i)
	}
}

func TestFalsePositiveRateReasonable(t *testing.T) {
	n := 1000
	f := New(OptimalParams(uint32(n), 0.01))
	for i := 0; i < n; i++ {
		f.Add([]byte(fmt.Sprintf("present-%04d", i)))
	}

	falsePositives := 0
	probes := 10000
	for i := 0; i < probes; i++ {
		if f.MayContain([]byte(fmt.Sprintf("absent-%05d", i))) {
			falsePositives++
		}
	}
	// Target is 1%; leave generous slack to keep the test deterministic.
	require.Less(t, falsePositives, probes/20, "false positive rate way above target")
}

func TestWriteReadRoundTrip(t *testing.T) {
	f := New(OptimalParams(10, 0.01))
	f.Add([]byte("alpha"))
	f.Add([]byte("beta"))

	var buf bytes.Buffer
	n, err := Write(&buf, f)
	require.NoError(t, err)
	require.Equal(t, buf.Len(), n)

	restored, err := Read(&buf)
	require.NoError(t, err)
	require.True(t, restored.MayContain([]byte("alpha")))
	require.True(t, restored.MayContain([]byte("beta")))
	require.Equal(t, f.k, restored.k)
	require.Equal(t, f.m, restored.m)
}

func TestSkipLandsAfterRegion(t *testing.T) {
	f := New(OptimalParams(10, 0.01))
	f.Add([]byte("alpha"))

	var buf bytes.Buffer
	_, err := Write(&buf, f)
	require.NoError(t, err)
	_, err = common.WriteUint32(&buf, 0xCAFEBABE)
	require.NoError(t, err)

	in := common.NewInput(bytes.NewReader(buf.Bytes()))
	require.NoError(t, Skip(in))

	sentinel, err := common.ReadUint32(in)
	require.NoError(t, err)
	require.Equal(t, uint32(0xCAFEBABE), sentinel)
}

func TestReadRejectsBadRegion(t *testing.T) {
	var buf bytes.Buffer
	_, err := common.WriteUint32(&buf, 3) // size below the k+m header
	require.NoError(t, err)
	_, err = Read(&buf)
	require.Error(t, err)
}
