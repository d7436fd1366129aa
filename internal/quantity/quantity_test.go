package quantity

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"", 0},
		{"0", 0},
		{"1024", 1024},
		{"  64Mi ", 64 << 20},
		{"128Mi", 128 << 20},
		{"16Gi", 16 << 30},
		{"1.5Gi", 1610612736},
		{"1Ki", 1024},
		{"2Ti", 2 << 40},
		{"1Pi", 1 << 50},
		{"1Ei", 1 << 60},
		{"1K", 1000},
		{"4M", 4_000_000},
		{"4G", 4_000_000_000},
		{"1T", 1_000_000_000_000},
		{"1P", 1_000_000_000_000_000},
		{"2E", 2_000_000_000_000_000_000},
		{"0.5Ki", 512},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_BinarySuffixes(t *testing.T) {
	for _, n := range []int64{1, 3, 64, 512} {
		gi, err := Parse(strconv.FormatInt(n, 10) + "Gi")
		require.NoError(t, err)
		assert.Equal(t, n*1024*1024*1024, gi)

		mi, err := Parse(strconv.FormatInt(n, 10) + "Mi")
		require.NoError(t, err)
		assert.Equal(t, n*1024*1024, mi)
	}
}

func TestParse_Errors(t *testing.T) {
	for _, in := range []string{"abc", "1k", "1.5", "Gi", "1e3", "1.5m"} {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in)
			assert.Error(t, err)
		})
	}
}

func TestParseCPU(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"", 0},
		{"500m", 500},
		{"3920m", 3920},
		{"0.5", 500},
		{"2", 2000},
		{"0.25", 250},
		{" 4 ", 4000},
		{"100", 100000},
		{"1.5m", 1},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCPU(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCPU_Errors(t *testing.T) {
	for _, in := range []string{"abc", "2Gi", "m"} {
		_, err := ParseCPU(in)
		assert.Error(t, err, in)
	}
}

// A trailing "m" means millicores only for CPU. The general parser returns
// the prefix unscaled, so the two parsers disagree by design.
func TestParse_MilliSuffixDivergesFromCPU(t *testing.T) {
	cpu, err := ParseCPU("500m")
	require.NoError(t, err)
	assert.Equal(t, int64(500), cpu)

	general, err := Parse("500m")
	require.NoError(t, err)
	assert.Equal(t, int64(500), general)

	// Neither applies a 1/1000 multiplier, and "2" only scales for CPU.
	cpu, err = ParseCPU("2")
	require.NoError(t, err)
	general, err = Parse("2")
	require.NoError(t, err)
	assert.Equal(t, int64(2000), cpu)
	assert.Equal(t, int64(2), general)
}

func TestParseCount(t *testing.T) {
	n, err := ParseCount("3")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = ParseCount("")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	_, err = ParseCount("1.5")
	assert.Error(t, err)
	_, err = ParseCount("2Gi")
	assert.Error(t, err)
}

func TestBytesToHuman(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0.0B"},
		{512, "512.0B"},
		{1023, "1023.0B"},
		{1024, "1.0KiB"},
		{1536, "1.5KiB"},
		{128 << 20, "128.0MiB"},
		{1073741824, "1.0GiB"},
		{1099511627776, "1.0TiB"},
		{1 << 50, "1.0PiB"},
		{3 << 50, "3.0PiB"},
		{-2048, "-2048.0B"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, BytesToHuman(tt.in), "BytesToHuman(%d)", tt.in)
	}
}

func TestFormatCores(t *testing.T) {
	assert.Equal(t, "0.0 cores", FormatCores(0))
	assert.Equal(t, "0.5 cores", FormatCores(500))
	assert.Equal(t, "126.0 cores", FormatCores(126000))
	assert.Equal(t, "3.9 cores", FormatCores(3920))
	assert.Equal(t, "-1.5 cores", FormatCores(-1500))
	assert.InDelta(t, 2.5, MillicoresToCores(2500), 1e-9)
}

func TestRound1(t *testing.T) {
	assert.Equal(t, 33.3, Round1(100.0/3))
	assert.Equal(t, 66.7, Round1(200.0/3))
	assert.Equal(t, 0.0, Round1(0))
	assert.Equal(t, 150.0, Round1(150))
}
