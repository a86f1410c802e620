package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbeIdempotent(t *testing.T) {
	first := Probe()
	second := Probe()
	assert.Equal(t, first, second)
}

func TestDetectStable(t *testing.T) {
	const goroutines = 16

	results := make([]Capabilities, goroutines)
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := range goroutines {
		go func() {
			defer wg.Done()
			results[i] = Detect()
		}()
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, results[0], r)
	}
	assert.Equal(t, Probe(), Detect())
}

func TestDetectOnLinux(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("linux only")
	}
	caps := Detect()
	t.Logf("capabilities: %s", caps)
	assert.NotEmpty(t, caps.Kernel.Release)
}

func TestWithoutOnlyDisables(t *testing.T) {
	full := Capabilities{ExtendedStat: true, RangeCopy: true}

	assert.Equal(t, Capabilities{RangeCopy: true}, full.Without(true, false))
	assert.Equal(t, Capabilities{ExtendedStat: true}, full.Without(false, true))
	assert.Equal(t, Capabilities{}, full.Without(true, true))
	assert.Equal(t, full, full.Without(false, false))

	none := Capabilities{}
	assert.Equal(t, none, none.Without(false, false))
}

func TestWithoutLeavesOriginal(t *testing.T) {
	caps := Detect()
	_ = caps.Without(true, true)
	assert.Equal(t, caps, Detect())
}

func TestCapabilitiesString(t *testing.T) {
	c := Capabilities{
		Kernel:       KernelVersion{Release: "6.1.0", Major: 6, Minor: 1},
		ExtendedStat: true,
	}
	assert.Equal(t, "kernel=6.1.0 statx=true copy_file_range=false", c.String())
	assert.Equal(t, "kernel=unknown statx=false copy_file_range=false", Capabilities{}.String())
}

func TestParseKernelRelease(t *testing.T) {
	tests := []struct {
		release string
		major   int
		minor   int
	}{
		{"6.8.0-45-generic", 6, 8},
		{"5.10.0+", 5, 10},
		{"4.19", 4, 19},
		{"5.15rc1.0", 5, 15},
		{"6.18.44-fc-v139", 6, 18},
	}
	for _, tt := range tests {
		t.Run(tt.release, func(t *testing.T) {
			v, err := parseKernelRelease(tt.release)
			require.NoError(t, err)
			assert.Equal(t, tt.major, v.Major)
			assert.Equal(t, tt.minor, v.Minor)
			assert.Equal(t, tt.release, v.Release)
		})
	}
}

func TestParseKernelReleaseErrors(t *testing.T) {
	for _, release := range []string{"", "six", "6", "x.8.0", "6.rc1"} {
		t.Run(release, func(t *testing.T) {
			v, err := parseKernelRelease(release)
			assert.Error(t, err)
			assert.Equal(t, release, v.Release)
			assert.Zero(t, v.Major)
		})
	}
}

func TestKernelVersionAtLeast(t *testing.T) {
	v := KernelVersion{Release: "5.6.0", Major: 5, Minor: 6}
	assert.True(t, v.AtLeast(5, 6))
	assert.True(t, v.AtLeast(4, 20))
	assert.False(t, v.AtLeast(5, 7))
	assert.False(t, v.AtLeast(6, 0))
}

func TestCrossFilesystemRangeCopy(t *testing.T) {
	tests := []struct {
		name string
		caps Capabilities
		want bool
	}{
		{name: "new kernel", caps: Capabilities{RangeCopy: true, Kernel: KernelVersion{Major: 6, Minor: 1}}, want: true},
		{name: "first supporting kernel", caps: Capabilities{RangeCopy: true, Kernel: KernelVersion{Major: 5, Minor: 3}}, want: true},
		{name: "old kernel", caps: Capabilities{RangeCopy: true, Kernel: KernelVersion{Major: 5, Minor: 2}}, want: false},
		{name: "range copy disabled", caps: Capabilities{Kernel: KernelVersion{Major: 6, Minor: 1}}, want: false},
		{name: "unknown kernel", caps: Capabilities{RangeCopy: true}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.caps.CrossFilesystemRangeCopy())
		})
	}
}

func TestIgnoringEINTRRestarts(t *testing.T) {
	calls := 0
	err := IgnoringEINTR(func() error {
		calls++
		if calls < 3 {
			return syscall.EINTR
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestIgnoringEINTRPassesOtherErrors(t *testing.T) {
	calls := 0
	err := IgnoringEINTR(func() error {
		calls++
		return syscall.ENOENT
	})
	assert.Equal(t, syscall.ENOENT, err)
	assert.Equal(t, 1, calls)
}

func TestIgnoringEINTRIO(t *testing.T) {
	calls := 0
	n, err := IgnoringEINTRIO(func() (int, error) {
		calls++
		if calls == 1 {
			return -1, syscall.EINTR
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, n)
	assert.Equal(t, 2, calls)
}

func TestPreallocateKeepsSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	Preallocate(int(f.Fd()), 1<<20)

	info, err := f.Stat()
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestFadvise(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("linux only")
	}
	path := filepath.Join(t.TempDir(), "f")
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, Fadvise(int(f.Fd()), 0, 0, AdviceSequential))
	assert.Equal(t, syscall.EBADF, Fadvise(-1, 0, 0, AdviceSequential))
}
