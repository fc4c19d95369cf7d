package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/swapsort/pkg/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "swapsort.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigApply(t *testing.T) {
	path := writeConfig(t, `
kernel_radius = 12
seconds_between_saves = 30
mode = "weighted"
seed_a = 7
max_passes = 100
`)
	fc, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}

	opts := defaultSortOpts()
	// -k was given on the command line and wins over the file.
	opts.radius = 3
	fc.apply(&opts, func(flag string) bool { return flag == "kernel-radius" })

	if opts.radius != 3 {
		t.Errorf("radius = %d, want flag value 3", opts.radius)
	}
	if opts.seconds != 30 {
		t.Errorf("seconds = %d, want 30", opts.seconds)
	}
	if opts.mode != "weighted" {
		t.Errorf("mode = %q, want weighted", opts.mode)
	}
	if opts.seedA != 7 {
		t.Errorf("seedA = %d, want 7", opts.seedA)
	}
	if opts.maxPasses != 100 {
		t.Errorf("maxPasses = %d, want 100", opts.maxPasses)
	}
	// Absent keys keep their defaults.
	if opts.zeros != defaultZeros {
		t.Errorf("zeros = %d, want default %d", opts.zeros, defaultZeros)
	}
}

func TestLoadConfigUnknownKey(t *testing.T) {
	path := writeConfig(t, "kernal_radius = 12\n")
	_, err := loadConfig(path)
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Fatalf("loadConfig() error = %v, want %s", err, errors.ErrCodeInvalidConfig)
	}
}

func TestLoadConfigMissing(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil {
		t.Fatal("loadConfig() should fail for a missing file")
	}
}

func TestLoadConfigBadType(t *testing.T) {
	path := writeConfig(t, "kernel_radius = \"big\"\n")
	if _, err := loadConfig(path); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Fatalf("loadConfig() error = %v, want %s", err, errors.ErrCodeInvalidConfig)
	}
}
