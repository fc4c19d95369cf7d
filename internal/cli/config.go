package cli

import (
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/swapsort/pkg/errors"
)

// fileConfig mirrors the sort flags in a TOML file. Keys use the long flag
// names with dashes replaced by underscores:
//
//	kernel_radius = 40
//	seconds_between_saves = 5
//	mode = "weighted"
//
// Pointer fields distinguish "absent" from a zero value.
type fileConfig struct {
	SecondsBetweenSaves *int    `toml:"seconds_between_saves"`
	KernelRadius        *int    `toml:"kernel_radius"`
	NoOverwritingOutput *bool   `toml:"no_overwriting_output"`
	LeadingZeroCount    *int    `toml:"saved_image_leading_zero_count"`
	Mode                *string `toml:"mode"`
	IncludeSelf         *bool   `toml:"include_self"`
	Workers             *int    `toml:"workers"`
	SeedA               *uint32 `toml:"seed_a"`
	SeedB               *uint32 `toml:"seed_b"`
	VerifyEvery         *uint64 `toml:"verify_every"`
	MaxPasses           *uint64 `toml:"max_passes"`
	ColorSpace          *string `toml:"color_space"`
	NoCache             *bool   `toml:"no_cache"`
}

// loadConfig reads a TOML config file. Unknown keys are rejected so that a
// typo does not silently fall back to a default.
func loadConfig(path string) (*fileConfig, error) {
	var fc fileConfig
	md, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return &fc, nil
}

// apply copies every value present in the file into opts, except for flags
// the user set explicitly on the command line.
func (fc *fileConfig) apply(opts *sortOpts, changed func(flag string) bool) {
	setFromFile(&opts.seconds, fc.SecondsBetweenSaves, changed("seconds-between-saves"))
	setFromFile(&opts.radius, fc.KernelRadius, changed("kernel-radius"))
	setFromFile(&opts.noOverwrite, fc.NoOverwritingOutput, changed("no-overwriting-output"))
	setFromFile(&opts.zeros, fc.LeadingZeroCount, changed("saved-image-leading-zero-count"))
	setFromFile(&opts.mode, fc.Mode, changed("mode"))
	setFromFile(&opts.includeSelf, fc.IncludeSelf, changed("include-self"))
	setFromFile(&opts.workers, fc.Workers, changed("workers"))
	setFromFile(&opts.seedA, fc.SeedA, changed("seed-a"))
	setFromFile(&opts.seedB, fc.SeedB, changed("seed-b"))
	setFromFile(&opts.verifyEvery, fc.VerifyEvery, changed("verify-every"))
	setFromFile(&opts.maxPasses, fc.MaxPasses, changed("max-passes"))
	setFromFile(&opts.colorSpace, fc.ColorSpace, changed("color-space"))
	setFromFile(&opts.noCache, fc.NoCache, changed("no-cache"))
}

func setFromFile[T any](dst *T, v *T, flagSet bool) {
	if v != nil && !flagSet {
		*dst = *v
	}
}
