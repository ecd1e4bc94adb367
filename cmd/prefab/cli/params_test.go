// Copyright 2026 The Prefab Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestBindFlags_BasicTypes(t *testing.T) {
	params := struct {
		Manifest string        `flag:"manifest" desc:"manifest path"`
		Strict   bool          `flag:"strict" desc:"fail on warnings"`
		Retries  int           `flag:"retries" desc:"retry count"`
		MaxBytes int64         `flag:"max-bytes" desc:"size limit"`
		Ratio    float64       `flag:"ratio" desc:"target ratio"`
		TTL      time.Duration `flag:"ttl" desc:"entry lifetime"`
		Palettes []string      `flag:"palettes" desc:"palette names"`
	}{}

	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&params, flagSet); err != nil {
		t.Fatalf("BindFlags() error: %v", err)
	}

	err := flagSet.Parse([]string{
		"--manifest", "dungeon.jsonc",
		"--strict",
		"--retries", "3",
		"--max-bytes", "1048576",
		"--ratio", "0.25",
		"--ttl", "90s",
		"--palettes", "legion_red,cellar_dim",
	})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if params.Manifest != "dungeon.jsonc" {
		t.Errorf("Manifest = %q, want %q", params.Manifest, "dungeon.jsonc")
	}
	if !params.Strict {
		t.Error("Strict = false, want true")
	}
	if params.Retries != 3 {
		t.Errorf("Retries = %d, want 3", params.Retries)
	}
	if params.MaxBytes != 1048576 {
		t.Errorf("MaxBytes = %d, want 1048576", params.MaxBytes)
	}
	if params.Ratio != 0.25 {
		t.Errorf("Ratio = %v, want 0.25", params.Ratio)
	}
	if params.TTL != 90*time.Second {
		t.Errorf("TTL = %v, want 90s", params.TTL)
	}
	if len(params.Palettes) != 2 || params.Palettes[0] != "legion_red" || params.Palettes[1] != "cellar_dim" {
		t.Errorf("Palettes = %v, want [legion_red cellar_dim]", params.Palettes)
	}
}

func TestBindFlags_Defaults(t *testing.T) {
	params := struct {
		Codec    string        `flag:"codec" default:"zstd"`
		Validate bool          `flag:"validate" default:"true"`
		Capacity int           `flag:"capacity" default:"64"`
		TTL      time.Duration `flag:"ttl" default:"5m"`
		Layers   []string      `flag:"layers" default:"tiles,objects"`
	}{}

	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&params, flagSet); err != nil {
		t.Fatalf("BindFlags() error: %v", err)
	}
	if err := flagSet.Parse(nil); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if params.Codec != "zstd" {
		t.Errorf("Codec = %q, want %q", params.Codec, "zstd")
	}
	if !params.Validate {
		t.Error("Validate = false, want true")
	}
	if params.Capacity != 64 {
		t.Errorf("Capacity = %d, want 64", params.Capacity)
	}
	if params.TTL != 5*time.Minute {
		t.Errorf("TTL = %v, want 5m", params.TTL)
	}
	if len(params.Layers) != 2 || params.Layers[0] != "tiles" {
		t.Errorf("Layers = %v, want [tiles objects]", params.Layers)
	}
}

func TestBindFlags_CLIOverridesDefault(t *testing.T) {
	params := struct {
		Codec string `flag:"codec" default:"zstd"`
	}{}

	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&params, flagSet); err != nil {
		t.Fatalf("BindFlags() error: %v", err)
	}
	if err := flagSet.Parse([]string{"--codec", "lz4"}); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if params.Codec != "lz4" {
		t.Errorf("Codec = %q, want %q", params.Codec, "lz4")
	}
}

func TestBindFlags_Shorthand(t *testing.T) {
	params := struct {
		Output string `flag:"output,o" desc:"output path"`
	}{}

	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&params, flagSet); err != nil {
		t.Fatalf("BindFlags() error: %v", err)
	}
	if err := flagSet.Parse([]string{"-o", "cellar.dgt"}); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if params.Output != "cellar.dgt" {
		t.Errorf("Output = %q, want %q", params.Output, "cellar.dgt")
	}
}

// CacheTuning implements FlagBinder for the tests below. Exported so
// that reflect can call Interface() on it when used as a field.
type CacheTuning struct {
	Capacity int
}

func (c *CacheTuning) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.IntVar(&c.Capacity, "capacity", 64, "cache capacity")
}

func TestBindFlags_FlagBinderNamedField(t *testing.T) {
	params := struct {
		Tuning CacheTuning

		Manifest string `flag:"manifest"`
	}{}

	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&params, flagSet); err != nil {
		t.Fatalf("BindFlags() error: %v", err)
	}
	if err := flagSet.Parse([]string{"--capacity", "8", "--manifest", "m.jsonc"}); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if params.Tuning.Capacity != 8 {
		t.Errorf("Tuning.Capacity = %d, want 8", params.Tuning.Capacity)
	}
	if params.Manifest != "m.jsonc" {
		t.Errorf("Manifest = %q, want %q", params.Manifest, "m.jsonc")
	}
}

func TestBindFlags_FlagBinderEmbedded(t *testing.T) {
	params := struct {
		CacheTuning
	}{}

	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&params, flagSet); err != nil {
		t.Fatalf("BindFlags() error: %v", err)
	}
	if err := flagSet.Parse(nil); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	// The binder's own default applies, not the zero value.
	if params.Capacity != 64 {
		t.Errorf("Capacity = %d, want 64", params.Capacity)
	}
}

func TestBindFlags_EmbeddedStructRecursion(t *testing.T) {
	type commonParams struct {
		LogLevel string `flag:"log-level" default:"info"`
	}

	params := struct {
		commonParams

		Manifest string `flag:"manifest"`
	}{}

	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&params, flagSet); err != nil {
		t.Fatalf("BindFlags() error: %v", err)
	}
	if err := flagSet.Parse([]string{"--log-level", "debug"}); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if params.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", params.LogLevel, "debug")
	}
}

func TestBindFlags_SkipsUntaggedFields(t *testing.T) {
	params := struct {
		Tagged   string `flag:"tagged"`
		Untagged string
	}{}

	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&params, flagSet); err != nil {
		t.Fatalf("BindFlags() error: %v", err)
	}

	if flagSet.Lookup("tagged") == nil {
		t.Error("flag --tagged not registered")
	}
	if flagSet.Lookup("untagged") != nil {
		t.Error("flag --untagged registered for untagged field")
	}
}

func TestBindFlags_PositionalArgsRemain(t *testing.T) {
	params := struct {
		Strict bool `flag:"strict"`
	}{}

	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&params, flagSet); err != nil {
		t.Fatalf("BindFlags() error: %v", err)
	}
	if err := flagSet.Parse([]string{"--strict", "a.dgt", "b.dgt"}); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	remaining := flagSet.Args()
	if len(remaining) != 2 || remaining[0] != "a.dgt" || remaining[1] != "b.dgt" {
		t.Errorf("Args() = %v, want [a.dgt b.dgt]", remaining)
	}
}

func TestBindFlags_Errors(t *testing.T) {
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)

	t.Run("not a pointer", func(t *testing.T) {
		err := BindFlags(struct{}{}, flagSet)
		if err == nil || !strings.Contains(err.Error(), "pointer to a struct") {
			t.Errorf("error = %v, want 'pointer to a struct'", err)
		}
	})

	t.Run("pointer to non-struct", func(t *testing.T) {
		value := 42
		err := BindFlags(&value, flagSet)
		if err == nil || !strings.Contains(err.Error(), "pointer to a struct") {
			t.Errorf("error = %v, want 'pointer to a struct'", err)
		}
	})

	t.Run("unsupported field type", func(t *testing.T) {
		params := struct {
			Lookup map[string]string `flag:"lookup"`
		}{}
		err := BindFlags(&params, pflag.NewFlagSet("test", pflag.ContinueOnError))
		if err == nil || !strings.Contains(err.Error(), "unsupported type") {
			t.Errorf("error = %v, want 'unsupported type'", err)
		}
	})

	t.Run("malformed default", func(t *testing.T) {
		params := struct {
			Capacity int `flag:"capacity" default:"plenty"`
		}{}
		err := BindFlags(&params, pflag.NewFlagSet("test", pflag.ContinueOnError))
		if err == nil || !strings.Contains(err.Error(), "default for --capacity") {
			t.Errorf("error = %v, want 'default for --capacity'", err)
		}
	})
}

func TestFlagsFromParams(t *testing.T) {
	params := struct {
		Codec string `flag:"codec" default:"zstd"`
	}{}

	flagSet := FlagsFromParams("pack", &params)
	if err := flagSet.Parse([]string{"--codec", "none"}); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if params.Codec != "none" {
		t.Errorf("Codec = %q, want %q", params.Codec, "none")
	}
}

func TestFlagsFromParams_PanicsOnBadParams(t *testing.T) {
	defer func() {
		if recovered := recover(); recovered == nil {
			t.Error("FlagsFromParams did not panic for non-pointer params")
		}
	}()
	FlagsFromParams("pack", struct{}{})
}
