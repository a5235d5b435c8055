package main

import (
	"os"
	"testing"

	"github.com/knxcore/knxcore/internal/knx/image"
	"github.com/knxcore/knxcore/internal/knx/signal"
)

// TestGetConfigPath_Default verifies the default config path.
func TestGetConfigPath_Default(t *testing.T) {
	originalEnv := os.Getenv("KNXCORE_CONFIG")
	defer os.Setenv("KNXCORE_CONFIG", originalEnv) //nolint:errcheck // test cleanup

	os.Unsetenv("KNXCORE_CONFIG") //nolint:errcheck // test setup

	if path := getConfigPath(); path != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", path, defaultConfigPath)
	}
}

// TestGetConfigPath_EnvOverride verifies the environment variable override.
func TestGetConfigPath_EnvOverride(t *testing.T) {
	originalEnv := os.Getenv("KNXCORE_CONFIG")
	defer os.Setenv("KNXCORE_CONFIG", originalEnv) //nolint:errcheck // test cleanup

	expected := "/custom/path/config.yaml"
	os.Setenv("KNXCORE_CONFIG", expected) //nolint:errcheck // test setup

	if path := getConfigPath(); path != expected {
		t.Errorf("getConfigPath() = %q, want %q", path, expected)
	}
}

// TestRun_InvalidConfig verifies run fails when the config file doesn't exist.
func TestRun_InvalidConfig(t *testing.T) {
	originalEnv := os.Getenv("KNXCORE_CONFIG")
	defer os.Setenv("KNXCORE_CONFIG", originalEnv) //nolint:errcheck // test cleanup

	os.Setenv("KNXCORE_CONFIG", "/nonexistent/path/config.yaml") //nolint:errcheck // test setup

	if err := run(nil); err == nil { //nolint:staticcheck // nil context: Load fails before ctx is used
		t.Fatal("run() should fail with invalid config path")
	}
}

// TestRunBuild_InvalidConfig verifies runBuild fails when the config
// file doesn't exist.
func TestRunBuild_InvalidConfig(t *testing.T) {
	originalEnv := os.Getenv("KNXCORE_CONFIG")
	defer os.Setenv("KNXCORE_CONFIG", originalEnv) //nolint:errcheck // test cleanup

	os.Setenv("KNXCORE_CONFIG", "/nonexistent/path/config.yaml") //nolint:errcheck // test setup

	if err := runBuild(nil, "demo"); err == nil { //nolint:staticcheck // nil context: Load fails before ctx is used
		t.Fatal("runBuild() should fail with invalid config path")
	}
}

// TestParseProfile verifies every configured profile name maps to its
// signal.Profile and that an unknown name falls back to the default.
func TestParseProfile(t *testing.T) {
	cases := map[string]signal.Profile{
		"strict":    signal.ProfileStrict,
		"default":   signal.ProfileDefault,
		"relaxed":   signal.ProfileRelaxed,
		"unknown!!": signal.ProfileDefault,
	}
	for name, want := range cases {
		if got := parseProfile(name); got != want {
			t.Errorf("parseProfile(%q) = %v, want %v", name, got, want)
		}
	}
}

// TestDemoProgram_Builds verifies the demo program/device pair used by
// the "build" subcommand actually builds an image.
func TestDemoProgram_Builds(t *testing.T) {
	device, err := demoDevice()
	if err != nil {
		t.Fatalf("demoDevice() error = %v", err)
	}

	img, base, err := image.Build(demoProgram(), device)
	if err != nil {
		t.Fatalf("image.Build() error = %v", err)
	}
	if len(img) == 0 {
		t.Error("expected non-empty image")
	}

	summary := image.Summarize(demoProgram(), device, img, base)
	if summary.ContentHash == "" {
		t.Error("expected non-empty content hash")
	}
}
