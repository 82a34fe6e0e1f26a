package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spencer-p/tidepredict/pkg/constituents/constituentstest"
	"github.com/spencer-p/tidepredict/pkg/tide"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func datasetFlags(files constituentstest.Files) []string {
	return []string{"--yearly", files.Yearly, "--stations", files.Station, "--secondaries", files.Secondary}
}

func TestHourly(t *testing.T) {
	files := constituentstest.Standard(t, 2023, 2024, 2, "")
	args := append(datasetFlags(files), "hourly", "-s", "2", "--start", "2023-12-31T22:00:00-05:00", "-n", "5")
	out, err := run(t, args...)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d lines:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "2023-12-31 22:00") || !strings.HasPrefix(lines[4], "2024-01-01 02:00") {
		t.Errorf("unexpected times:\n%s", out)
	}
}

func TestJSONOutput(t *testing.T) {
	files := constituentstest.Standard(t, 2023, 2023, 1, "")
	args := append(datasetFlags(files), "hourly", "-s", "1", "--start", "2023-06-01T00:00:00Z", "-n", "4", "--step", "0.5", "-o", "json")
	out, err := run(t, args...)
	if err != nil {
		t.Fatal(err)
	}
	var preds tide.Predictions
	if err := json.Unmarshal([]byte(out), &preds); err != nil {
		t.Fatalf("%v: %s", err, out)
	}
	if len(preds) != 4 {
		t.Errorf("got %d predictions", len(preds))
	}
}

func TestMLLWFromEnvironment(t *testing.T) {
	files := constituentstest.Standard(t, 2023, 2023, 2, "")
	t.Setenv("TIDE_YEARLY", files.Yearly)
	t.Setenv("TIDE_STATIONS", files.Station)
	out, err := run(t, "mllw", "-s", "2", "--start", "2023-06-01T00:00:00Z")
	if err != nil {
		t.Fatal(err)
	}
	if out != "2.250\n" {
		t.Errorf("got %q", out)
	}
}

func TestConfigFile(t *testing.T) {
	files := constituentstest.Standard(t, 2023, 2023, 1, "")
	cfg := filepath.Join(t.TempDir(), "tide.yaml")
	content := "yearly: " + files.Yearly + "\nstations: " + files.Station + "\nstrategy: pointwise\n"
	if err := os.WriteFile(cfg, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := run(t, "--config", cfg, "single", "-s", "1", "--start", "2023-06-01T12:30:00Z")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "2023-06-01 12:30") {
		t.Errorf("got %q", out)
	}
}

func TestHomeConfig(t *testing.T) {
	files := constituentstest.Standard(t, 2023, 2023, 1, "")
	table := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"valid", "yearly: " + files.Yearly + "\nstations: " + files.Station + "\n", false},
		{"malformed", "yearly: [" + files.Yearly + "\n", true},
	}
	for _, tc := range table {
		t.Run(tc.name, func(t *testing.T) {
			home := t.TempDir()
			if err := os.WriteFile(filepath.Join(home, ".tide.yaml"), []byte(tc.content), 0o644); err != nil {
				t.Fatal(err)
			}
			t.Setenv("HOME", home)
			cmd := newRootCmd()
			var out bytes.Buffer
			cmd.SetOut(&out)
			cmd.SetErr(&bytes.Buffer{})
			cmd.SetArgs([]string{"mllw", "-s", "1", "--start", "2023-06-01T00:00:00Z"})
			err := cmd.Execute()
			if gotErr := err != nil; gotErr != tc.wantErr {
				t.Fatalf("error %v, want error %v", err, tc.wantErr)
			}
			if !tc.wantErr && out.String() != "1.250\n" {
				t.Errorf("got %q", out.String())
			}
		})
	}
}

func TestErrors(t *testing.T) {
	files := constituentstest.Standard(t, 2023, 2023, 1, "")
	table := []struct {
		name string
		args []string
	}{
		{"missing station", []string{"hourly", "--start", "2023-06-01T00:00:00Z"}},
		{"start without offset", []string{"hourly", "-s", "1", "--start", "2023-06-01T00:00:00"}},
		{"year out of range", []string{"hourly", "-s", "1", "--start", "2050-06-01T00:00:00Z"}},
		{"bad output", []string{"hourly", "-s", "1", "--start", "2023-06-01T00:00:00Z", "-o", "xml"}},
		{"bad strategy", []string{"--strategy", "guess", "hourly", "-s", "1", "--start", "2023-06-01T00:00:00Z"}},
	}
	for _, tc := range table {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := run(t, append(datasetFlags(files), tc.args...)...); err == nil {
				t.Errorf("succeeded")
			}
		})
	}
}
