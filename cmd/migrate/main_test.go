package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"1", 1, false},
		{"-1", -1, false},
		{"0", 0, false},
		{"-2", 0, true},
		{"one", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseVersion(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseVersion(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseVersion(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestMissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DRILLS_CONFIG", "")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"up"})
	cmd.SetOut(&bytes.Buffer{})

	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "database URL is required") {
		t.Fatalf("Expected a missing database error, got %v", err)
	}
}

func TestForceRequiresVersion(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"force"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	if err := cmd.Execute(); err == nil {
		t.Fatal("Expected an argument error")
	}
}
