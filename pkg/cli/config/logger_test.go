package config_test

import (
	"testing"

	"github.com/m-mizutani/drover/pkg/cli/config"
)

func TestLogger_Configure(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		wantErr bool
	}{
		{name: "debug", level: "debug"},
		{name: "debug uppercase", level: "DEBUG"},
		{name: "info", level: "info"},
		{name: "warn", level: "warn"},
		{name: "error", level: "error"},
		{name: "mixed case", level: "Info"},
		{name: "unknown level", level: "verbose", wantErr: true},
		{name: "empty level", level: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := &config.Logger{
				Level: tt.level,
				JSON:  false,
			}

			result, err := logger.Configure()
			if (err != nil) != tt.wantErr {
				t.Errorf("Configure() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr && result == nil {
				t.Error("Configure() returned nil logger for valid input")
			}
		})
	}
}

func TestLogger_Configure_Formats(t *testing.T) {
	for _, jsonFormat := range []bool{true, false} {
		logger := &config.Logger{
			Level: "info",
			JSON:  jsonFormat,
		}

		result, err := logger.Configure()
		if err != nil {
			t.Fatalf("Configure() unexpected error = %v", err)
		}
		if result == nil {
			t.Fatal("Configure() returned nil logger")
		}

		// Exercise each level so a broken handler surfaces here
		result.Debug("debug message")
		result.Info("info message")
		result.Warn("warn message")
		result.Error("error message")
	}
}

func TestLogger_Flags(t *testing.T) {
	logger := &config.Logger{}
	flags := logger.Flags()

	if len(flags) != 2 {
		t.Errorf("Flags() returned %d flags, want 2", len(flags))
	}

	flagNames := make(map[string]bool)
	for _, flag := range flags {
		if f, ok := flag.(interface{ Names() []string }); ok {
			for _, name := range f.Names() {
				flagNames[name] = true
			}
		}
	}

	if !flagNames["log-level"] {
		t.Error("Missing log-level flag")
	}
	if !flagNames["log-json"] {
		t.Error("Missing log-json flag")
	}
}
