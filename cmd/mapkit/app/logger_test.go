package app

import (
	"testing"
)

// TestDetermineLogLevel tests the log level precedence logic.
func TestDetermineLogLevel(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected string
	}{
		{
			name: "default level when no flags set",
			config: &Config{
				LogLevel: "",
				Verbose:  false,
				Quiet:    false,
			},
			expected: "info",
		},
		{
			name: "verbose flag sets debug",
			config: &Config{
				LogLevel: "",
				Verbose:  true,
				Quiet:    false,
			},
			expected: "debug",
		},
		{
			name: "quiet flag sets warn",
			config: &Config{
				LogLevel: "",
				Verbose:  false,
				Quiet:    true,
			},
			expected: "warn",
		},
		{
			name: "explicit log-level overrides verbose",
			config: &Config{
				LogLevel: "error",
				Verbose:  true,
				Quiet:    false,
			},
			expected: "error",
		},
		{
			name: "explicit log-level overrides quiet",
			config: &Config{
				LogLevel: "trace",
				Verbose:  false,
				Quiet:    true,
			},
			expected: "trace",
		},
		{
			name: "both verbose and quiet prefers quiet",
			config: &Config{
				LogLevel: "",
				Verbose:  true,
				Quiet:    true,
			},
			expected: "warn",
		},
		{
			name: "invalid log level falls back to info",
			config: &Config{
				LogLevel: "invalid",
				Verbose:  false,
				Quiet:    false,
			},
			expected: "info",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := determineLogLevel(tt.config)
			if result != tt.expected {
				t.Errorf("determineLogLevel() = %q, expected %q", result, tt.expected)
			}
		})
	}
}

// TestValidateLogLevel tests log level validation.
func TestValidateLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected string
	}{
		{"trace", "trace"},
		{"debug", "debug"},
		{"info", "info"},
		{"warn", "warn"},
		{"error", "error"},
		{"bogus", "info"},
		{"DEBUG", "info"},
		{"", "info"},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			result := validateLogLevel(tt.level)
			if result != tt.expected {
				t.Errorf("validateLogLevel(%q) = %q, expected %q", tt.level, result, tt.expected)
			}
		})
	}
}

// TestNewLogger verifies logger construction does not panic across
// format and level combinations.
func TestNewLogger(t *testing.T) {
	configs := []*Config{
		{LogFormat: "auto"},
		{LogFormat: "json"},
		{LogFormat: "console", NoColor: true},
		{LogLevel: "debug", LogFormat: "json"},
		{Verbose: true, LogFormat: "auto"},
	}

	for _, config := range configs {
		logger := NewLogger(config)
		logger.Debug().Msg("logger constructed")
	}
}
