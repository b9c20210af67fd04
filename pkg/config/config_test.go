// SPDX-FileCopyrightText: 2026 Murphy Proxy Contributors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"testing"
	"time"

	"github.com/murphyproxy/resource-proxy/tests/helpers"
	"github.com/stretchr/testify/assert"
)

func TestNewDefault(t *testing.T) {
	config := NewDefault()

	helpers.AssertNotNil(t, config)

	helpers.AssertEqual(t, false, config.Debug)
	helpers.AssertEqual(t, "tcp:localhost:4000", config.MasterAddress)
	helpers.AssertEqual(t, "default", config.Zone)

	assert.Greater(t, config.DialTimeout, time.Duration(0))
	assert.Greater(t, config.ReconnectBackoffMin, time.Duration(0))
	assert.Greater(t, config.ReconnectBackoffMax, config.ReconnectBackoffMin)
}

func TestConfigLoad(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		expected func(*Config)
	}{
		{
			name: "master address from environment",
			envVars: map[string]string{
				"MURPHY_MASTER_ADDR": "tcp:master.example.com:4000",
			},
			expected: func(config *Config) {
				helpers.AssertEqual(t, "tcp:master.example.com:4000", config.MasterAddress)
			},
		},
		{
			name: "zone from environment",
			envVars: map[string]string{
				"MURPHY_ZONE": "restricted",
			},
			expected: func(config *Config) {
				helpers.AssertEqual(t, "restricted", config.Zone)
			},
		},
		{
			name: "dial timeout from environment",
			envVars: map[string]string{
				"MURPHY_DIAL_TIMEOUT": "5s",
			},
			expected: func(config *Config) {
				helpers.AssertEqual(t, 5*time.Second, config.DialTimeout)
			},
		},
		{
			name: "debug from environment",
			envVars: map[string]string{
				"MURPHY_DEBUG": "true",
			},
			expected: func(config *Config) {
				helpers.AssertEqual(t, true, config.Debug)
			},
		},
		{
			name: "all environment variables",
			envVars: map[string]string{
				"MURPHY_MASTER_ADDR":  "tcp:master.example.com:4000",
				"MURPHY_ZONE":         "restricted",
				"MURPHY_DIAL_TIMEOUT": "20s",
				"MURPHY_DEBUG":        "true",
			},
			expected: func(config *Config) {
				helpers.AssertEqual(t, "tcp:master.example.com:4000", config.MasterAddress)
				helpers.AssertEqual(t, "restricted", config.Zone)
				helpers.AssertEqual(t, 20*time.Second, config.DialTimeout)
				helpers.AssertEqual(t, true, config.Debug)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			config := NewDefault()
			config.Load()

			helpers.AssertNotNil(t, config)
			tt.expected(config)
		})
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name        string
		config      *Config
		expectError bool
		expectedErr error
	}{
		{
			name: "valid config",
			config: &Config{
				MasterAddress:       "tcp:localhost:4000",
				DialTimeout:         30 * time.Second,
				ReconnectBackoffMin: 1 * time.Second,
				ReconnectBackoffMax: 30 * time.Second,
			},
			expectError: false,
		},
		{
			name: "missing master address",
			config: &Config{
				DialTimeout:         30 * time.Second,
				ReconnectBackoffMin: 1 * time.Second,
				ReconnectBackoffMax: 30 * time.Second,
			},
			expectError: true,
			expectedErr: ErrMissingMasterAddress,
		},
		{
			name: "invalid timeout",
			config: &Config{
				MasterAddress:       "tcp:localhost:4000",
				DialTimeout:         -1 * time.Second,
				ReconnectBackoffMin: 1 * time.Second,
				ReconnectBackoffMax: 30 * time.Second,
			},
			expectError: true,
			expectedErr: ErrInvalidTimeout,
		},
		{
			name: "zero timeout",
			config: &Config{
				MasterAddress:       "tcp:localhost:4000",
				DialTimeout:         0,
				ReconnectBackoffMin: 1 * time.Second,
				ReconnectBackoffMax: 30 * time.Second,
			},
			expectError: true,
			expectedErr: ErrInvalidTimeout,
		},
		{
			name: "backoff max below min",
			config: &Config{
				MasterAddress:       "tcp:localhost:4000",
				DialTimeout:         30 * time.Second,
				ReconnectBackoffMin: 10 * time.Second,
				ReconnectBackoffMax: 5 * time.Second,
			},
			expectError: true,
			expectedErr: ErrInvalidBackoff,
		},
		{
			name: "zero backoff min",
			config: &Config{
				MasterAddress:       "tcp:localhost:4000",
				DialTimeout:         30 * time.Second,
				ReconnectBackoffMin: 0,
				ReconnectBackoffMax: 30 * time.Second,
			},
			expectError: true,
			expectedErr: ErrInvalidBackoff,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()

			if tt.expectError {
				assert.Error(t, err)
				if tt.expectedErr != nil {
					helpers.AssertEqual(t, tt.expectedErr, err)
				}
			} else {
				helpers.AssertNoError(t, err)
			}
		})
	}
}

func TestConfigMutation(t *testing.T) {
	config := NewDefault()

	config.MasterAddress = "tcp:example.com:4000"
	helpers.AssertEqual(t, "tcp:example.com:4000", config.MasterAddress)

	config.DialTimeout = 60 * time.Second
	helpers.AssertEqual(t, 60*time.Second, config.DialTimeout)

	config.Zone = "restricted"
	helpers.AssertEqual(t, "restricted", config.Zone)

	config.Debug = true
	helpers.AssertEqual(t, true, config.Debug)
}
