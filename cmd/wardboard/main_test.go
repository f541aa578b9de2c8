package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rshade/wardboard/internal/cli"
	"github.com/rshade/wardboard/pkg/version"
)

func TestMainComponents(t *testing.T) {
	t.Run("version available", func(t *testing.T) {
		assert.NotEmpty(t, version.GetVersion())
	})

	t.Run("cli root command", func(t *testing.T) {
		root := cli.NewRootCmd(version.GetVersion())
		assert.Equal(t, "wardboard", root.Use)
		assert.Equal(t, version.GetVersion(), root.Version)
	})
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: 0},
		{name: "generic error", err: errors.New("boom"), want: 1},
		{name: "no terminal", err: cli.ErrNoTerminal, want: 1},
		{name: "cancelled", err: context.Canceled, want: exitInterrupted},
		{name: "wrapped cancel", err: fmt.Errorf("running dashboard: %w", context.Canceled), want: exitInterrupted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}
