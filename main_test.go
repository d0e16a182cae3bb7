package main

import (
	"strings"
	"testing"

	"github.com/urfave/cli"
)

// hasFlag matches name against every alias of every flag
func hasFlag(flags []cli.Flag, name string) bool {
	for _, flag := range flags {
		for _, alias := range strings.Split(flag.GetName(), ",") {
			if strings.TrimSpace(alias) == name {
				return true
			}
		}
	}
	return false
}

func TestNewApp_Commands(t *testing.T) {
	app := newApp()

	tests := []struct {
		name  string
		flags []string
	}{
		{"render", []string{"mode", "width", "height", "workers", "tile-size", "out", "mesh", "time"}},
		{"scenes", nil},
		{"inspect", []string{"mesh", "time"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			command := app.Command(tt.name)
			if command == nil {
				t.Fatalf("Expected command %q", tt.name)
			}
			if command.Action == nil {
				t.Errorf("Expected command %q to have an action", tt.name)
			}

			for _, flag := range tt.flags {
				if !hasFlag(command.Flags, flag) {
					t.Errorf("Expected command %q to have flag %q", tt.name, flag)
				}
			}
		})
	}
}

func TestApp_RenderRequiresScene(t *testing.T) {
	app := newApp()
	err := app.Run([]string{"rtpipeline", "render", "--out", t.TempDir() + "/frame.png"})
	if err == nil {
		t.Error("Expected error when the scene argument is missing")
	}
}

func TestApp_RenderScene(t *testing.T) {
	app := newApp()
	err := app.Run([]string{"rtpipeline", "render", "--mode", "query", "--width", "8", "--height", "8", "--out", t.TempDir() + "/frame.png", "cubes"})
	if err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}
