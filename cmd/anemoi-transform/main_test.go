package main

import (
	"slices"
	"testing"
)

func TestNewRegistries_Builtins(t *testing.T) {
	sources, filterReg := newRegistries()

	sourceNames, err := sources.Names()
	if err != nil {
		t.Fatalf("listing sources: %v", err)
	}
	for _, want := range []string{"file", "list"} {
		if !slices.Contains(sourceNames, want) {
			t.Errorf("source %q not registered, got %v", want, sourceNames)
		}
	}

	filterNames, err := filterReg.Names()
	if err != nil {
		t.Fatalf("listing filters: %v", err)
	}
	for _, want := range []string{"uv_2_ddff", "ddff_2_uv", "q_2_r", "rescale", "rename", "noop", "where", "script"} {
		if !slices.Contains(filterNames, want) {
			t.Errorf("filter %q not registered, got %v", want, filterNames)
		}
	}

	if !slices.IsSorted(filterNames) {
		t.Error("filter names should come back sorted")
	}
}

func TestCommands_Wired(t *testing.T) {
	want := map[string]bool{
		"validate": false,
		"run":      false,
		"filters":  false,
		"version":  false,
	}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestRunCommandFlags(t *testing.T) {
	for _, flag := range []string{"dry-run", "reverse"} {
		if runCmd.Flags().Lookup(flag) == nil {
			t.Errorf("run command missing --%s flag", flag)
		}
	}
	for _, flag := range []string{"verbose", "quiet", "log-format"} {
		if rootCmd.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("root command missing --%s flag", flag)
		}
	}
}
