package main

import (
	"strings"
	"testing"
)

func TestDBCmd_Help(t *testing.T) {
	out := mustRun(t, "db", "--help")
	if !strings.Contains(out, "Database management") {
		t.Errorf("expected help to mention 'Database management', got: %s", out)
	}
	if !strings.Contains(out, "init") {
		t.Errorf("expected help to list 'init' subcommand, got: %s", out)
	}
}

func TestDBInitCmd_Help(t *testing.T) {
	out := mustRun(t, "db", "init", "--help")
	if !strings.Contains(out, "migrates all tables") {
		t.Errorf("expected help to describe migration, got: %s", out)
	}
	if !strings.Contains(out, "ensemble.yaml") {
		t.Errorf("expected default config path 'ensemble.yaml', got: %s", out)
	}
}

func TestDBInitCmd_SQLite(t *testing.T) {
	cfgPath := testConfig(t)
	out := mustRun(t, "db", "init", "-c", cfgPath)

	for _, want := range []string{
		"Loaded config from " + cfgPath,
		"Migrated 1 tables",
		"Roster has 5 agents, history has 1 messages",
		"initialized successfully",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got: %s", want, out)
		}
	}
	if strings.Contains(out, "MySQL") {
		t.Errorf("sqlite init should not connect to MySQL, got: %s", out)
	}
}

func TestDBInitCmd_Idempotent(t *testing.T) {
	cfgPath := testConfig(t)
	mustRun(t, "db", "init", "-c", cfgPath)
	mustRun(t, "agent", "add", "--name", "Zed", "-c", cfgPath)

	out := mustRun(t, "db", "init", "-c", cfgPath)
	if !strings.Contains(out, "Roster has 6 agents") {
		t.Errorf("re-running init should keep the roster, got: %s", out)
	}
}
