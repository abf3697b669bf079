package db

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/zulandar/ensemble/internal/config"
	"github.com/zulandar/ensemble/internal/models"
	"gorm.io/gorm"
)

func TestDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.DatabaseConfig
		want string
	}{
		{
			name: "default local",
			cfg:  config.DatabaseConfig{Host: "127.0.0.1", Port: 3306, Name: "ensemble", User: "root"},
			want: "root@tcp(127.0.0.1:3306)/ensemble?",
		},
		{
			name: "custom host and port",
			cfg:  config.DatabaseConfig{Host: "10.0.0.5", Port: 3307, Name: "ensemble_bob", User: "bob"},
			want: "bob@tcp(10.0.0.5:3307)/ensemble_bob?",
		},
		{
			name: "server level",
			cfg:  config.DatabaseConfig{Host: "db.internal", Port: 3306, User: "root"},
			want: "root@tcp(db.internal:3306)/?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DSN(tt.cfg)
			if !strings.HasPrefix(got, tt.want) {
				t.Errorf("DSN() = %q, want prefix %q", got, tt.want)
			}
			if !strings.Contains(got, "parseTime=true") {
				t.Errorf("DSN missing parseTime=true: %s", got)
			}
		})
	}
}

func TestConnect_UnsupportedDriver(t *testing.T) {
	_, err := Connect(config.DatabaseConfig{Driver: "postgres"})
	if err == nil {
		t.Fatal("expected error for unsupported driver")
	}
	if !strings.Contains(err.Error(), "unsupported driver") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "unsupported driver")
	}
}

func TestConnect_SQLiteRequiresPath(t *testing.T) {
	_, err := Connect(config.DatabaseConfig{Driver: "sqlite"})
	if err == nil {
		t.Fatal("expected error for empty sqlite path")
	}
}

func TestOpen_SQLiteMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ensemble.db")
	gdb, err := Open(config.DatabaseConfig{Driver: "sqlite", Path: path})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !gdb.Migrator().HasTable(&models.Setting{}) {
		t.Error("settings table not created")
	}
}

func TestConnectAdmin_Error(t *testing.T) {
	// Port 1 is unlikely to have a MySQL server; expect connection error.
	_, err := ConnectAdmin(config.DatabaseConfig{Host: "127.0.0.1", Port: 1, User: "root"})
	if err == nil {
		t.Fatal("expected error connecting to invalid port")
	}
	if !strings.Contains(err.Error(), "db: admin connect to") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "db: admin connect to")
	}
}

func TestCreateDatabase_Signature(t *testing.T) {
	var fn func(*gorm.DB, string) error = CreateDatabase
	if fn == nil {
		t.Fatal("CreateDatabase function is nil")
	}
}

func TestAllModels_Count(t *testing.T) {
	if n := len(AllModels()); n != 1 {
		t.Errorf("AllModels() returned %d models, want 1", n)
	}
}
