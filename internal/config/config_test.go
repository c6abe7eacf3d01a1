package config

import (
	"os"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	os.Setenv("DB_PASSWORD", "test_password")
	os.Setenv("GAME_CONFIG_PATH", "testdata/game.yaml")
	defer func() {
		os.Unsetenv("DB_PASSWORD")
		os.Unsetenv("GAME_CONFIG_PATH")
	}()

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.DBPassword != "test_password" {
		t.Errorf("DBPassword = %q, want %q", cfg.DBPassword, "test_password")
	}
	if cfg.GameConfigPath != "testdata/game.yaml" {
		t.Errorf("GameConfigPath = %q, want %q", cfg.GameConfigPath, "testdata/game.yaml")
	}
	if cfg.DBSSLMode != "disable" {
		t.Errorf("DBSSLMode = %q, want default %q", cfg.DBSSLMode, "disable")
	}
}

func TestLoadConfig_MissingPassword(t *testing.T) {
	os.Unsetenv("DB_PASSWORD")

	if _, err := LoadConfig(); err == nil {
		t.Error("LoadConfig() expected error for missing DB_PASSWORD")
	}
}

func TestValidateProductionSecurity(t *testing.T) {
	tests := []struct {
		name    string
		appEnv  string
		sslMode string
		wantErr bool
	}{
		{
			name:    "production with ssl required",
			appEnv:  "production",
			sslMode: "require",
			wantErr: false,
		},
		{
			name:    "production without ssl",
			appEnv:  "production",
			sslMode: "disable",
			wantErr: true,
		},
		{
			name:    "development without ssl",
			appEnv:  "development",
			sslMode: "disable",
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{AppEnv: tt.appEnv, DBSSLMode: tt.sslMode}
			err := cfg.ValidateProductionSecurity()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateProductionSecurity() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetDSN(t *testing.T) {
	cfg := &Config{
		DBHost:     "db.local",
		DBPort:     "5432",
		DBUser:     "villagecraft",
		DBPassword: "secret",
		DBName:     "villagecraft_db",
		DBSSLMode:  "require",
	}

	want := "host=db.local port=5432 user=villagecraft password=secret dbname=villagecraft_db sslmode=require"
	if got := cfg.GetDSN(); got != want {
		t.Errorf("GetDSN() = %q, want %q", got, want)
	}
}
