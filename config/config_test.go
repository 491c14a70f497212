package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "segredo")
	t.Setenv("ESTOQUE_DATA_DIR", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("SESSION_EXPIRY_MIN", "")
	t.Setenv("IO_TIMEOUT_SEC", "")
	t.Setenv("USERS_FILE", "")

	cfg := LoadConfig()

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "users.json", cfg.UsersFile)
	assert.Equal(t, "almoxarifado.json", cfg.WarehouseFile)
	assert.Equal(t, 480*time.Minute, cfg.SessionExpiry)
	assert.Equal(t, 5*time.Second, cfg.IOTimeout)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "segredo")
	t.Setenv("ENV", "production")
	t.Setenv("ESTOQUE_DATA_DIR", "/dados")
	t.Setenv("USERS_FILE", "/etc/estoque/users.json")
	t.Setenv("SECTOR_FILE", "")
	t.Setenv("SESSION_EXPIRY_MIN", "30")
	t.Setenv("IO_TIMEOUT_SEC", "-2")

	cfg := LoadConfig()

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "/etc/estoque/users.json", cfg.UsersFile, "caminho absoluto é mantido")
	assert.Equal(t, filepath.Join("/dados", "setor.json"), cfg.SectorFile)
	assert.Equal(t, 30*time.Minute, cfg.SessionExpiry)
	assert.Equal(t, 5*time.Second, cfg.IOTimeout, "valor não positivo cai no padrão")
}

func TestWithDataDir(t *testing.T) {
	cfg := &Config{
		DataDir:       ".",
		UsersFile:     "users.json",
		RequestsFile:  "sub/requisicoes.json",
		WarehouseFile: "almoxarifado.json",
		SectorFile:    "setor.json",
		MovementsFile: "movimentacoes.json",
		SessionFile:   ".sessao",
	}

	moved := cfg.WithDataDir("/tmp/x")

	assert.Equal(t, "/tmp/x", moved.DataDir)
	assert.Equal(t, filepath.Join("/tmp/x", "requisicoes.json"), moved.RequestsFile)
	assert.Equal(t, filepath.Join("/tmp/x", ".sessao"), moved.SessionFile)
	assert.Equal(t, "sub/requisicoes.json", cfg.RequestsFile, "original intacto")
}
