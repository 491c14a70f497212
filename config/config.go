package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Nomes padrão dos arquivos de dados.
const (
	DefaultUsersFile     = "users.json"
	DefaultRequestsFile  = "requisicoes.json"
	DefaultWarehouseFile = "almoxarifado.json"
	DefaultSectorFile    = "setor.json"
	DefaultMovementsFile = "movimentacoes.json"
	DefaultSessionFile   = ".sessao"
)

// Config armazena todas as configurações da aplicação.
type Config struct {
	// Geral
	Environment string
	LogLevel    string

	// Arquivos de dados (caminhos completos, já resolvidos a partir de DataDir)
	DataDir       string
	UsersFile     string
	RequestsFile  string
	WarehouseFile string
	SectorFile    string
	MovementsFile string
	IOTimeout     time.Duration

	// Sessão (JWT)
	JWTSecretKey  string
	SessionExpiry time.Duration
	SessionFile   string
}

// LoadConfig carrega as configurações a partir das variáveis de ambiente.
// O .env, se existir, já deve ter sido carregado por quem chama (godotenv).
func LoadConfig() *Config {
	dataDir := getEnv("ESTOQUE_DATA_DIR", ".")

	cfg := &Config{
		// 1. Geral
		Environment: getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "warn"),

		// 2. Arquivos
		DataDir:       dataDir,
		UsersFile:     dataPath(dataDir, getEnv("USERS_FILE", DefaultUsersFile)),
		RequestsFile:  dataPath(dataDir, getEnv("REQUESTS_FILE", DefaultRequestsFile)),
		WarehouseFile: dataPath(dataDir, getEnv("WAREHOUSE_FILE", DefaultWarehouseFile)),
		SectorFile:    dataPath(dataDir, getEnv("SECTOR_FILE", DefaultSectorFile)),
		MovementsFile: dataPath(dataDir, getEnv("MOVEMENTS_FILE", DefaultMovementsFile)),
		IOTimeout:     getDurationEnv("IO_TIMEOUT_SEC", 5) * time.Second, // 5s padrão

		// 3. Sessão (JWT)
		// mustGetEnv garante que a aplicação não inicie sem a chave de assinatura
		JWTSecretKey:  mustGetEnv("JWT_SECRET_KEY"),
		SessionExpiry: getDurationEnv("SESSION_EXPIRY_MIN", 480) * time.Minute, // 8h padrão
		SessionFile:   dataPath(dataDir, getEnv("SESSION_FILE", DefaultSessionFile)),
	}

	return cfg
}

// IsProduction indica se os logs devem sair em JSON.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// WithDataDir retorna uma cópia com todos os arquivos relocados para dir,
// mantendo apenas o nome de cada arquivo. Usado pela ferramenta de migração (-dir).
func (c *Config) WithDataDir(dir string) *Config {
	out := *c
	out.DataDir = dir
	out.UsersFile = filepath.Join(dir, filepath.Base(c.UsersFile))
	out.RequestsFile = filepath.Join(dir, filepath.Base(c.RequestsFile))
	out.WarehouseFile = filepath.Join(dir, filepath.Base(c.WarehouseFile))
	out.SectorFile = filepath.Join(dir, filepath.Base(c.SectorFile))
	out.MovementsFile = filepath.Join(dir, filepath.Base(c.MovementsFile))
	out.SessionFile = filepath.Join(dir, filepath.Base(c.SessionFile))
	return &out
}

// Funções Helpers (Auxiliares)

// dataPath resolve nomes relativos dentro do diretório de dados; caminhos absolutos são mantidos.
func dataPath(dir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}

// getEnv lê a variável de ambiente ou retorna um valor padrão.
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

// mustGetEnv lê a variável de ambiente, fatal se não estiver presente.
func mustGetEnv(key string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	log.Fatalf("❌ Erro de Configuração: A variável de ambiente %s deve ser definida.", key)
	return ""
}

// getDurationEnv lê uma variável de ambiente numérica e retorna-a como time.Duration.
func getDurationEnv(key string, defaultValue int) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return time.Duration(defaultValue)
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil || value <= 0 {
		log.Printf("⚠️ Aviso: Valor de %s ('%s') não é um inteiro positivo. Usando padrão (%d).", key, valueStr, defaultValue)
		return time.Duration(defaultValue)
	}
	return time.Duration(value)
}
