package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/hyperledger/fabric-chaincode-go/shim"
)

type Config struct {
	Port          string
	FabricConfig  string
	ChannelName   string
	ChaincodeName string
	MSP           string
	CertPath      string
	KeyPath       string
	WalletPath    string
	JWTSecret     string
	LogLevel      string
	LogFormat     string
	MigrationsDir string
	IndexEvents   bool
	DB            DBConfig
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string

	// ConnectAttempts bounds the pings made while waiting for the database.
	ConnectAttempts int
}

// ChaincodeConfig drives the chaincode process. An empty ServerAddress means the
// peer launches the chaincode; otherwise it runs as an external service.
type ChaincodeConfig struct {
	ServerAddress string
	ChaincodeID   string
	TLSDisabled   bool
	TLSKeyPath    string
	TLSCertPath   string
	ClientCAPath  string
	LogLevel      string
	LogFormat     string
}

func LoadConfig() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		FabricConfig:  getEnv("FABRIC_CONFIG", "connection-profile.yaml"),
		ChannelName:   getEnv("CHANNEL_NAME", "mychannel"),
		ChaincodeName: getEnv("CHAINCODE_NAME", "asset-management"),
		MSP:           getEnv("MSP_ID", "Org1MSP"),
		CertPath:      getEnv("CERT_PATH", ""),
		KeyPath:       getEnv("KEY_PATH", ""),
		WalletPath:    getEnv("WALLET_PATH", "wallet"),
		JWTSecret:     getEnv("JWT_SECRET", "super-secret-key-change-me"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "json"),
		MigrationsDir: getEnv("MIGRATIONS_DIR", "backend/migrations/asset"),
		IndexEvents:   GetEnvBool("EVENT_INDEXER_ENABLED", true),
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Name:     getEnv("DB_NAME", "assets"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),

			ConnectAttempts: GetEnvInt("DB_CONNECT_ATTEMPTS", 5),
		},
	}
}

func LoadChaincodeConfig() *ChaincodeConfig {
	return &ChaincodeConfig{
		ServerAddress: getEnv("CHAINCODE_SERVER_ADDRESS", ""),
		ChaincodeID:   getEnv("CHAINCODE_ID", ""),
		TLSDisabled:   GetEnvBool("CHAINCODE_TLS_DISABLED", true),
		TLSKeyPath:    getEnv("CHAINCODE_TLS_KEY", ""),
		TLSCertPath:   getEnv("CHAINCODE_TLS_CERT", ""),
		ClientCAPath:  getEnv("CHAINCODE_CLIENT_CA_CERT", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "json"),
	}
}

// TLSProperties reads the key material referenced by the config.
func (c *ChaincodeConfig) TLSProperties() (shim.TLSProperties, error) {
	if c.TLSDisabled {
		return shim.TLSProperties{Disabled: true}, nil
	}

	key, err := os.ReadFile(filepath.Clean(c.TLSKeyPath))
	if err != nil {
		return shim.TLSProperties{}, fmt.Errorf("failed to read TLS key: %w", err)
	}
	cert, err := os.ReadFile(filepath.Clean(c.TLSCertPath))
	if err != nil {
		return shim.TLSProperties{}, fmt.Errorf("failed to read TLS cert: %w", err)
	}

	props := shim.TLSProperties{Key: key, Cert: cert}
	if c.ClientCAPath != "" {
		ca, err := os.ReadFile(filepath.Clean(c.ClientCAPath))
		if err != nil {
			return shim.TLSProperties{}, fmt.Errorf("failed to read client CA cert: %w", err)
		}
		props.ClientCACerts = ca
	}
	return props, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func GetEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		i, err := strconv.Atoi(value)
		if err == nil {
			return i
		}
	}
	return fallback
}

func GetEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(value)
		if err == nil {
			return b
		}
	}
	return fallback
}
