package storage

import "os"

// LedgerMode selects the revenue ledger backend
type LedgerMode string

const (
	LedgerModeSimulated   LedgerMode = "simulated"
	LedgerModeDynamoLocal LedgerMode = "dynamo-local"
	LedgerModeDynamoAWS   LedgerMode = "dynamo-aws"
	LedgerModePostgres    LedgerMode = "postgres"
	LedgerModeNone        LedgerMode = "none"
)

// ParseLedgerMode falls back to simulated for unknown values
func ParseLedgerMode(s string) LedgerMode {
	switch m := LedgerMode(s); m {
	case LedgerModeDynamoLocal, LedgerModeDynamoAWS, LedgerModePostgres, LedgerModeNone:
		return m
	default:
		return LedgerModeSimulated
	}
}

// DynamoConfig holds DynamoDB configuration
type DynamoConfig struct {
	Local        bool
	Endpoint     string // for local mode
	Region       string
	RevenueTable string
}

// LoadDynamoConfig loads DynamoDB config from environment
func LoadDynamoConfig(mode LedgerMode) DynamoConfig {
	return DynamoConfig{
		Local:        mode == LedgerModeDynamoLocal,
		Endpoint:     getEnv("DYNAMO_ENDPOINT", "http://localhost:8000"),
		Region:       getEnv("DYNAMO_REGION", "eu-central-1"),
		RevenueTable: getEnv("DYNAMO_REVENUE_TABLE", "fleetpulse-driver-daily-revenue"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
