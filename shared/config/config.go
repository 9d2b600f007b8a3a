package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Problem struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Config struct {
	Env                string
	ServiceName        string
	HTTPPort           int
	LogLevel           string
	ConfigPath         string
	RequestTimeoutMS   int
	RequestTimeout     time.Duration
	TotalRooms         int
	MaxTenantsPerRoom  int
	SeedDemoData       bool
	AdminEmail         string
	AdminPassword      string
	SessionSecret      string
	SessionTTLMinutes  int
	SessionTTL         time.Duration
	DatabaseURL        string
	DBMaxConns         int
	DBMinConns         int
	DBConnMaxIdleSec   int
	DBConnMaxLifeSec   int
	AuditArchiveOn     bool
	KafkaBrokers       []string
	KafkaClientID      string
	KafkaGroupID       string
	KafkaRetryMax      int
	KafkaWriteMS       int
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	ReportCacheTTLSec  int
	AsynqRedisAddr     string
	AsynqRedisPass     string
	AsynqRedisDB       int
	AsynqQueue         string
	AsynqConcurrency   int
	AsynqEnabled       bool
	InfluxURL          string
	InfluxToken        string
	InfluxOrg          string
	InfluxBucket       string
	InfluxTimeoutMS    int
	OccupancySampleSec int
	GenAIAPIURL        string
	GenAIAPIKey        string
	GenAIModel         string
	GenAITimeoutMS     int
	GenAIRetryMax      int
	GenAIEnabled       bool
	OtelEnabled        bool
	OtelEndpoint       string
	OtelInsecure       bool
	OtelSampleRatio    float64
}

func Load(serviceNameDefault string, httpPortDefault int) (Config, []Problem) {
	envRaw := strings.TrimSpace(os.Getenv("ENV"))
	cfg := Config{
		Env:                envRaw,
		ServiceName:        serviceNameDefault,
		HTTPPort:           httpPortDefault,
		LogLevel:           "info",
		ConfigPath:         strings.TrimSpace(os.Getenv("CONFIG_PATH")),
		RequestTimeoutMS:   30000,
		TotalRooms:         10,
		MaxTenantsPerRoom:  4,
		SeedDemoData:       false,
		AdminEmail:         "admin@dorm.com",
		AdminPassword:      "password123",
		SessionSecret:      "",
		SessionTTLMinutes:  720,
		DatabaseURL:        strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DBMaxConns:         10,
		DBMinConns:         1,
		DBConnMaxIdleSec:   300,
		DBConnMaxLifeSec:   1800,
		AuditArchiveOn:     false,
		KafkaBrokers:       nil,
		KafkaClientID:      "",
		KafkaGroupID:       "",
		KafkaRetryMax:      5,
		KafkaWriteMS:       5000,
		RedisAddr:          "",
		RedisPassword:      "",
		RedisDB:            0,
		ReportCacheTTLSec:  600,
		AsynqRedisAddr:     "",
		AsynqRedisPass:     "",
		AsynqRedisDB:       0,
		AsynqQueue:         "default",
		AsynqConcurrency:   10,
		AsynqEnabled:       false,
		InfluxURL:          "",
		InfluxToken:        "",
		InfluxOrg:          "",
		InfluxBucket:       "",
		InfluxTimeoutMS:    5000,
		OccupancySampleSec: 60,
		GenAIAPIURL:        "",
		GenAIAPIKey:        "",
		GenAIModel:         "gemini-2.5-flash",
		GenAITimeoutMS:     15000,
		GenAIRetryMax:      2,
		GenAIEnabled:       false,
		OtelEnabled:        false,
		OtelEndpoint:       "",
		OtelInsecure:       true,
		OtelSampleRatio:    1.0,
	}

	problems := make([]Problem, 0, 4)
	envProvided := envRaw != ""

	if repoRoot, ok := findRepoRoot(); ok && cfg.Env != "" && cfg.ConfigPath == "" {
		cfg.ConfigPath = filepath.Join(repoRoot, "configs", cfg.Env+".json")
	}

	if fileData, fileProblems, ok := loadConfigFile(cfg.ConfigPath, strings.TrimSpace(os.Getenv("CONFIG_PATH")) != ""); ok {
		problems = append(problems, fileProblems...)
		if fileEnv, ok := readStringKey(fileData, "ENV"); ok && strings.TrimSpace(fileEnv) != "" {
			envProvided = true
		}
		applyConfigMap(&cfg, fileData, &problems)
	} else {
		problems = append(problems, fileProblems...)
	}

	applyEnv(&cfg, &problems)

	if cfg.Env == "" {
		cfg.Env = "dev"
	}
	if !envProvided {
		problems = append(problems, Problem{Field: "ENV", Message: "ENV is required"})
	}
	if cfg.HTTPPort <= 0 || cfg.HTTPPort > 65535 {
		problems = append(problems, Problem{Field: "HTTP_PORT", Message: "HTTP_PORT must be 1-65535"})
		cfg.HTTPPort = httpPortDefault
	}
	if cfg.RequestTimeoutMS <= 0 {
		problems = append(problems, Problem{Field: "REQUEST_TIMEOUT_MS", Message: "REQUEST_TIMEOUT_MS must be > 0"})
		cfg.RequestTimeoutMS = 30000
	}
	cfg.RequestTimeout = time.Duration(cfg.RequestTimeoutMS) * time.Millisecond
	if cfg.TotalRooms <= 0 {
		problems = append(problems, Problem{Field: "TOTAL_ROOMS", Message: "TOTAL_ROOMS must be > 0"})
		cfg.TotalRooms = 10
	}
	if cfg.MaxTenantsPerRoom <= 0 {
		problems = append(problems, Problem{Field: "MAX_TENANTS_PER_ROOM", Message: "MAX_TENANTS_PER_ROOM must be > 0"})
		cfg.MaxTenantsPerRoom = 4
	}
	if strings.TrimSpace(cfg.AdminEmail) == "" {
		problems = append(problems, Problem{Field: "ADMIN_EMAIL", Message: "ADMIN_EMAIL must not be empty"})
		cfg.AdminEmail = "admin@dorm.com"
	}
	if cfg.AdminPassword == "" {
		problems = append(problems, Problem{Field: "ADMIN_PASSWORD", Message: "ADMIN_PASSWORD must not be empty"})
		cfg.AdminPassword = "password123"
	}
	if cfg.SessionTTLMinutes <= 0 {
		problems = append(problems, Problem{Field: "SESSION_TTL_MINUTES", Message: "SESSION_TTL_MINUTES must be > 0"})
		cfg.SessionTTLMinutes = 720
	}
	cfg.SessionTTL = time.Duration(cfg.SessionTTLMinutes) * time.Minute
	if cfg.DBMaxConns <= 0 {
		problems = append(problems, Problem{Field: "DB_MAX_CONNS", Message: "DB_MAX_CONNS must be > 0"})
		cfg.DBMaxConns = 10
	}
	if cfg.DBMinConns < 0 {
		problems = append(problems, Problem{Field: "DB_MIN_CONNS", Message: "DB_MIN_CONNS must be >= 0"})
		cfg.DBMinConns = 1
	}
	if cfg.DBMinConns > cfg.DBMaxConns {
		problems = append(problems, Problem{Field: "DB_MIN_CONNS", Message: "DB_MIN_CONNS must be <= DB_MAX_CONNS"})
		cfg.DBMinConns = cfg.DBMaxConns
	}
	if cfg.DBConnMaxIdleSec <= 0 {
		problems = append(problems, Problem{Field: "DB_CONN_MAX_IDLE_SECONDS", Message: "DB_CONN_MAX_IDLE_SECONDS must be > 0"})
		cfg.DBConnMaxIdleSec = 300
	}
	if cfg.DBConnMaxLifeSec <= 0 {
		problems = append(problems, Problem{Field: "DB_CONN_MAX_LIFETIME_SECONDS", Message: "DB_CONN_MAX_LIFETIME_SECONDS must be > 0"})
		cfg.DBConnMaxLifeSec = 1800
	}
	if cfg.KafkaRetryMax < 0 {
		problems = append(problems, Problem{Field: "KAFKA_RETRY_MAX", Message: "KAFKA_RETRY_MAX must be >= 0"})
		cfg.KafkaRetryMax = 5
	}
	if cfg.KafkaWriteMS <= 0 {
		problems = append(problems, Problem{Field: "KAFKA_WRITE_TIMEOUT_MS", Message: "KAFKA_WRITE_TIMEOUT_MS must be > 0"})
		cfg.KafkaWriteMS = 5000
	}
	if cfg.RedisDB < 0 {
		problems = append(problems, Problem{Field: "REDIS_DB", Message: "REDIS_DB must be >= 0"})
		cfg.RedisDB = 0
	}
	if cfg.ReportCacheTTLSec <= 0 {
		problems = append(problems, Problem{Field: "REPORT_CACHE_TTL_SECONDS", Message: "REPORT_CACHE_TTL_SECONDS must be > 0"})
		cfg.ReportCacheTTLSec = 600
	}
	if cfg.AsynqRedisDB < 0 {
		problems = append(problems, Problem{Field: "ASYNQ_REDIS_DB", Message: "ASYNQ_REDIS_DB must be >= 0"})
		cfg.AsynqRedisDB = 0
	}
	if cfg.AsynqConcurrency <= 0 {
		problems = append(problems, Problem{Field: "ASYNQ_CONCURRENCY", Message: "ASYNQ_CONCURRENCY must be > 0"})
		cfg.AsynqConcurrency = 10
	}
	if cfg.InfluxTimeoutMS <= 0 {
		problems = append(problems, Problem{Field: "INFLUX_TIMEOUT_MS", Message: "INFLUX_TIMEOUT_MS must be > 0"})
		cfg.InfluxTimeoutMS = 5000
	}
	if cfg.OccupancySampleSec <= 0 {
		problems = append(problems, Problem{Field: "OCCUPANCY_SAMPLE_SECONDS", Message: "OCCUPANCY_SAMPLE_SECONDS must be > 0"})
		cfg.OccupancySampleSec = 60
	}
	if cfg.GenAITimeoutMS <= 0 {
		problems = append(problems, Problem{Field: "GENAI_TIMEOUT_MS", Message: "GENAI_TIMEOUT_MS must be > 0"})
		cfg.GenAITimeoutMS = 15000
	}
	if cfg.GenAIRetryMax < 0 {
		problems = append(problems, Problem{Field: "GENAI_RETRY_MAX", Message: "GENAI_RETRY_MAX must be >= 0"})
		cfg.GenAIRetryMax = 2
	}
	if cfg.OtelSampleRatio < 0 || cfg.OtelSampleRatio > 1 {
		problems = append(problems, Problem{Field: "OTEL_SAMPLE_RATIO", Message: "OTEL_SAMPLE_RATIO must be 0-1"})
		cfg.OtelSampleRatio = 1.0
	}

	return cfg, problems
}

func findRepoRoot() (string, bool) {
	start, err := os.Getwd()
	if err != nil {
		return "", false
	}
	dir := start
	for i := 0; i < 8; i++ {
		candidate := filepath.Join(dir, "configs")
		if fi, err := os.Stat(candidate); err == nil && fi.IsDir() {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false
}

func loadConfigFile(path string, explicit bool) (map[string]any, []Problem, bool) {
	if strings.TrimSpace(path) == "" {
		return nil, nil, false
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if explicit && !errors.Is(err, os.ErrNotExist) {
			return nil, []Problem{{Field: "CONFIG_PATH", Message: fmt.Sprintf("failed to read config file: %v", err)}}, false
		}
		if explicit && errors.Is(err, os.ErrNotExist) {
			return nil, []Problem{{Field: "CONFIG_PATH", Message: "config file not found"}}, false
		}
		return nil, nil, false
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, []Problem{{Field: "CONFIG_PATH", Message: fmt.Sprintf("invalid json: %v", err)}}, false
	}
	return raw, nil, true
}

func applyEnv(cfg *Config, problems *[]Problem) {
	if v := strings.TrimSpace(os.Getenv("SERVICE_NAME")); v != "" {
		cfg.ServiceName = v
	}

	portRaw := strings.TrimSpace(os.Getenv("HTTP_PORT"))
	if portRaw == "" {
		portRaw = strings.TrimSpace(os.Getenv("PORT"))
	}
	if portRaw != "" {
		if p, err := strconv.Atoi(portRaw); err != nil || p <= 0 || p > 65535 {
			*problems = append(*problems, Problem{Field: "HTTP_PORT", Message: "HTTP_PORT must be 1-65535"})
		} else {
			cfg.HTTPPort = p
		}
	}

	if v := strings.TrimSpace(os.Getenv("LOG_LEVEL")); v != "" {
		cfg.LogLevel = v
	}

	setEnvInt(problems, "REQUEST_TIMEOUT_MS", &cfg.RequestTimeoutMS)
	setEnvInt(problems, "TOTAL_ROOMS", &cfg.TotalRooms)
	setEnvInt(problems, "MAX_TENANTS_PER_ROOM", &cfg.MaxTenantsPerRoom)
	setEnvBool(problems, "SEED_DEMO_DATA", &cfg.SeedDemoData)

	if v := strings.TrimSpace(os.Getenv("ADMIN_EMAIL")); v != "" {
		cfg.AdminEmail = v
	}
	if v := os.Getenv("ADMIN_PASSWORD"); v != "" {
		cfg.AdminPassword = v
	}
	if v := os.Getenv("SESSION_SECRET"); v != "" {
		cfg.SessionSecret = v
	}
	setEnvInt(problems, "SESSION_TTL_MINUTES", &cfg.SessionTTLMinutes)

	if v := strings.TrimSpace(os.Getenv("DATABASE_URL")); v != "" {
		cfg.DatabaseURL = v
	}
	setEnvInt(problems, "DB_MAX_CONNS", &cfg.DBMaxConns)
	setEnvInt(problems, "DB_MIN_CONNS", &cfg.DBMinConns)
	setEnvInt(problems, "DB_CONN_MAX_IDLE_SECONDS", &cfg.DBConnMaxIdleSec)
	setEnvInt(problems, "DB_CONN_MAX_LIFETIME_SECONDS", &cfg.DBConnMaxLifeSec)
	setEnvBool(problems, "AUDIT_ARCHIVE_ENABLED", &cfg.AuditArchiveOn)

	if v := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); v != "" {
		cfg.KafkaBrokers = parseCSV(v)
	}
	if v := strings.TrimSpace(os.Getenv("KAFKA_CLIENT_ID")); v != "" {
		cfg.KafkaClientID = v
	}
	if v := strings.TrimSpace(os.Getenv("KAFKA_CONSUMER_GROUP")); v != "" {
		cfg.KafkaGroupID = v
	}
	setEnvInt(problems, "KAFKA_RETRY_MAX", &cfg.KafkaRetryMax)
	setEnvInt(problems, "KAFKA_WRITE_TIMEOUT_MS", &cfg.KafkaWriteMS)

	if v := strings.TrimSpace(os.Getenv("REDIS_ADDR")); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	setEnvInt(problems, "REDIS_DB", &cfg.RedisDB)
	setEnvInt(problems, "REPORT_CACHE_TTL_SECONDS", &cfg.ReportCacheTTLSec)

	if v := strings.TrimSpace(os.Getenv("ASYNQ_REDIS_ADDR")); v != "" {
		cfg.AsynqRedisAddr = v
	}
	if v := os.Getenv("ASYNQ_REDIS_PASSWORD"); v != "" {
		cfg.AsynqRedisPass = v
	}
	setEnvInt(problems, "ASYNQ_REDIS_DB", &cfg.AsynqRedisDB)
	if v := strings.TrimSpace(os.Getenv("ASYNQ_QUEUE")); v != "" {
		cfg.AsynqQueue = v
	}
	setEnvInt(problems, "ASYNQ_CONCURRENCY", &cfg.AsynqConcurrency)
	setEnvBool(problems, "ASYNQ_ENABLED", &cfg.AsynqEnabled)

	if v := strings.TrimSpace(os.Getenv("INFLUX_URL")); v != "" {
		cfg.InfluxURL = v
	}
	if v := os.Getenv("INFLUX_TOKEN"); v != "" {
		cfg.InfluxToken = v
	}
	if v := strings.TrimSpace(os.Getenv("INFLUX_ORG")); v != "" {
		cfg.InfluxOrg = v
	}
	if v := strings.TrimSpace(os.Getenv("INFLUX_BUCKET")); v != "" {
		cfg.InfluxBucket = v
	}
	setEnvInt(problems, "INFLUX_TIMEOUT_MS", &cfg.InfluxTimeoutMS)
	setEnvInt(problems, "OCCUPANCY_SAMPLE_SECONDS", &cfg.OccupancySampleSec)

	if v := strings.TrimSpace(os.Getenv("GENAI_API_URL")); v != "" {
		cfg.GenAIAPIURL = v
	}
	if v := os.Getenv("GENAI_API_KEY"); v != "" {
		cfg.GenAIAPIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("GENAI_MODEL")); v != "" {
		cfg.GenAIModel = v
	}
	setEnvInt(problems, "GENAI_TIMEOUT_MS", &cfg.GenAITimeoutMS)
	setEnvInt(problems, "GENAI_RETRY_MAX", &cfg.GenAIRetryMax)
	setEnvBool(problems, "GENAI_ENABLED", &cfg.GenAIEnabled)

	setEnvBool(problems, "OTEL_ENABLED", &cfg.OtelEnabled)
	if v := strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")); v != "" {
		cfg.OtelEndpoint = v
	}
	setEnvBool(problems, "OTEL_EXPORTER_OTLP_INSECURE", &cfg.OtelInsecure)
	if v := strings.TrimSpace(os.Getenv("OTEL_SAMPLE_RATIO")); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err != nil {
			*problems = append(*problems, Problem{Field: "OTEL_SAMPLE_RATIO", Message: "OTEL_SAMPLE_RATIO must be a number"})
		} else {
			cfg.OtelSampleRatio = f
		}
	}
}

func setEnvInt(problems *[]Problem, key string, dst *int) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*problems = append(*problems, Problem{Field: key, Message: key + " must be an integer"})
		return
	}
	*dst = n
}

func setEnvBool(problems *[]Problem, key string, dst *bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	b, ok := asBool(v)
	if !ok {
		*problems = append(*problems, Problem{Field: key, Message: key + " must be a boolean"})
		return
	}
	*dst = b
}

func applyConfigMap(cfg *Config, raw map[string]any, problems *[]Problem) {
	for k, v := range raw {
		key := strings.ToUpper(strings.TrimSpace(k))
		switch key {
		case "ENV":
			if s, ok := v.(string); ok {
				cfg.Env = strings.TrimSpace(s)
			}
		case "SERVICE_NAME":
			setMapString(v, &cfg.ServiceName)
		case "HTTP_PORT":
			p, ok := asInt(v)
			if !ok || p <= 0 || p > 65535 {
				*problems = append(*problems, Problem{Field: "HTTP_PORT", Message: "HTTP_PORT must be 1-65535"})
			} else {
				cfg.HTTPPort = p
			}
		case "LOG_LEVEL":
			setMapString(v, &cfg.LogLevel)
		case "REQUEST_TIMEOUT_MS":
			setMapInt(v, key, &cfg.RequestTimeoutMS, problems)
		case "TOTAL_ROOMS":
			setMapInt(v, key, &cfg.TotalRooms, problems)
		case "MAX_TENANTS_PER_ROOM":
			setMapInt(v, key, &cfg.MaxTenantsPerRoom, problems)
		case "SEED_DEMO_DATA":
			setMapBool(v, key, &cfg.SeedDemoData, problems)
		case "ADMIN_EMAIL":
			setMapString(v, &cfg.AdminEmail)
		case "ADMIN_PASSWORD":
			if s, ok := v.(string); ok && s != "" {
				cfg.AdminPassword = s
			}
		case "SESSION_SECRET":
			if s, ok := v.(string); ok && s != "" {
				cfg.SessionSecret = s
			}
		case "SESSION_TTL_MINUTES":
			setMapInt(v, key, &cfg.SessionTTLMinutes, problems)
		case "DATABASE_URL":
			setMapString(v, &cfg.DatabaseURL)
		case "DB_MAX_CONNS":
			setMapInt(v, key, &cfg.DBMaxConns, problems)
		case "DB_MIN_CONNS":
			setMapInt(v, key, &cfg.DBMinConns, problems)
		case "DB_CONN_MAX_IDLE_SECONDS":
			setMapInt(v, key, &cfg.DBConnMaxIdleSec, problems)
		case "DB_CONN_MAX_LIFETIME_SECONDS":
			setMapInt(v, key, &cfg.DBConnMaxLifeSec, problems)
		case "AUDIT_ARCHIVE_ENABLED":
			setMapBool(v, key, &cfg.AuditArchiveOn, problems)
		case "KAFKA_BROKERS":
			if s, ok := v.(string); ok {
				cfg.KafkaBrokers = parseCSV(s)
			} else if arr, ok := v.([]any); ok {
				cfg.KafkaBrokers = parseAnyCSV(arr)
			}
		case "KAFKA_CLIENT_ID":
			setMapString(v, &cfg.KafkaClientID)
		case "KAFKA_CONSUMER_GROUP":
			setMapString(v, &cfg.KafkaGroupID)
		case "KAFKA_RETRY_MAX":
			setMapInt(v, key, &cfg.KafkaRetryMax, problems)
		case "KAFKA_WRITE_TIMEOUT_MS":
			setMapInt(v, key, &cfg.KafkaWriteMS, problems)
		case "REDIS_ADDR":
			setMapString(v, &cfg.RedisAddr)
		case "REDIS_PASSWORD":
			if s, ok := v.(string); ok {
				cfg.RedisPassword = s
			}
		case "REDIS_DB":
			setMapInt(v, key, &cfg.RedisDB, problems)
		case "REPORT_CACHE_TTL_SECONDS":
			setMapInt(v, key, &cfg.ReportCacheTTLSec, problems)
		case "ASYNQ_REDIS_ADDR":
			setMapString(v, &cfg.AsynqRedisAddr)
		case "ASYNQ_REDIS_PASSWORD":
			if s, ok := v.(string); ok {
				cfg.AsynqRedisPass = s
			}
		case "ASYNQ_REDIS_DB":
			setMapInt(v, key, &cfg.AsynqRedisDB, problems)
		case "ASYNQ_QUEUE":
			setMapString(v, &cfg.AsynqQueue)
		case "ASYNQ_CONCURRENCY":
			setMapInt(v, key, &cfg.AsynqConcurrency, problems)
		case "ASYNQ_ENABLED":
			setMapBool(v, key, &cfg.AsynqEnabled, problems)
		case "INFLUX_URL":
			setMapString(v, &cfg.InfluxURL)
		case "INFLUX_TOKEN":
			if s, ok := v.(string); ok {
				cfg.InfluxToken = s
			}
		case "INFLUX_ORG":
			setMapString(v, &cfg.InfluxOrg)
		case "INFLUX_BUCKET":
			setMapString(v, &cfg.InfluxBucket)
		case "INFLUX_TIMEOUT_MS":
			setMapInt(v, key, &cfg.InfluxTimeoutMS, problems)
		case "OCCUPANCY_SAMPLE_SECONDS":
			setMapInt(v, key, &cfg.OccupancySampleSec, problems)
		case "GENAI_API_URL":
			setMapString(v, &cfg.GenAIAPIURL)
		case "GENAI_API_KEY":
			if s, ok := v.(string); ok {
				cfg.GenAIAPIKey = s
			}
		case "GENAI_MODEL":
			setMapString(v, &cfg.GenAIModel)
		case "GENAI_TIMEOUT_MS":
			setMapInt(v, key, &cfg.GenAITimeoutMS, problems)
		case "GENAI_RETRY_MAX":
			setMapInt(v, key, &cfg.GenAIRetryMax, problems)
		case "GENAI_ENABLED":
			setMapBool(v, key, &cfg.GenAIEnabled, problems)
		case "OTEL_ENABLED":
			setMapBool(v, key, &cfg.OtelEnabled, problems)
		case "OTEL_EXPORTER_OTLP_ENDPOINT":
			setMapString(v, &cfg.OtelEndpoint)
		case "OTEL_EXPORTER_OTLP_INSECURE":
			setMapBool(v, key, &cfg.OtelInsecure, problems)
		case "OTEL_SAMPLE_RATIO":
			if f, ok := asFloat(v); ok {
				cfg.OtelSampleRatio = f
			} else {
				*problems = append(*problems, Problem{Field: "OTEL_SAMPLE_RATIO", Message: "OTEL_SAMPLE_RATIO must be a number"})
			}
		}
	}
}

func setMapString(v any, dst *string) {
	if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
		*dst = strings.TrimSpace(s)
	}
}

func setMapInt(v any, key string, dst *int, problems *[]Problem) {
	n, ok := asInt(v)
	if !ok {
		*problems = append(*problems, Problem{Field: key, Message: key + " must be an integer"})
		return
	}
	*dst = n
}

func setMapBool(v any, key string, dst *bool, problems *[]Problem) {
	if s, ok := v.(string); ok {
		if b, ok := asBool(s); ok {
			*dst = b
			return
		}
		*problems = append(*problems, Problem{Field: key, Message: key + " must be a boolean"})
		return
	}
	if b, ok := v.(bool); ok {
		*dst = b
		return
	}
	*problems = append(*problems, Problem{Field: key, Message: key + " must be a boolean"})
}

func readStringKey(raw map[string]any, key string) (string, bool) {
	for k, v := range raw {
		if strings.EqualFold(strings.TrimSpace(k), key) {
			s, ok := v.(string)
			return s, ok
		}
	}
	return "", false
}

func asInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	case json.Number:
		i, err := t.Int64()
		return int(i), err == nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(t))
		return i, err == nil
	default:
		return 0, false
	}
}

func asBool(v string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes", "y":
		return true, true
	case "false", "0", "no", "n":
		return false, true
	default:
		return false, false
	}
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func parseCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseAnyCSV(raw []any) []string {
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			s = strings.TrimSpace(s)
			if s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
