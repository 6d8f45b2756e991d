package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-ini/ini"
	"github.com/joho/godotenv"
)

type DB struct {
	DbDRIVER   string
	DbHOST     string
	DbPORT     string
	DbUSER     string
	DbPASSWORD string
	DbNAME     string
	DbSSLMODE  string
	DbPATH     string
}

type MinIO struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	BucketName string
	UseSSL     bool
	Region     string
	PublicURL  string
}

type Audio struct {
	MaxDuration time.Duration
	MaxBytes    int64
	ChunkSize   int
}

type Avatar struct {
	Width        int
	Interpolator string
}

type Log struct {
	Level string
	JSON  bool
}

type Config struct {
	ServerPort           int
	DB                   DB
	MinIO                MinIO
	Audio                Audio
	Avatar               Avatar
	Log                  Log
	ProfileSecretKey     string
	ProfileTokenDuration time.Duration
	ProfileCookieSecure  bool
	BcryptCost           int
	MaxUploadSize        int64

	// CORSOrigins may send credentialed requests; others get a wildcard without credentials.
	CORSOrigins []string
}

// env is the lookup used by the getters; LoadConfig points it at the INI overlay when present.
var env = os.LookupEnv

func getEnv(key string, defaultValue string) string {
	if value, exists := env(key); exists {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := env(key); ok {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, ok := env(key); ok && value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma separated value, dropping blank entries.
func getEnvAsList(key string) []string {
	value, ok := env(key)
	if !ok {
		return nil
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return duration
}

// parseSize accepts plain byte counts as well as "10MB", "512 KiB".
func parseSize(value string, fallback int64) int64 {
	size, err := humanize.ParseBytes(value)
	if err != nil {
		return fallback
	}
	return int64(size)
}

func LoadDB() DB {
	return DB{
		DbDRIVER:   getEnv("DB_DRIVER", "postgres"),
		DbHOST:     getEnv("DB_HOST", "localhost"),
		DbPORT:     getEnv("DB_PORT", "5432"),
		DbUSER:     getEnv("DB_USER", "postgres"),
		DbPASSWORD: getEnv("DB_PASSWORD", "password"),
		DbNAME:     getEnv("DB_NAME", "hikayat"),
		DbSSLMODE:  getEnv("DB_SSLMODE", "disable"),
		DbPATH:     getEnv("DB_PATH", "var/hikayat.db"),
	}
}

func LoadMinIO() MinIO {
	endpoint := getEnv("MINIO_ENDPOINT", "localhost:9000")
	useSSL := getEnvBool("MINIO_USE_SSL", false)

	scheme := "http://"
	if useSSL {
		scheme = "https://"
	}

	return MinIO{
		Endpoint:   endpoint,
		AccessKey:  getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		SecretKey:  getEnv("MINIO_SECRET_KEY", "minioadmin"),
		BucketName: getEnv("MINIO_BUCKET_NAME", "hikayat"),
		UseSSL:     useSSL,
		Region:     getEnv("MINIO_REGION", "us-east-1"),
		PublicURL:  getEnv("MINIO_PUBLIC_URL", scheme+endpoint),
	}
}

func LoadAudio() Audio {
	return Audio{
		MaxDuration: parseDuration(getEnv("AUDIO_MAX_DURATION", "10m"), 10*time.Minute),
		MaxBytes:    parseSize(getEnv("AUDIO_MAX_SIZE", "25MB"), 25*1000*1000),
		ChunkSize:   getEnvAsInt("AUDIO_CHUNK_SIZE", 32*1024),
	}
}

func LoadAvatar() Avatar {
	return Avatar{
		Width:        getEnvAsInt("AVATAR_WIDTH", 256),
		Interpolator: getEnv("AVATAR_INTERPOLATOR", "catmullrom"),
	}
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	if path, ok := os.LookupEnv("CONFIG_FILE"); ok && path != "" {
		overlay, err := loadINI(path)
		if err != nil {
			log.Printf("Warning: config file %s not loaded: %v", path, err)
		} else {
			env = overlay
		}
	}

	return &Config{
		ServerPort:           getEnvAsInt("SERVER_PORT", 8080),
		DB:                   LoadDB(),
		MinIO:                LoadMinIO(),
		Audio:                LoadAudio(),
		Avatar:               LoadAvatar(),
		Log:                  Log{Level: getEnv("LOG_LEVEL", "info"), JSON: getEnvBool("LOG_JSON", false)},
		ProfileSecretKey:     getEnv("PROFILE_SECRET_KEY", ""),
		ProfileTokenDuration: parseDuration(getEnv("PROFILE_TOKEN_DURATION", "0s"), 0),
		ProfileCookieSecure:  getEnvBool("PROFILE_COOKIE_SECURE", false),
		BcryptCost:           getEnvAsInt("BCRYPT_COST", 10),
		MaxUploadSize:        parseSize(getEnv("MAX_UPLOAD_SIZE", "10485760"), 10*1024*1024),
		CORSOrigins:          getEnvAsList("CORS_ALLOWED_ORIGINS"),
	}
}

// loadINI reads an INI file whose sections map to env prefixes:
// key "host" in section [db] is visible as DB_HOST. Real env variables win.
func loadINI(path string) (func(string) (string, bool), error) {
	file, err := ini.Load(path)
	if err != nil {
		return nil, err
	}

	values := make(map[string]string)
	for _, section := range file.Sections() {
		prefix := ""
		if section.Name() != ini.DefaultSection {
			prefix = section.Name() + "_"
		}
		for _, key := range section.Keys() {
			values[normalizeKey(prefix+key.Name())] = key.String()
		}
	}

	return func(key string) (string, bool) {
		if value, ok := os.LookupEnv(key); ok {
			return value, true
		}
		value, ok := values[key]
		return value, ok
	}, nil
}

var keyReplacer = strings.NewReplacer("-", "_", ".", "_")

func normalizeKey(key string) string {
	return keyReplacer.Replace(strings.ToUpper(key))
}
