package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/maynagashev/booksearch/internal/auth"
	"github.com/maynagashev/booksearch/internal/catalog"
)

// Поддерживаемые хранилища пользователей.
const (
	storageMongo    = "mongo"
	storagePostgres = "postgres"
	storageMemory   = "memory"
)

const (
	defaultServerPort    = "3001"
	defaultStorage       = storageMongo
	defaultMongoURI      = "mongodb://localhost:27017"
	defaultMongoDatabase = "googlebooks"
	defaultCORSOrigins   = "*"

	// Переменные окружения.
	envServerPort         = "PORT"
	envTLSCertFile        = "TLS_CERT_FILE"
	envTLSKeyFile         = "TLS_KEY_FILE"
	envStorage            = "STORAGE"
	envDatabaseDSN        = "DATABASE_DSN"
	envMongoURI           = "MONGODB_URI"
	envMongoDatabase      = "MONGODB_DATABASE"
	envJWTSecret          = "JWT_SECRET" //nolint:gosec // Это имя переменной окружения, а не секрет
	envJWTTTL             = "JWT_TTL"
	envJWTIssuer          = "JWT_ISSUER"
	envBcryptCost         = "BCRYPT_COST"
	envGoogleBooksAPIKey  = "GOOGLE_BOOKS_API_KEY"
	envSearchMaxResults   = "SEARCH_MAX_RESULTS"
	envCORSAllowedOrigins = "CORS_ALLOWED_ORIGINS"
	envGraphQLPlayground  = "GRAPHQL_PLAYGROUND"
	envDotEnvFile         = "ENV_FILE"
	defaultDotEnvFile     = ".env"
)

// config хранит конфигурацию сервера.
type config struct {
	Port     string
	CertFile string
	KeyFile  string

	Storage       string
	DatabaseDSN   string
	MongoURI      string
	MongoDatabase string

	JWTSecret  string
	JWTTTL     time.Duration
	JWTIssuer  string
	BcryptCost int

	GoogleBooksAPIKey string
	SearchMaxResults  int64

	CORSAllowedOrigins []string
	GraphQLPlayground  bool
}

// TLSEnabled сообщает, заданы ли сертификат и ключ.
func (c *config) TLSEnabled() bool {
	return c.CertFile != "" && c.KeyFile != ""
}

// loadDotEnv подгружает переменные из .env, если файл существует.
// Уже установленные переменные окружения не перезаписываются.
func loadDotEnv() {
	path := defaultDotEnvFile
	if value, ok := os.LookupEnv(envDotEnvFile); ok {
		path = value
	}
	if err := godotenv.Load(path); err != nil {
		log.Printf("Файл %s не загружен, используются переменные окружения: %v", path, err)
	}
}

// parseFlags разбирает флаги и переменные окружения, возвращает config или ошибку.
// Приоритет: флаг, затем переменная окружения, затем значение по умолчанию.
func parseFlags() (*config, error) {
	var (
		port, certFile, keyFile         string
		storage, dsn, mongoURI, mongoDB string
		jwtSecret, jwtTTL, jwtIssuer    string
		bcryptCost, apiKey, maxResults  string
		corsOrigins, playground         string
	)

	// Определяем флаги
	flag.StringVar(&port, "port", "",
		fmt.Sprintf("Порт HTTP(S)-сервера (env: %s, default: %s)", envServerPort, defaultServerPort))
	flag.StringVar(&certFile, "cert-file", "",
		fmt.Sprintf("Путь к файлу TLS-сертификата, без него сервер работает по HTTP (env: %s)", envTLSCertFile))
	flag.StringVar(&keyFile, "key-file", "",
		fmt.Sprintf("Путь к файлу TLS-ключа (env: %s)", envTLSKeyFile))
	flag.StringVar(&storage, "storage", "",
		fmt.Sprintf("Хранилище пользователей: mongo, postgres или memory (env: %s, default: %s)",
			envStorage, defaultStorage))
	flag.StringVar(&dsn, "database-dsn", "",
		fmt.Sprintf("Строка подключения к PostgreSQL (env: %s)", envDatabaseDSN))
	flag.StringVar(&mongoURI, "mongo-uri", "",
		fmt.Sprintf("URI подключения к MongoDB (env: %s, default: %s)", envMongoURI, defaultMongoURI))
	flag.StringVar(&mongoDB, "mongo-database", "",
		fmt.Sprintf("Имя базы MongoDB (env: %s, default: %s)", envMongoDatabase, defaultMongoDatabase))
	flag.StringVar(&jwtSecret, "jwt-secret", "",
		fmt.Sprintf("Секрет для подписи JWT (env: %s)", envJWTSecret))
	flag.StringVar(&jwtTTL, "jwt-ttl", "",
		fmt.Sprintf("Время жизни токена (env: %s, default: %s)", envJWTTTL, auth.DefaultTokenTTL))
	flag.StringVar(&jwtIssuer, "jwt-issuer", "",
		fmt.Sprintf("Издатель токена (env: %s, default: %s)", envJWTIssuer, auth.DefaultTokenIssuer))
	flag.StringVar(&bcryptCost, "bcrypt-cost", "",
		fmt.Sprintf("Стоимость bcrypt (env: %s, default: %d)", envBcryptCost, auth.DefaultPasswordCost))
	flag.StringVar(&apiKey, "google-books-api-key", "",
		fmt.Sprintf("Ключ Google Books API (env: %s)", envGoogleBooksAPIKey))
	flag.StringVar(&maxResults, "search-max-results", "",
		fmt.Sprintf("Количество результатов поиска (env: %s, default: %d)",
			envSearchMaxResults, catalog.DefaultMaxResults))
	flag.StringVar(&corsOrigins, "cors-origins", "",
		fmt.Sprintf("Разрешенные источники CORS через запятую (env: %s, default: %s)",
			envCORSAllowedOrigins, defaultCORSOrigins))
	flag.StringVar(&playground, "graphql-playground", "",
		fmt.Sprintf("Включить GraphQL Playground (env: %s, default: false)", envGraphQLPlayground))

	// Парсим флаги
	flag.Parse()

	cfg := &config{
		Port:              setting(port, envServerPort, defaultServerPort),
		CertFile:          setting(certFile, envTLSCertFile, ""),
		KeyFile:           setting(keyFile, envTLSKeyFile, ""),
		Storage:           strings.ToLower(setting(storage, envStorage, defaultStorage)),
		DatabaseDSN:       setting(dsn, envDatabaseDSN, ""),
		MongoURI:          setting(mongoURI, envMongoURI, defaultMongoURI),
		MongoDatabase:     setting(mongoDB, envMongoDatabase, defaultMongoDatabase),
		JWTSecret:         setting(jwtSecret, envJWTSecret, ""),
		JWTIssuer:         setting(jwtIssuer, envJWTIssuer, auth.DefaultTokenIssuer),
		GoogleBooksAPIKey: setting(apiKey, envGoogleBooksAPIKey, ""),
	}

	var err error
	if cfg.JWTTTL, err = time.ParseDuration(setting(jwtTTL, envJWTTTL, auth.DefaultTokenTTL.String())); err != nil {
		return nil, fmt.Errorf("некорректное время жизни токена: %w", err)
	}
	if cfg.BcryptCost, err = strconv.Atoi(
		setting(bcryptCost, envBcryptCost, strconv.Itoa(auth.DefaultPasswordCost))); err != nil {
		return nil, fmt.Errorf("некорректная стоимость bcrypt: %w", err)
	}
	if cfg.SearchMaxResults, err = strconv.ParseInt(
		setting(maxResults, envSearchMaxResults, strconv.Itoa(catalog.DefaultMaxResults)), 10, 64); err != nil {
		return nil, fmt.Errorf("некорректное количество результатов поиска: %w", err)
	}
	if cfg.GraphQLPlayground, err = strconv.ParseBool(setting(playground, envGraphQLPlayground, "false")); err != nil {
		return nil, fmt.Errorf("некорректное значение GraphQL Playground: %w", err)
	}
	cfg.CORSAllowedOrigins = splitList(setting(corsOrigins, envCORSAllowedOrigins, defaultCORSOrigins))

	if err = cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate проверяет обязательные параметры.
func (c *config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("не указан секрет JWT (--jwt-secret или " + envJWTSecret + ")")
	}
	if (c.CertFile == "") != (c.KeyFile == "") {
		return errors.New("для TLS нужно указать и сертификат, и ключ (" + envTLSCertFile + ", " + envTLSKeyFile + ")")
	}

	switch c.Storage {
	case storageMongo:
		if c.MongoURI == "" {
			return errors.New("не указан URI MongoDB (--mongo-uri или " + envMongoURI + ")")
		}
	case storagePostgres:
		if c.DatabaseDSN == "" {
			return errors.New("не указана строка подключения к БД (--database-dsn или " + envDatabaseDSN + ")")
		}
	case storageMemory:
	default:
		return fmt.Errorf("неизвестное хранилище %q: допустимы mongo, postgres, memory", c.Storage)
	}
	return nil
}

// setting возвращает значение флага, если он задан, иначе переменную окружения или значение по умолчанию.
func setting(flagValue, envKey, fallback string) string {
	if flagValue != "" {
		return flagValue
	}
	if value, ok := os.LookupEnv(envKey); ok {
		return value
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
