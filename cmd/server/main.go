package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/maynagashev/booksearch/internal/auth"
	"github.com/maynagashev/booksearch/internal/catalog"
	"github.com/maynagashev/booksearch/internal/graph"
	"github.com/maynagashev/booksearch/internal/handlers"
	appmiddleware "github.com/maynagashev/booksearch/internal/middleware"
	"github.com/maynagashev/booksearch/internal/repository"
	"github.com/maynagashev/booksearch/internal/services"
	"github.com/rs/cors"
)

const (
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 10 * time.Second
	defaultIdleTimeout     = 30 * time.Second
	defaultShutdownTimeout = 10 * time.Second
)

// Точки подмены для тестов.
var (
	newPostgresDB  = repository.NewPostgresDB
	newMongoClient = repository.NewMongoClient
	runMigrations  = repository.RunMigrations
)

// Структура для хранения инициализированных зависимостей.
type dependencies struct {
	userRepo       repository.UserRepository
	issuer         *auth.TokenIssuer
	graphqlHandler http.Handler
	userHandler    *handlers.UserHandler
	closers        []func() error // Освобождение ресурсов хранилища
}

// close освобождает ресурсы в обратном порядке.
func (d *dependencies) close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			log.Printf("Ошибка закрытия соединения с хранилищем: %v", err)
		}
	}
}

// main - точка входа. Вызывает run и обрабатывает ошибку.
func main() {
	if err := run(); err != nil {
		log.Printf("Ошибка выполнения сервера: %v", err)
		os.Exit(1)
	}
}

// run содержит основную логику запуска сервера и возвращает ошибку.
func run() error {
	log.Println("Запуск сервера поиска книг...")

	loadDotEnv()
	cfg, err := parseFlags()
	if err != nil {
		return fmt.Errorf("ошибка конфигурации: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Инициализация зависимостей
	deps, err := setupDependencies(ctx, cfg)
	if err != nil {
		return fmt.Errorf("ошибка инициализации зависимостей: %w", err)
	}
	defer deps.close()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      setupRouter(cfg, deps),
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		IdleTimeout:  defaultIdleTimeout,
	}

	return serve(ctx, server, cfg)
}

// serve запускает сервер и останавливает его при отмене контекста.
func serve(ctx context.Context, server *http.Server, cfg *config) error {
	errCh := make(chan error, 1)
	go func() {
		var err error
		if cfg.TLSEnabled() {
			log.Printf("Запуск HTTPS-сервера на порту %s...", cfg.Port)
			log.Printf("Используется сертификат: %s", cfg.CertFile)
			err = server.ListenAndServeTLS(cfg.CertFile, cfg.KeyFile)
		} else {
			log.Printf("Запуск HTTP-сервера на порту %s...", cfg.Port)
			err = server.ListenAndServe()
		}
		errCh <- err
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("ошибка запуска сервера: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Println("Получен сигнал завершения, останавливаем сервер...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("ошибка остановки сервера: %w", err)
	}
	log.Println("Сервер остановлен")
	return nil
}

// setupDependencies инициализирует и возвращает все необходимые зависимости сервера.
func setupDependencies(ctx context.Context, cfg *config) (*dependencies, error) {
	deps := &dependencies{}

	// 1. Хранилище пользователей
	if err := setupStorage(ctx, cfg, deps); err != nil {
		deps.close()
		return nil, err
	}

	// 2. Токены и пароли
	issuer, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL, cfg.JWTIssuer)
	if err != nil {
		deps.close()
		return nil, fmt.Errorf("ошибка инициализации токенов: %w", err)
	}
	deps.issuer = issuer
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)

	// 3. Каталог книг
	searcher, err := catalog.NewGoogleBooks(ctx, catalog.Config{
		APIKey:     cfg.GoogleBooksAPIKey,
		MaxResults: cfg.SearchMaxResults,
	})
	if err != nil {
		deps.close()
		return nil, fmt.Errorf("ошибка инициализации каталога книг: %w", err)
	}

	// 4. Сервисы
	authService := services.NewAuthService(deps.userRepo, hasher, issuer)
	bookService := services.NewBookService(deps.userRepo, searcher)

	// 5. Обработчики
	schema, err := graph.NewSchema(authService, bookService)
	if err != nil {
		deps.close()
		return nil, fmt.Errorf("ошибка построения GraphQL-схемы: %w", err)
	}
	deps.graphqlHandler = handlers.NewGraphQLHandler(&schema, cfg.GraphQLPlayground)
	deps.userHandler = handlers.NewUserHandler(authService, bookService)

	return deps, nil
}

// setupStorage подключает выбранное хранилище пользователей.
func setupStorage(ctx context.Context, cfg *config, deps *dependencies) error {
	switch cfg.Storage {
	case storagePostgres:
		db, err := newPostgresDB(cfg.DatabaseDSN)
		if err != nil {
			return fmt.Errorf("ошибка инициализации БД: %w", err)
		}
		deps.closers = append(deps.closers, db.Close)
		log.Println("Соединение с PostgreSQL успешно установлено.")

		if err = runMigrations(ctx, db.DB); err != nil {
			return err
		}
		deps.userRepo = repository.NewPostgresUserRepository(db)

	case storageMongo:
		client, err := newMongoClient(ctx, cfg.MongoURI)
		if err != nil {
			return fmt.Errorf("ошибка инициализации MongoDB: %w", err)
		}
		deps.closers = append(deps.closers, func() error {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
			defer cancel()
			return client.Disconnect(disconnectCtx)
		})
		log.Println("Соединение с MongoDB успешно установлено.")

		repo := repository.NewMongoUserRepository(
			client.Database(cfg.MongoDatabase).Collection(repository.UsersCollection))
		if err = repo.EnsureIndexes(ctx); err != nil {
			return err
		}
		deps.userRepo = repo

	case storageMemory:
		log.Println("Используется хранилище в памяти, данные не сохраняются между запусками.")
		deps.userRepo = repository.NewMemoryUserRepository()

	default:
		return fmt.Errorf("неизвестное хранилище: %s", cfg.Storage)
	}
	return nil
}

// setupRouter настраивает и возвращает роутер chi.
func setupRouter(cfg *config, deps *dependencies) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler)
	// Идентичность определяется для всех маршрутов, отказ решают сами операции
	r.Use(appmiddleware.Identify(deps.issuer))

	// --- Маршруты --- //
	r.Get("/ping", handlers.Ping)
	r.Handle("/graphql", deps.graphqlHandler)
	r.Route("/api/users", deps.userHandler.Routes)

	return r
}
