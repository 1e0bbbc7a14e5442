package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	"github.com/maynagashev/booksearch/internal/auth"
	"github.com/maynagashev/booksearch/internal/services"
	"github.com/maynagashev/booksearch/models"
)

// UserHandler обрабатывает REST-запросы к пользователям и их спискам книг.
// Логика операций полностью делегируется тем же сервисам, что и в GraphQL.
type UserHandler struct {
	authService services.AuthService
	bookService services.BookService
}

// NewUserHandler создает новый экземпляр UserHandler.
func NewUserHandler(as services.AuthService, bs services.BookService) *UserHandler {
	return &UserHandler{authService: as, bookService: bs}
}

// Routes монтирует маршруты обработчика.
func (h *UserHandler) Routes(r chi.Router) {
	r.Post("/", h.Register)
	r.Put("/", h.SaveBook)
	r.Post("/login", h.Login)
	r.Get("/me", h.GetSingleUser)
	r.Delete("/books/{bookId}", h.DeleteBook)
}

// Register обрабатывает запрос на регистрацию нового пользователя.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	// Декодируем JSON из тела запроса
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[UserHandler] Ошибка декодирования запроса регистрации: %v", err)
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{
			Message: "Invalid request body.", Code: services.CodeBadUserInput,
		})
		return
	}

	log.Printf("[UserHandler] Попытка регистрации пользователя: %s", req.Username)

	payload, err := h.authService.CreateUser(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, payload)
}

// Login обрабатывает запрос на вход пользователя.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[UserHandler] Ошибка декодирования запроса входа: %v", err)
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{
			Message: "Invalid request body.", Code: services.CodeBadUserInput,
		})
		return
	}

	payload, err := h.authService.Login(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, payload)
}

// GetSingleUser возвращает пользователя по параметрам id/username или вызывающего.
func (h *UserHandler) GetSingleUser(w http.ResponseWriter, r *http.Request) {
	caller := auth.IdentityFromContext(r.Context())
	query := r.URL.Query()

	user, err := h.bookService.GetSingleUser(r.Context(), caller, query.Get("id"), query.Get("username"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// saveBookRequest допускает устаревшее поле author.
type saveBookRequest struct {
	models.BookInput
	Author string `json:"author"`
}

// SaveBook добавляет книгу в список вызывающего.
func (h *UserHandler) SaveBook(w http.ResponseWriter, r *http.Request) {
	caller := auth.IdentityFromContext(r.Context())

	var req saveBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[UserHandler] Ошибка декодирования книги: %v", err)
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{
			Message: "Invalid request body.", Code: services.CodeBadUserInput,
		})
		return
	}

	in := req.BookInput
	if req.Author != "" && !slices.Contains(in.Authors, req.Author) {
		in.Authors = append(in.Authors, req.Author)
	}

	user, err := h.bookService.SaveBook(r.Context(), caller, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// DeleteBook удаляет книгу из списка вызывающего.
func (h *UserHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	caller := auth.IdentityFromContext(r.Context())

	user, err := h.bookService.DeleteBook(r.Context(), caller, chi.URLParam(r, "bookId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// writeServiceError переводит ошибку сервиса в HTTP-статус и JSON-тело.
func writeServiceError(w http.ResponseWriter, err error) {
	var svcErr *services.Error
	if !errors.As(err, &svcErr) {
		log.Printf("[UserHandler] Непредвиденная ошибка: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Message: services.MsgInternal, Code: services.CodeInternal,
		})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrAuth):
		status = http.StatusUnauthorized
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	}

	writeJSON(w, status, models.ErrorResponse{Message: svcErr.Error(), Code: svcErr.Code()})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		// Клиент уже получил статус, сложно что-то изменить
		log.Printf("[UserHandler] Ошибка кодирования ответа: %v", err)
	}
}
