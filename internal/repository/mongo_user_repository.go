package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"time"

	"github.com/maynagashev/booksearch/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UsersCollection имя коллекции пользователей.
const UsersCollection = "users"

// Имена уникальных индексов коллекции пользователей.
const (
	usernameIndex = "username_1"
	emailIndex    = "email_1"
)

// Имя нарушенного индекса в тексте ошибки E11000.
var dupIndexPattern = regexp.MustCompile(`index:\s+(\S+)`)

// mongoUser документ пользователя в MongoDB.
type mongoUser struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Username   string             `bson:"username"`
	Email      string             `bson:"email"`
	Password   string             `bson:"password"`
	SavedBooks []models.SavedBook `bson:"savedBooks"`
	CreatedAt  time.Time          `bson:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt"`
}

func (d *mongoUser) toModel() *models.User {
	books := models.SavedBooks(d.SavedBooks)
	if books == nil {
		books = models.SavedBooks{}
	}
	return &models.User{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.Password,
		SavedBooks:   books,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// MongoUserRepository реализует UserRepository поверх коллекции MongoDB.
// Атомарность операций со списком книг обеспечивается одиночными findAndModify.
type MongoUserRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

var _ UserRepository = (*MongoUserRepository)(nil)

// NewMongoUserRepository создает репозиторий пользователей для MongoDB.
func NewMongoUserRepository(coll *mongo.Collection) *MongoUserRepository {
	return &MongoUserRepository{coll: coll, now: time.Now}
}

// EnsureIndexes создает уникальные индексы по username и email.
func (r *MongoUserRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetName(usernameIndex).SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetName(emailIndex).SetUnique(true)},
	}
	names, err := r.coll.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("ошибка создания индексов: %w", err)
	}
	log.Printf("[Repo] Индексы коллекции %s готовы: %v", r.coll.Name(), names)
	return nil
}

// CreateUser вставляет новый документ пользователя.
func (r *MongoUserRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	now := r.now().UTC()
	doc := mongoUser{
		ID:         primitive.NewObjectID(),
		Username:   user.Username,
		Email:      user.Email,
		Password:   user.PasswordHash,
		SavedBooks: []models.SavedBook(user.SavedBooks),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if doc.SavedBooks == nil {
		doc.SavedBooks = []models.SavedBook{}
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			if duplicateIndex(err) == emailIndex {
				log.Printf("[Repo] Ошибка создания пользователя: email '%s' уже занят", user.Email)
				return nil, ErrEmailTaken
			}
			log.Printf("[Repo] Ошибка создания пользователя: имя пользователя '%s' уже занято", user.Username)
			return nil, ErrUsernameTaken
		}
		log.Printf("[Repo] Непредвиденная ошибка при создании пользователя '%s': %v", user.Username, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на создание пользователя: %w", err)
	}

	log.Printf("[Repo] Пользователь '%s' успешно создан с ID %s", doc.Username, doc.ID.Hex())
	return doc.toModel(), nil
}

// GetUserByID находит пользователя по ObjectID в hex-представлении.
func (r *MongoUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		log.Printf("[Repo] Пользователь (id=%s) не найден: невалидный ObjectID", id)
		return nil, ErrUserNotFound
	}
	return r.findOne(ctx, "id="+id, bson.M{"_id": oid})
}

// GetUserByUsername находит пользователя по имени.
func (r *MongoUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, "username="+username, bson.M{"username": username})
}

// GetUserByEmail находит пользователя по email.
func (r *MongoUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, "email="+email, bson.M{"email": email})
}

// GetUserByUsernameOrEmail находит пользователя по имени или email.
func (r *MongoUserRepository) GetUserByUsernameOrEmail(
	ctx context.Context,
	username, email string,
) (*models.User, error) {
	if username != "" {
		user, err := r.GetUserByUsername(ctx, username)
		if err == nil || !errors.Is(err, ErrUserNotFound) {
			return user, err
		}
	}
	if email != "" {
		return r.GetUserByEmail(ctx, email)
	}
	return nil, ErrUserNotFound
}

// AddBook добавляет книгу, если в списке ещё нет книги с таким bookId.
// Фильтр по bookId и $push выполняются одной командой на сервере.
func (r *MongoUserRepository) AddBook(
	ctx context.Context,
	userID string,
	book models.SavedBook,
) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	filter := bson.M{"_id": oid, "savedBooks.bookId": bson.M{"$ne": book.BookID}}
	update := bson.M{
		"$push": bson.M{"savedBooks": book},
		"$set":  bson.M{"updatedAt": r.now().UTC()},
	}

	user, err := r.findOneAndUpdate(ctx, "id="+userID, filter, update)
	if errors.Is(err, ErrUserNotFound) {
		// Либо книга уже сохранена, либо пользователя нет
		return r.GetUserByID(ctx, userID)
	}
	if err != nil {
		return nil, err
	}
	log.Printf("[Repo] Книга '%s' сохранена у пользователя %s (всего: %d)", book.BookID, userID, user.BookCount())
	return user, nil
}

// RemoveBook удаляет из списка все книги с указанным bookId.
func (r *MongoUserRepository) RemoveBook(ctx context.Context, userID, bookID string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	update := bson.M{
		"$pull": bson.M{"savedBooks": bson.M{"bookId": bookID}},
		"$set":  bson.M{"updatedAt": r.now().UTC()},
	}

	user, err := r.findOneAndUpdate(ctx, "id="+userID, bson.M{"_id": oid}, update)
	if err != nil {
		return nil, err
	}
	log.Printf("[Repo] Книга '%s' удалена у пользователя %s (осталось: %d)", bookID, userID, user.BookCount())
	return user, nil
}

// UpdatePassword заменяет хеш пароля пользователя.
func (r *MongoUserRepository) UpdatePassword(
	ctx context.Context,
	userID, passwordHash string,
) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	update := bson.M{"$set": bson.M{"password": passwordHash, "updatedAt": r.now().UTC()}}
	return r.findOneAndUpdate(ctx, "id="+userID, bson.M{"_id": oid}, update)
}

func (r *MongoUserRepository) findOne(ctx context.Context, key string, filter bson.M) (*models.User, error) {
	var doc mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			log.Printf("[Repo] Пользователь (%s) не найден", key)
			return nil, ErrUserNotFound
		}
		log.Printf("[Repo] Ошибка при поиске пользователя (%s): %v", key, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на получение пользователя: %w", err)
	}
	return doc.toModel(), nil
}

func (r *MongoUserRepository) findOneAndUpdate(
	ctx context.Context,
	key string,
	filter, update bson.M,
) (*models.User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc mongoUser
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		log.Printf("[Repo] Ошибка при обновлении пользователя (%s): %v", key, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на обновление пользователя: %w", err)
	}
	return doc.toModel(), nil
}

// duplicateIndex возвращает имя уникального индекса, нарушенного вставкой.
// Значение ключа и имя базы в тексте ошибки не учитываются.
func duplicateIndex(err error) string {
	var messages []string

	var writeErr mongo.WriteException
	if errors.As(err, &writeErr) {
		for _, we := range writeErr.WriteErrors {
			if we.Code == 11000 {
				messages = append(messages, we.Message)
			}
		}
	}
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		messages = append(messages, cmdErr.Message)
	}

	for _, msg := range messages {
		if m := dupIndexPattern.FindStringSubmatch(msg); m != nil {
			return m[1]
		}
	}
	return ""
}
