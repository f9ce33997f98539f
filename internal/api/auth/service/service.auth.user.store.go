package authsvc

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	authdto "bot_admin/internal/api/auth/dto"
	models "bot_admin/internal/api/auth/models"
	basemodels "bot_admin/internal/api/base/models"
	basesvc "bot_admin/internal/api/base/service"
	"bot_admin/internal/common"
)

// UserStore lưu tài khoản quản trị. Email luôn ở dạng chữ thường.
type UserStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Insert(ctx context.Context, user *models.User) error
	Save(ctx context.Context, user *models.User) error
	// RecordLoginFailure tăng failed_attempts và ghi last_failed_login trong một thao tác
	RecordLoginFailure(ctx context.Context, id primitive.ObjectID, at time.Time) (*models.User, error)
	List(ctx context.Context, query authdto.UserListQuery) (*basemodels.PaginateResult[models.User], error)
}

// MongoUserStore lưu user trong collection users
type MongoUserStore struct {
	*basesvc.BaseServiceMongoImpl[models.User]
}

// NewMongoUserStore tạo store trên collection
func NewMongoUserStore(collection *mongo.Collection) *MongoUserStore {
	return &MongoUserStore{BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.User](collection)}
}

func (s *MongoUserStore) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	user, err := s.FindOne(ctx, filter, nil)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *MongoUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, common.ErrUserNotFound
	}
	return s.findOne(ctx, bson.M{"_id": oid})
}

func (s *MongoUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": strings.ToLower(email)})
}

func (s *MongoUserStore) Insert(ctx context.Context, user *models.User) error {
	ts := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = ts, ts
	created, err := s.InsertOne(ctx, *user)
	if err != nil {
		if errors.Is(err, common.ErrDuplicate) {
			return common.ErrUserExists
		}
		return err
	}
	*user = created
	return nil
}

func (s *MongoUserStore) Save(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	matched, err := s.ReplaceOne(ctx, bson.M{"_id": user.ID}, *user)
	if err != nil {
		return err
	}
	if matched == 0 {
		return common.ErrUserNotFound
	}
	return nil
}

func (s *MongoUserStore) RecordLoginFailure(ctx context.Context, id primitive.ObjectID, at time.Time) (*models.User, error) {
	update := basesvc.UpdateData{
		Set: map[string]interface{}{"last_failed_login": at, "updatedAt": at},
		Inc: map[string]interface{}{"failed_attempts": 1},
	}
	user, err := s.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, nil)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *MongoUserStore) List(ctx context.Context, query authdto.UserListQuery) (*basemodels.PaginateResult[models.User], error) {
	filter := bson.M{}
	if query.Role != "" {
		filter["role"] = query.Role
	}
	if query.Status != "" {
		filter["status"] = query.Status
	}
	if query.TenantID != "" {
		filter["tenant_id"] = query.TenantID
	}
	if search := strings.TrimSpace(query.Search); search != "" {
		regex := bson.M{"$regex": regexp.QuoteMeta(search), "$options": "i"}
		filter["$or"] = bson.A{
			bson.M{"firstName": regex},
			bson.M{"lastName": regex},
			bson.M{"email": regex},
		}
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return s.FindWithPagination(ctx, filter, query.Page, query.Limit, opts)
}

// MemoryUserStore giữ user trong bộ nhớ, dùng cho test và chạy thử không cần MongoDB
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]models.User
}

// NewMemoryUserStore tạo store rỗng
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[primitive.ObjectID]models.User)}
}

func (s *MemoryUserStore) FindByID(_ context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, common.ErrUserNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[oid]
	if !ok {
		return nil, common.ErrUserNotFound
	}
	return &user, nil
}

func (s *MemoryUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	email = strings.ToLower(email)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, common.ErrUserNotFound
}

func (s *MemoryUserStore) Insert(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return common.ErrUserExists
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	ts := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = ts, ts
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryUserStore) Save(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return common.ErrUserNotFound
	}
	user.UpdatedAt = time.Now().UTC()
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryUserStore) RecordLoginFailure(_ context.Context, id primitive.ObjectID, at time.Time) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, common.ErrUserNotFound
	}
	user.FailedAttempts++
	user.LastFailedLogin = &at
	user.UpdatedAt = at
	s.users[id] = user
	return &user, nil
}

func (s *MemoryUserStore) List(_ context.Context, query authdto.UserListQuery) (*basemodels.PaginateResult[models.User], error) {
	page, limit := basemodels.NormalizePage(query.Page, query.Limit)
	search := strings.ToLower(strings.TrimSpace(query.Search))

	s.mu.RLock()
	matched := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		if query.Role != "" && u.Role != query.Role {
			continue
		}
		if query.Status != "" && u.Status != query.Status {
			continue
		}
		if query.TenantID != "" && u.TenantID != query.TenantID {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(u.FirstName), search) &&
			!strings.Contains(strings.ToLower(u.LastName), search) &&
			!strings.Contains(u.Email, search) {
			continue
		}
		matched = append(matched, u)
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].Email < matched[j].Email
	})

	total := int64(len(matched))
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return basemodels.NewPaginateResult(matched[start:end], page, limit, total), nil
}
