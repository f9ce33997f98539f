// Package botconfigsvc chứa repository và service cho cấu hình bot của merchant.
package botconfigsvc

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	basemodels "bot_admin/internal/api/base/models"
	basesvc "bot_admin/internal/api/base/service"
	"bot_admin/internal/botconfig"
	"bot_admin/internal/common"
)

// Repository lưu trữ document cấu hình bot, mỗi merchant một document.
//
// Save dùng optimistic locking theo Revision: chỉ ghi khi revision trong kho
// bằng doc.Revision, thành công thì doc.Revision tăng 1.
type Repository interface {
	FindByID(ctx context.Context, merchantID string) (*botconfig.Document, error)
	Insert(ctx context.Context, doc *botconfig.Document) error
	Save(ctx context.Context, doc *botconfig.Document) error
	Delete(ctx context.Context, merchantID string) error
	List(ctx context.Context, page, limit int64, search string) (*basemodels.PaginateResult[botconfig.Document], error)
}

// MongoRepository lưu document trong collection bot_configs
type MongoRepository struct {
	*basesvc.BaseServiceMongoImpl[botconfig.Document]
}

// NewMongoRepository tạo repository trên collection
func NewMongoRepository(collection *mongo.Collection) *MongoRepository {
	return &MongoRepository{BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[botconfig.Document](collection)}
}

func (r *MongoRepository) FindByID(ctx context.Context, merchantID string) (*botconfig.Document, error) {
	doc, err := r.FindOne(ctx, bson.M{"_id": merchantID}, nil)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrConfigNotFound
		}
		return nil, err
	}
	return &doc, nil
}

func (r *MongoRepository) Insert(ctx context.Context, doc *botconfig.Document) error {
	ts := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = ts
	}
	doc.UpdatedAt = ts

	created, err := r.InsertOne(ctx, *doc)
	if err != nil {
		if errors.Is(err, common.ErrDuplicate) {
			return common.ErrConfigExists
		}
		return err
	}
	*doc = created
	return nil
}

// revisionFilter khớp document theo id và revision. Document cũ chưa có
// trường revision được coi là revision 0.
func revisionFilter(id string, revision int64) bson.M {
	if revision == 0 {
		return bson.M{"_id": id, "$or": bson.A{
			bson.M{"revision": 0},
			bson.M{"revision": bson.M{"$exists": false}},
		}}
	}
	return bson.M{"_id": id, "revision": revision}
}

func (r *MongoRepository) Save(ctx context.Context, doc *botconfig.Document) error {
	next := doc.Clone()
	next.Revision = doc.Revision + 1
	next.UpdatedAt = time.Now().UTC()

	matched, err := r.ReplaceOne(ctx, revisionFilter(doc.ID, doc.Revision), *next)
	if err != nil {
		return err
	}
	if matched == 0 {
		exists, err := r.DocumentExists(ctx, bson.M{"_id": doc.ID})
		if err != nil {
			return err
		}
		if exists {
			return common.ErrVersionConflict
		}
		return common.ErrConfigNotFound
	}

	doc.Revision = next.Revision
	doc.UpdatedAt = next.UpdatedAt
	return nil
}

func (r *MongoRepository) Delete(ctx context.Context, merchantID string) error {
	deleted, err := r.DeleteOne(ctx, bson.M{"_id": merchantID})
	if err != nil {
		return err
	}
	if deleted == 0 {
		return common.ErrConfigNotFound
	}
	return nil
}

// List phân trang theo createdAt giảm dần, search là chuỗi con của merchant id (không phân biệt hoa thường)
func (r *MongoRepository) List(ctx context.Context, page, limit int64, search string) (*basemodels.PaginateResult[botconfig.Document], error) {
	filter := bson.M{}
	if search = strings.TrimSpace(search); search != "" {
		filter["_id"] = bson.M{"$regex": regexp.QuoteMeta(search), "$options": "i"}
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return r.FindWithPagination(ctx, filter, page, limit, opts)
}

// MemoryRepository giữ document trong bộ nhớ, cùng ngữ nghĩa với MongoRepository
type MemoryRepository struct {
	mu   sync.RWMutex
	docs map[string]*botconfig.Document
}

// NewMemoryRepository tạo repository rỗng
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{docs: make(map[string]*botconfig.Document)}
}

func (r *MemoryRepository) FindByID(_ context.Context, merchantID string) (*botconfig.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.docs[merchantID]
	if !ok {
		return nil, common.ErrConfigNotFound
	}
	return doc.Clone(), nil
}

func (r *MemoryRepository) Insert(_ context.Context, doc *botconfig.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[doc.ID]; ok {
		return common.ErrConfigExists
	}
	ts := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = ts
	}
	doc.UpdatedAt = ts
	r.docs[doc.ID] = doc.Clone()
	return nil
}

func (r *MemoryRepository) Save(_ context.Context, doc *botconfig.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.docs[doc.ID]
	if !ok {
		return common.ErrConfigNotFound
	}
	if stored.Revision != doc.Revision {
		return common.ErrVersionConflict
	}
	doc.Revision++
	doc.UpdatedAt = time.Now().UTC()
	r.docs[doc.ID] = doc.Clone()
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, merchantID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[merchantID]; !ok {
		return common.ErrConfigNotFound
	}
	delete(r.docs, merchantID)
	return nil
}

func (r *MemoryRepository) List(_ context.Context, page, limit int64, search string) (*basemodels.PaginateResult[botconfig.Document], error) {
	page, limit = basemodels.NormalizePage(page, limit)
	search = strings.ToLower(strings.TrimSpace(search))

	r.mu.RLock()
	matched := make([]botconfig.Document, 0, len(r.docs))
	for id, doc := range r.docs {
		if search == "" || strings.Contains(strings.ToLower(id), search) {
			matched = append(matched, *doc.Clone())
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
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
