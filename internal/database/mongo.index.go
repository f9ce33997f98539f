package database

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"bot_admin/internal/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureCollections tạo các collection còn thiếu trong database
func EnsureCollections(ctx context.Context, db *mongo.Database, names ...string) error {
	existing, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}
	have := make(map[string]bool, len(existing))
	for _, name := range existing {
		have[name] = true
	}

	for _, name := range names {
		if have[name] {
			continue
		}
		logger.GetAppLogger().Infof("Collection %s chưa tồn tại, tạo mới.", name)
		if err := db.CreateCollection(ctx, name); err != nil {
			return fmt.Errorf("failed to create collection %s: %w", name, err)
		}
	}
	return nil
}

// IndexSpec là một index đọc được từ tag `index` của model
type IndexSpec struct {
	Name    string
	Keys    bson.D
	Options *options.IndexOptions
}

// parseOrder trích thứ tự sắp xếp từ tag (1 hoặc -1)
func parseOrder(tag string) int {
	if strings.Contains(tag, "order:-1") {
		return -1
	}
	return 1
}

// parseIndexTag tách tag index dạng "unique;single,order:-1;ttl:3600;compound:name"
func parseIndexTag(tag string) []map[string]string {
	result := []map[string]string{}
	for _, part := range strings.Split(tag, ";") {
		entry := map[string]string{}
		for _, subPart := range strings.Split(part, ",") {
			kv := strings.SplitN(subPart, ":", 2)
			if len(kv) == 2 {
				entry[kv[0]] = kv[1]
			} else {
				entry[kv[0]] = ""
			}
		}
		result = append(result, entry)
	}
	return result
}

// IndexSpecs đọc các tag `index` trên struct model và trả về danh sách index cần tạo.
// Hỗ trợ: single, unique (kèm sparse), ttl:<giây>, text, compound:<tên nhóm>.
func IndexSpecs(model interface{}) ([]IndexSpec, error) {
	modelType := reflect.TypeOf(model)
	if modelType.Kind() == reflect.Ptr {
		modelType = modelType.Elem()
	}

	var specs []IndexSpec
	compoundKeys := map[string]bson.D{}
	var compoundOrder []string
	compoundSparse := map[string]bool{}

	for i := 0; i < modelType.NumField(); i++ {
		field := modelType.Field(i)
		tag, ok := field.Tag.Lookup("index")
		if !ok {
			continue
		}
		bsonField := strings.Split(field.Tag.Get("bson"), ",")[0]
		if bsonField == "" || bsonField == "-" {
			continue
		}

		for _, cfg := range parseIndexTag(tag) {
			if _, ok := cfg["text"]; ok {
				name := bsonField + "_text"
				specs = append(specs, IndexSpec{Name: name, Keys: bson.D{{Key: bsonField, Value: "text"}}, Options: options.Index().SetName(name)})
			}
			if _, ok := cfg["single"]; ok {
				name := bsonField + "_single"
				specs = append(specs, IndexSpec{Name: name, Keys: bson.D{{Key: bsonField, Value: parseOrder(tag)}}, Options: options.Index().SetName(name)})
			}
			if _, ok := cfg["unique"]; ok {
				name := bsonField + "_unique"
				opts := options.Index().SetName(name).SetUnique(true)
				if _, sparse := cfg["sparse"]; sparse {
					opts = opts.SetSparse(true)
				}
				specs = append(specs, IndexSpec{Name: name, Keys: bson.D{{Key: bsonField, Value: 1}}, Options: opts})
			}
			if ttlValue, ok := cfg["ttl"]; ok {
				ttl, err := strconv.Atoi(ttlValue)
				if err != nil {
					return nil, fmt.Errorf("TTL không hợp lệ ở field %s: %w", field.Name, err)
				}
				name := bsonField + "_ttl"
				specs = append(specs, IndexSpec{Name: name, Keys: bson.D{{Key: bsonField, Value: 1}}, Options: options.Index().SetName(name).SetExpireAfterSeconds(int32(ttl))})
			}
			if group, ok := cfg["compound"]; ok {
				if _, seen := compoundKeys[group]; !seen {
					compoundOrder = append(compoundOrder, group)
				}
				compoundKeys[group] = append(compoundKeys[group], bson.E{Key: bsonField, Value: parseOrder(tag)})
				if _, sparse := cfg["sparse"]; sparse {
					compoundSparse[group] = true
				}
			}
		}
	}

	for _, group := range compoundOrder {
		opts := options.Index().SetName(group)
		if strings.Contains(group, "_unique") {
			opts = opts.SetUnique(true)
		}
		if compoundSparse[group] {
			opts = opts.SetSparse(true)
		}
		specs = append(specs, IndexSpec{Name: group, Keys: compoundKeys[group], Options: opts})
	}
	return specs, nil
}

// CreateIndexes tạo các index khai báo trên model. Index trùng tên nhưng khác cấu hình sẽ bị thay.
func CreateIndexes(ctx context.Context, collection *mongo.Collection, model interface{}) error {
	specs, err := IndexSpecs(model)
	if err != nil {
		return err
	}

	cursor, err := collection.Indexes().List(ctx)
	if err != nil {
		return fmt.Errorf("không thể lấy danh sách index: %w", err)
	}
	defer cursor.Close(ctx)

	existing := map[string]bson.M{}
	for cursor.Next(ctx) {
		var info bson.M
		if err := cursor.Decode(&info); err != nil {
			return fmt.Errorf("không thể giải mã thông tin index: %w", err)
		}
		if name, ok := info["name"].(string); ok {
			existing[name] = info
		}
	}

	log := logger.GetAppLogger().WithField("collection", collection.Name())
	for _, spec := range specs {
		if info, ok := existing[spec.Name]; ok {
			if sameIndex(info, spec) {
				continue
			}
			if _, err := collection.Indexes().DropOne(ctx, spec.Name); err != nil {
				return fmt.Errorf("không thể xóa index %s: %w", spec.Name, err)
			}
			log.Infof("Đã xóa index cũ: %s", spec.Name)
		}
		if _, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: spec.Keys, Options: spec.Options}); err != nil {
			return fmt.Errorf("không thể tạo index %s: %w", spec.Name, err)
		}
		log.Infof("Đã tạo index: %s", spec.Name)
	}
	return nil
}

func sameIndex(info bson.M, spec IndexSpec) bool {
	keys, ok := info["key"].(bson.M)
	if !ok || len(keys) != len(spec.Keys) {
		return false
	}
	for _, k := range spec.Keys {
		existing, ok := keys[k.Key]
		if !ok {
			return false
		}
		if want, isInt := k.Value.(int); isInt {
			switch ev := existing.(type) {
			case int32:
				if int(ev) != want {
					return false
				}
			case int64:
				if int(ev) != want {
					return false
				}
			case float64:
				if int(ev) != want {
					return false
				}
			default:
				return false
			}
		} else if existing != k.Value {
			return false
		}
	}

	unique, _ := info["unique"].(bool)
	wantUnique := spec.Options.Unique != nil && *spec.Options.Unique
	if unique != wantUnique {
		return false
	}
	if spec.Options.ExpireAfterSeconds != nil {
		ttl, ok := info["expireAfterSeconds"].(int32)
		if !ok || ttl != *spec.Options.ExpireAfterSeconds {
			return false
		}
	}
	return true
}
