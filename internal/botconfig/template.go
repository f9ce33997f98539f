package botconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ParseTemplate đọc template cấu hình từ YAML (JSON cũng là YAML hợp lệ)
func ParseTemplate(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse bot config template: %w", err)
	}
	if doc.FieldCount() == 0 {
		return nil, fmt.Errorf("bot config template has no fields")
	}
	for _, key := range doc.Sections.Keys() {
		if sec, _ := doc.Sections.Get(key); sec == nil || len(sec.Fields) == 0 {
			return nil, fmt.Errorf("bot config template section %q has no fields", key)
		}
	}
	if dups := DuplicateKeys(&doc); len(dups) > 0 {
		return nil, fmt.Errorf("bot config template has duplicate field keys: %v", dups)
	}
	return &doc, nil
}

// LoadTemplate đọc template từ file
func LoadTemplate(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bot config template: %w", err)
	}
	return ParseTemplate(data)
}

// NewFromTemplate tạo document mới cho merchant từ template:
// current_value = factory_value cho field chưa có giá trị, audit về 0.
func NewFromTemplate(tmpl *Document, merchantID string, actor *Actor) *Document {
	doc := tmpl.Clone()
	doc.ID = merchantID
	doc.Revision = 0

	ts := now()
	if doc.Meta.SchemaCreated.IsZero() {
		doc.Meta.SchemaCreated = ts
	}
	doc.Meta.Audit = Audit{
		LastUpdatedAt: ts,
		CreatedBy:     actor.Ref(),
	}
	doc.CreatedAt = ts
	doc.UpdatedAt = ts

	doc.EachField(func(_ string, f *Field) {
		if f.CurrentValue == nil {
			f.CurrentValue = cloneValue(f.FactoryValue)
		}
	})
	return doc
}
