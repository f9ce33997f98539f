package botconfig

import (
	"time"
)

// UserRef là thông tin người thao tác lưu trong audit
type UserRef struct {
	UserID   string `json:"user_id" bson:"user_id" yaml:"user_id"`
	FullName string `json:"full_name" bson:"full_name" yaml:"full_name"`
	Email    string `json:"email" bson:"email" yaml:"email"`
}

// Audit ghi lại ai/khi nào thay đổi document và số lần thay đổi
type Audit struct {
	LastUpdatedAt     time.Time `json:"last_updated_at" bson:"last_updated_at" yaml:"last_updated_at,omitempty"`
	LastUpdatedBy     *UserRef  `json:"last_updated_by,omitempty" bson:"last_updated_by,omitempty" yaml:"last_updated_by,omitempty"`
	LastChangeSummary string    `json:"last_change_summary,omitempty" bson:"last_change_summary,omitempty" yaml:"last_change_summary,omitempty"`
	ChangeCount       int64     `json:"change_count" bson:"change_count" yaml:"change_count"`
	CreatedBy         *UserRef  `json:"created_by,omitempty" bson:"created_by,omitempty" yaml:"created_by,omitempty"`
}

// Meta chứa thông tin phiên bản schema và audit
type Meta struct {
	Version       string    `json:"version" bson:"version" yaml:"version"`
	SchemaOwner   string    `json:"schema_owner" bson:"schema_owner" yaml:"schema_owner"`
	SchemaCreated time.Time `json:"schema_created" bson:"schema_created" yaml:"schema_created,omitempty"`
	Description   string    `json:"description,omitempty" bson:"description,omitempty" yaml:"description,omitempty"`
	Audit         Audit     `json:"audit" bson:"audit" yaml:"audit,omitempty"`
}

// Document là cấu hình bot của một merchant, _id chính là merchant id.
// Revision tăng mỗi lần lưu, dùng cho optimistic locking ở tầng repository.
type Document struct {
	ID        string    `json:"_id" bson:"_id" yaml:"_id,omitempty"`
	Meta      Meta      `json:"meta" bson:"meta" yaml:"meta"`
	Sections  Sections  `json:"sections" bson:"sections" yaml:"sections"`
	Revision  int64     `json:"revision" bson:"revision" yaml:"-"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt" yaml:"-" index:"single,order:-1"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt" yaml:"-"`
}

// Actor là người gọi đã xác thực
type Actor struct {
	ID    string `json:"id" validate:"required"`
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role,omitempty"`
}

// Ref chuyển actor thành UserRef để ghi vào audit
func (a *Actor) Ref() *UserRef {
	if a == nil {
		return nil
	}
	return &UserRef{UserID: a.ID, FullName: a.Name, Email: a.Email}
}

// EachField duyệt mọi field theo thứ tự section rồi thứ tự field
func (d *Document) EachField(fn func(sectionKey string, f *Field)) {
	for _, e := range d.Sections {
		if e.Section == nil {
			continue
		}
		for _, f := range e.Section.Fields {
			if f == nil || f.Key == "" {
				continue
			}
			fn(e.Key, f)
		}
	}
}

// FieldCount đếm số field có key
func (d *Document) FieldCount() int {
	n := 0
	d.EachField(func(string, *Field) { n++ })
	return n
}

// Clone trả về bản sao sâu của document
func (d *Document) Clone() *Document {
	out := *d
	out.Sections = d.Sections.Clone()
	if d.Meta.Audit.LastUpdatedBy != nil {
		ref := *d.Meta.Audit.LastUpdatedBy
		out.Meta.Audit.LastUpdatedBy = &ref
	}
	if d.Meta.Audit.CreatedBy != nil {
		ref := *d.Meta.Audit.CreatedBy
		out.Meta.Audit.CreatedBy = &ref
	}
	return &out
}

// stamp ghi audit cho một lần thay đổi. Mỗi lần gọi tăng change_count đúng 1.
func (d *Document) stamp(actor *Actor, summary string) {
	d.Meta.Audit.LastUpdatedAt = now()
	d.Meta.Audit.ChangeCount++
	if actor != nil {
		d.Meta.Audit.LastUpdatedBy = actor.Ref()
	}
	if summary != "" {
		d.Meta.Audit.LastChangeSummary = summary
	}
}

// now có thể thay trong test
var now = func() time.Time { return time.Now().UTC() }
