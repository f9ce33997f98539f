package botconfig

import (
	"encoding/json"

	"go.mongodb.org/mongo-driver/bson"
	"gopkg.in/yaml.v3"
)

// FieldType là loại của field, quyết định dạng giá trị và luật validate
type FieldType string

const (
	TypeText         FieldType = "text"
	TypeTextarea     FieldType = "textarea"
	TypeDropdown     FieldType = "dropdown"
	TypeToggle       FieldType = "toggle"
	TypeSlider       FieldType = "slider"
	TypeColor        FieldType = "color"
	TypeImage        FieldType = "image"
	TypeNumber       FieldType = "number"
	TypeList         FieldType = "list"
	TypeVoicePreview FieldType = "voice_preview"
)

// AccessRole cho biết tầng người dùng nào được xem/sửa field
type AccessRole string

const (
	AccessMerchant  AccessRole = "merchant"
	AccessSuperUser AccessRole = "super_user"
	AccessSystem    AccessRole = "system"
)

// Field là một thiết lập có kiểu, gồm giá trị gốc (factory) và giá trị hiện tại
type Field struct {
	Key          string
	Label        string
	Type         FieldType
	MaxLength    *int
	Options      []string
	FactoryValue Value
	CurrentValue Value
	AccessRole   AccessRole
	Guideline    string
	Mandatory    bool
	ShowInfoIcon bool
	InfoText     string
}

// fieldWire là dạng lưu trữ/truyền tải của Field, giá trị để ở dạng thô
type fieldWire struct {
	Key          string     `json:"key" bson:"key" yaml:"key"`
	Label        string     `json:"label" bson:"label" yaml:"label"`
	Type         FieldType  `json:"type" bson:"type" yaml:"type"`
	MaxLength    *int       `json:"maxLength,omitempty" bson:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Options      []string   `json:"options,omitempty" bson:"options,omitempty" yaml:"options,omitempty"`
	FactoryValue any        `json:"factory_value" bson:"factory_value" yaml:"factory_value"`
	CurrentValue any        `json:"current_value,omitempty" bson:"current_value" yaml:"current_value,omitempty"`
	AccessRole   AccessRole `json:"access_role" bson:"access_role" yaml:"access_role"`
	Guideline    string     `json:"guideline,omitempty" bson:"guideline,omitempty" yaml:"guideline,omitempty"`
	Mandatory    bool       `json:"mandatory" bson:"mandatory" yaml:"mandatory"`
	ShowInfoIcon bool       `json:"showInfoIcon" bson:"showInfoIcon" yaml:"showInfoIcon"`
	InfoText     string     `json:"infoText,omitempty" bson:"infoText,omitempty" yaml:"infoText,omitempty"`
}

func (f *Field) toWire() fieldWire {
	return fieldWire{
		Key:          f.Key,
		Label:        f.Label,
		Type:         f.Type,
		MaxLength:    f.MaxLength,
		Options:      f.Options,
		FactoryValue: interfaceOf(f.FactoryValue),
		CurrentValue: interfaceOf(f.CurrentValue),
		AccessRole:   f.AccessRole,
		Guideline:    f.Guideline,
		Mandatory:    f.Mandatory,
		ShowInfoIcon: f.ShowInfoIcon,
		InfoText:     f.InfoText,
	}
}

func (f *Field) fromWire(w fieldWire) {
	*f = Field{
		Key:          w.Key,
		Label:        w.Label,
		Type:         w.Type,
		MaxLength:    w.MaxLength,
		Options:      w.Options,
		FactoryValue: ValueOf(w.Type, w.FactoryValue),
		CurrentValue: ValueOf(w.Type, w.CurrentValue),
		AccessRole:   w.AccessRole,
		Guideline:    w.Guideline,
		Mandatory:    w.Mandatory,
		ShowInfoIcon: w.ShowInfoIcon,
		InfoText:     w.InfoText,
	}
}

func (f Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.toWire())
}

func (f *Field) UnmarshalJSON(data []byte) error {
	var w fieldWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	f.fromWire(w)
	return nil
}

func (f Field) MarshalBSON() ([]byte, error) {
	return bson.Marshal(f.toWire())
}

func (f *Field) UnmarshalBSON(data []byte) error {
	var w fieldWire
	if err := bson.Unmarshal(data, &w); err != nil {
		return err
	}
	f.fromWire(w)
	return nil
}

func (f *Field) UnmarshalYAML(node *yaml.Node) error {
	var w fieldWire
	if err := node.Decode(&w); err != nil {
		return err
	}
	f.fromWire(w)
	return nil
}

// Clone trả về bản sao độc lập của field
func (f *Field) Clone() *Field {
	out := *f
	if f.MaxLength != nil {
		n := *f.MaxLength
		out.MaxLength = &n
	}
	if f.Options != nil {
		out.Options = append([]string{}, f.Options...)
	}
	out.FactoryValue = cloneValue(f.FactoryValue)
	out.CurrentValue = cloneValue(f.CurrentValue)
	return &out
}

// cloneValue sao chép các biến thể có chứa slice/con trỏ, các biến thể còn lại là bất biến
func cloneValue(v Value) Value {
	switch val := v.(type) {
	case ListValue:
		return ListValue(append([]string{}, val...))
	case VoiceValue:
		out := val
		if val.Voice != nil {
			s := *val.Voice
			out.Voice = &s
		}
		if val.Model != nil {
			s := *val.Model
			out.Model = &s
		}
		return out
	case RawValue:
		return RawValue{V: normalize(val.V)}
	}
	return v
}
