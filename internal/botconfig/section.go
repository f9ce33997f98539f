package botconfig

import (
	"bytes"
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"gopkg.in/yaml.v3"
)

// Các section chuẩn của cấu hình bot
const (
	SectionUIBranding              = "ui_branding"
	SectionConversationPersonality = "conversation_personality"
	SectionAISettings              = "ai_settings"
	SectionKnowledgeBase           = "knowledge_base"
	SectionVoiceSpeech             = "voice_speech"
	SectionGuardrails              = "guardrails"
	SectionMetaControls            = "meta_controls"
)

// Section là nhóm field có nhãn
type Section struct {
	Label        string   `json:"label" bson:"label" yaml:"label"`
	Description  string   `json:"description,omitempty" bson:"description,omitempty" yaml:"description,omitempty"`
	Visible      *bool    `json:"visible,omitempty" bson:"visible,omitempty" yaml:"visible,omitempty"`
	ShowInfoIcon bool     `json:"showInfoIcon" bson:"showInfoIcon" yaml:"showInfoIcon"`
	InfoText     string   `json:"infoText,omitempty" bson:"infoText,omitempty" yaml:"infoText,omitempty"`
	Fields       []*Field `json:"fields" bson:"fields" yaml:"fields"`
}

// IsVisible mặc định là true khi chưa khai báo
func (s *Section) IsVisible() bool {
	return s.Visible == nil || *s.Visible
}

func (s *Section) Clone() *Section {
	out := *s
	if s.Visible != nil {
		v := *s.Visible
		out.Visible = &v
	}
	out.Fields = make([]*Field, 0, len(s.Fields))
	for _, f := range s.Fields {
		if f != nil {
			out.Fields = append(out.Fields, f.Clone())
		}
	}
	return &out
}

// SectionEntry là một cặp key → section
type SectionEntry struct {
	Key     string
	Section *Section
}

// Sections là danh sách section giữ nguyên thứ tự khai báo.
// Khi encode ra JSON/BSON nó là một object key → section.
type Sections []SectionEntry

// Get trả về section theo key
func (s Sections) Get(key string) (*Section, bool) {
	for _, e := range s {
		if e.Key == key {
			return e.Section, true
		}
	}
	return nil, false
}

// Set ghi đè section nếu key đã tồn tại, ngược lại thêm vào cuối
func (s *Sections) Set(key string, sec *Section) {
	for i, e := range *s {
		if e.Key == key {
			(*s)[i].Section = sec
			return
		}
	}
	*s = append(*s, SectionEntry{Key: key, Section: sec})
}

func (s Sections) Keys() []string {
	keys := make([]string, 0, len(s))
	for _, e := range s {
		keys = append(keys, e.Key)
	}
	return keys
}

func (s Sections) Clone() Sections {
	if s == nil {
		return nil
	}
	out := make(Sections, 0, len(s))
	for _, e := range s {
		var sec *Section
		if e.Section != nil {
			sec = e.Section.Clone()
		}
		out = append(out, SectionEntry{Key: e.Key, Section: sec})
	}
	return out
}

func (s Sections) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		sec, err := json.Marshal(e.Section)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(sec)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (s *Sections) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*s = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("sections must be an object")
	}

	out := Sections{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("invalid section key %v", tok)
		}
		var sec *Section
		if err := dec.Decode(&sec); err != nil {
			return fmt.Errorf("section %q: %w", key, err)
		}
		out.Set(key, sec)
	}
	*s = out
	return nil
}

func (s Sections) MarshalBSONValue() (bsontype.Type, []byte, error) {
	d := make(bson.D, 0, len(s))
	for _, e := range s {
		d = append(d, bson.E{Key: e.Key, Value: e.Section})
	}
	return bson.MarshalValue(d)
}

func (s *Sections) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	if t == bsontype.Null || t == bsontype.Undefined {
		*s = nil
		return nil
	}
	if t != bsontype.EmbeddedDocument {
		return fmt.Errorf("sections must be a document, got %s", t)
	}

	elems, err := bson.Raw(data).Elements()
	if err != nil {
		return err
	}
	out := make(Sections, 0, len(elems))
	for _, elem := range elems {
		var sec Section
		if err := elem.Value().Unmarshal(&sec); err != nil {
			return fmt.Errorf("section %q: %w", elem.Key(), err)
		}
		out.Set(elem.Key(), &sec)
	}
	*s = out
	return nil
}

func (s *Sections) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("sections must be a mapping (line %d)", node.Line)
	}
	out := make(Sections, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		var sec Section
		if err := node.Content[i+1].Decode(&sec); err != nil {
			return fmt.Errorf("section %q: %w", key, err)
		}
		out.Set(key, &sec)
	}
	*s = out
	return nil
}
