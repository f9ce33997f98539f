package botconfig

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"bot_admin/internal/global"
)

func init() {
	RegisterRule(TypeText, textRule)
	RegisterRule(TypeTextarea, textRule)
	RegisterRule(TypeNumber, numberRule)
	RegisterRule(TypeSlider, numberRule)
	RegisterRule(TypeToggle, toggleRule)
	RegisterRule(TypeDropdown, dropdownRule)
	RegisterRule(TypeColor, colorRule)
	RegisterRule(TypeImage, imageRule)
	RegisterRule(TypeList, listRule)
	RegisterRule(TypeVoicePreview, voiceRule)
	_, _ = rules.Register(fallbackRule, anyRule)
}

func textRule(f *Field, mandatory bool) Rule {
	return RuleFunc(func(value any) []string {
		s, ok := value.(string)
		if !ok {
			return []string{fmt.Sprintf("%s must be a string", f.Label)}
		}
		var problems []string
		if mandatory && s == "" {
			problems = append(problems, fmt.Sprintf("%s cannot be empty", f.Label))
		}
		if f.MaxLength != nil && utf8.RuneCountInString(s) > *f.MaxLength {
			problems = append(problems, fmt.Sprintf("%s must not exceed %d characters", f.Label, *f.MaxLength))
		}
		return problems
	})
}

func numberRule(f *Field, _ bool) Rule {
	return RuleFunc(func(value any) []string {
		if _, ok := value.(float64); !ok {
			return []string{fmt.Sprintf("%s must be a number", f.Label)}
		}
		return nil
	})
}

func toggleRule(f *Field, _ bool) Rule {
	return RuleFunc(func(value any) []string {
		if _, ok := value.(bool); !ok {
			return []string{fmt.Sprintf("%s must be a boolean", f.Label)}
		}
		return nil
	})
}

func dropdownRule(f *Field, mandatory bool) Rule {
	if len(f.Options) == 0 {
		return RuleFunc(func(value any) []string {
			s, ok := value.(string)
			if !ok {
				return []string{fmt.Sprintf("%s must be a string", f.Label)}
			}
			if mandatory && s == "" {
				return []string{fmt.Sprintf("%s is required", f.Label)}
			}
			return nil
		})
	}

	allowed := make(map[string]struct{}, len(f.Options))
	for _, o := range f.Options {
		allowed[o] = struct{}{}
	}
	return RuleFunc(func(value any) []string {
		s, ok := value.(string)
		if _, valid := allowed[s]; !ok || !valid {
			return []string{fmt.Sprintf("%s must be one of: %s", f.Label, strings.Join(f.Options, ", "))}
		}
		return nil
	})
}

func colorRule(f *Field, _ bool) Rule {
	return RuleFunc(func(value any) []string {
		s, ok := value.(string)
		if !ok || global.GetValidator().Var(s, "bot_color") != nil {
			return []string{fmt.Sprintf("%s must be a valid hex color (e.g., #FF5733)", f.Label)}
		}
		return nil
	})
}

func imageRule(f *Field, _ bool) Rule {
	return RuleFunc(func(value any) []string {
		s, ok := value.(string)
		if !ok || global.GetValidator().Var(s, "required,url") != nil {
			return []string{fmt.Sprintf("%s must be a valid URL", f.Label)}
		}
		return nil
	})
}

func listRule(f *Field, mandatory bool) Rule {
	return RuleFunc(func(value any) []string {
		items, ok := stringList(value)
		if !ok {
			return []string{fmt.Sprintf("%s must be an array of strings", f.Label)}
		}
		if mandatory && len(items) == 0 {
			return []string{fmt.Sprintf("%s must contain at least one item", f.Label)}
		}
		return nil
	})
}

func voiceRule(f *Field, _ bool) Rule {
	return RuleFunc(func(value any) []string {
		switch v := value.(type) {
		case string:
			return nil
		case map[string]any:
			valid := true
			for _, k := range []string{"voice", "model"} {
				if item, exists := v[k]; exists {
					if _, ok := item.(string); !ok {
						valid = false
					}
				}
			}
			if valid {
				return nil
			}
		}
		return []string{fmt.Sprintf("%s must be a voice name or an object with optional string voice and model", f.Label)}
	})
}

func anyRule(f *Field, _ bool) Rule {
	return RuleFunc(func(value any) []string {
		if value == nil {
			return []string{fmt.Sprintf("%s is required", f.Label)}
		}
		return nil
	})
}
