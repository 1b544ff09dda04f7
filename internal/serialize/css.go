package serialize

import (
	"fmt"
	"strings"

	"github.com/garnish-lang/web-garnish/internal/lang/value"
)

// DeserializeCSS walks v (expected to be a Rule, or a List of Rules) into
// "selector { prop: value; ... }" blocks joined by newlines. Declaration
// values are written verbatim; escaping embedded "}"/";" is a parse-time
// concern for source authors, not a deserialize-time one.
func DeserializeCSS(v value.Value, h Heap) (string, error) {
	rules, err := collectRules(v, h)
	if err != nil {
		return "", err
	}
	blocks := make([]string, 0, len(rules))
	for _, r := range rules {
		blocks = append(blocks, renderRule(r))
	}
	return strings.Join(blocks, "\n"), nil
}

func collectRules(v value.Value, h Heap) ([]value.RuleData, error) {
	switch v.Kind {
	case value.Rule:
		r, _ := v.AsRule()
		return []value.RuleData{r}, nil
	case value.List:
		elems, _ := v.AsList()
		rules := make([]value.RuleData, 0, len(elems))
		for _, idx := range elems {
			sub, err := collectRules(h.Get(idx), h)
			if err != nil {
				return nil, err
			}
			rules = append(rules, sub...)
		}
		return rules, nil
	default:
		return nil, fmt.Errorf("serialize: cannot render value of kind %s as css", v.Kind)
	}
}

func renderRule(r value.RuleData) string {
	var sb strings.Builder
	sb.WriteString(r.Selector)
	sb.WriteString(" { ")
	for _, decl := range r.Declarations {
		sb.WriteString(decl[0])
		sb.WriteString(": ")
		sb.WriteString(decl[1])
		sb.WriteString("; ")
	}
	sb.WriteString("}")
	return sb.String()
}
