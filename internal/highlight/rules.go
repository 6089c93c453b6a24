package highlight

import (
	"regexp"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
)

// Go's \w is ASCII only; Borsch identifiers are mostly Cyrillic.
const (
	identStart = `[\p{L}\p{N}_]`
	identRest  = `[\p{L}\p{N}_]*`
)

var keywords = []string{
	"блок", "заключний", "клас", "кінець", "лямбда", "небезпечно", "нуль",
	"панікувати", "перервати", "повернути", "піймати", "функція", "хиба",
	"цикл", "якщо", "інакше", "істина", "<лямбда>",
}

var specialNames = []string{
	"__оператор_степеня__", "__оператор_ділення_за_модулем__", "__оператор_суми__",
	"__оператор_різниці__", "__оператор_добутку__", "__оператор_частки__",
	"__оператор_мінус__", "__оператор_плюс__", "__оператор_і__", "__оператор_або__",
	"__оператор_не__", "__оператор_побітового_не__", "__оператор_зсуву_ліворуч__",
	"__оператор_зсуву_праворуч__", "__оператор_побітового_і__",
	"__оператор_побітового_XOR__", "__оператор_побітового_або__",
	"__оператор_рівності__", "__оператор_нерівності__", "__оператор_більше__",
	"__оператор_більше_або_дорівнює__", "__оператор_менше__",
	"__оператор_менше_або_дорівнює__", "__конструктор__", "__оператор_виклику__",
	"__довжина__", "__логічне__", "__рядок__", "__представлення__", "__пакет__",
	"__атрибути__", "__документ__", "__експортовані__",
}

// Rule paints every match of Pattern with Style.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Style   text.Colors
}

// Ruleset is an immutable ordered rule list with a base style for text no
// rule matched.
type Ruleset struct {
	base  text.Colors
	rules []Rule
}

// NewRuleset copies rules so later changes by the caller have no effect.
func NewRuleset(base text.Colors, rules ...Rule) Ruleset {
	return Ruleset{
		base:  append(text.Colors(nil), base...),
		rules: append([]Rule(nil), rules...),
	}
}

// Rules returns a copy of the rule list in evaluation order.
func (r Ruleset) Rules() []Rule {
	return append([]Rule(nil), r.rules...)
}

// Base returns the style for unmatched text.
func (r Ruleset) Base() text.Colors {
	return append(text.Colors(nil), r.base...)
}

var borsch = NewRuleset(text.Colors{text.FgWhite},
	Rule{Name: "number", Pattern: regexp.MustCompile(`\d+`), Style: text.Colors{text.FgBlue}},
	Rule{Name: "call", Pattern: regexp.MustCompile(identStart + identRest + `\(`), Style: text.Colors{text.FgHiYellow}},
	Rule{Name: "function", Pattern: regexp.MustCompile(`функція ` + identStart + identRest), Style: text.Colors{text.FgYellow, text.Bold}},
	Rule{Name: "special", Pattern: regexp.MustCompile(alternation(specialNames)), Style: text.Colors{text.FgHiRed}},
	Rule{Name: "class", Pattern: regexp.MustCompile(`клас ` + identStart + identRest), Style: text.Colors{text.FgCyan}},
	Rule{Name: "type", Pattern: regexp.MustCompile(`:\s*` + identStart + identRest), Style: text.Colors{text.FgCyan}},
	Rule{Name: "punctuation", Pattern: regexp.MustCompile(`[:(]`), Style: text.Colors{text.FgWhite}},
	Rule{Name: "separator", Pattern: regexp.MustCompile(`[,;]`), Style: text.Colors{text.FgRed}},
	Rule{Name: "string", Pattern: regexp.MustCompile(`"[^"]*"`), Style: text.Colors{text.FgGreen}},
	Rule{Name: "line-comment", Pattern: regexp.MustCompile(`//[^\n]*`), Style: text.Colors{text.FgHiBlack}},
	Rule{Name: "block-comment", Pattern: regexp.MustCompile(`/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`), Style: text.Colors{text.FgHiBlack}},
	Rule{Name: "keyword", Pattern: regexp.MustCompile(alternation(keywords)), Style: text.Colors{text.FgRed, text.Bold}},
)

// Borsch returns the rules for Borsch source.
func Borsch() Ruleset {
	return borsch
}

func alternation(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(quoted, "|")
}
