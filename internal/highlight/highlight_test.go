package highlight

import (
	"regexp"
	"strings"
	"testing"

	"github.com/jedib0t/go-pretty/v6/text"
)

func spanText(src string, spans []Span, rule string) []string {
	var out []string
	for _, s := range spans {
		if s.Rule == rule {
			out = append(out, src[s.Start:s.End])
		}
	}
	return out
}

func TestBorschSpansCoverSource(t *testing.T) {
	src := "функція привіт(ім'я: рядок) {\n  друкр(\"Привіт, \" + ім'я); // вітання\n}\n"
	spans := Borsch().Spans(src)

	var rebuilt strings.Builder
	prev := 0
	for _, s := range spans {
		if s.Start != prev {
			t.Fatalf("gap before span at %d", s.Start)
		}
		rebuilt.WriteString(src[s.Start:s.End])
		prev = s.End
	}
	if rebuilt.String() != src {
		t.Fatalf("spans do not reproduce source")
	}
}

func TestBorschMatchesCyrillicIdentifiers(t *testing.T) {
	src := `друкр("Привіт, Світе!");`
	spans := Borsch().Spans(src)

	if got := spanText(src, spans, "string"); len(got) != 1 || got[0] != `"Привіт, Світе!"` {
		t.Fatalf("expected one string literal, got %q", got)
	}
	if got := spanText(src, spans, "call"); len(got) != 1 || got[0] != "друкр" {
		t.Fatalf("expected call span without its paren, got %q", got)
	}
	if got := spanText(src, spans, "separator"); len(got) != 1 || got[0] != ";" {
		t.Fatalf("expected trailing separator, got %q", got)
	}
}

func TestLaterRulesPaintOverEarlier(t *testing.T) {
	src := "// 42 коментар\nx = 42"
	spans := Borsch().Spans(src)

	if got := spanText(src, spans, "line-comment"); len(got) != 1 || got[0] != "// 42 коментар" {
		t.Fatalf("expected comment to cover its number, got %q", got)
	}
	if got := spanText(src, spans, "number"); len(got) != 1 || got[0] != "42" {
		t.Fatalf("expected only the bare number, got %q", got)
	}
}

func TestKeywordsAndSpecialNames(t *testing.T) {
	src := "якщо істина { повернути __рядок__ }"
	spans := Borsch().Spans(src)

	got := spanText(src, spans, "keyword")
	want := []string{"якщо", "істина", "повернути"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("expected keywords %q, got %q", want, got)
	}
	if special := spanText(src, spans, "special"); len(special) != 1 || special[0] != "__рядок__" {
		t.Fatalf("expected special name, got %q", special)
	}
}

func TestRenderWithoutColourIsIdentity(t *testing.T) {
	src := "цикл {\n}\n"
	if got := Borsch().Render(src, false); got != src {
		t.Fatalf("expected source unchanged, got %q", got)
	}
}

func TestRenderClosesStylesAtNewlines(t *testing.T) {
	rs := NewRuleset(nil, Rule{Name: "all", Pattern: regexp.MustCompile(`(?s).+`), Style: text.Colors{text.FgGreen}})
	got := rs.Render("a\nb", true)
	want := text.Colors{text.FgGreen}.Sprint("a") + "\n" + text.Colors{text.FgGreen}.Sprint("b")
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestNewRulesetCopiesInput(t *testing.T) {
	rules := []Rule{{Name: "digit", Pattern: regexp.MustCompile(`\d`)}}
	rs := NewRuleset(nil, rules...)
	rules[0].Name = "changed"

	if rs.Rules()[0].Name != "digit" {
		t.Fatal("ruleset shares storage with caller")
	}
	copied := rs.Rules()
	copied[0].Name = "changed"
	if rs.Rules()[0].Name != "digit" {
		t.Fatal("Rules exposes internal storage")
	}
}
