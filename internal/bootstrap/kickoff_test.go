package bootstrap

import (
	"testing"

	"github.com/viur-framework/flare/internal/fetch"
)

func TestSynthesizeKickoffGuardsOptionalModules(t *testing.T) {
	modules := []fetch.Module{
		{Name: "core"},
		{Name: "extra", Optional: true},
		{Name: "ui"},
	}
	cases := []struct {
		name  string
		style GuardStyle
		want  string
	}{
		{
			name:  "try",
			style: GuardTry,
			want:  "import ui\ntry:\n    import extra\nexcept Exception:\n    pass\nimport core\nmain()\n",
		},
		{
			name:  "find_spec",
			style: GuardFindSpec,
			want:  "import importlib.util\nimport ui\nif importlib.util.find_spec(\"extra\") is not None:\n    import extra\nimport core\nmain()\n",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SynthesizeKickoff(modules, tc.style, "main()")
			if got != tc.want {
				t.Fatalf("生成代码不符合预期:\n%s", got)
			}
		})
	}
}

func TestSynthesizeKickoffPrependsImports(t *testing.T) {
	modules := []fetch.Module{{Name: "a"}, {Name: "b"}, {Name: "c"}, {Name: "d"}}
	got := SynthesizeKickoff(modules, GuardTry, "main()")
	want := "import d\nimport c\nimport b\nimport a\nmain()\n"
	if got != want {
		t.Fatalf("import 应按前置顺序排列:\n%s", got)
	}
}

func TestSynthesizeKickoffWithoutKickoff(t *testing.T) {
	got := SynthesizeKickoff([]fetch.Module{{Name: "core"}}, GuardTry, "")
	if got != "import core\n" {
		t.Fatalf("unexpected code: %q", got)
	}
	if SynthesizeKickoff(nil, GuardTry, "run()\n") != "run()\n" {
		t.Fatalf("kickoff should be kept verbatim")
	}
}

func TestParseGuardStyle(t *testing.T) {
	if style, err := ParseGuardStyle(""); err != nil || style != GuardTry {
		t.Fatalf("empty style should default to try: %v %v", style, err)
	}
	if style, err := ParseGuardStyle("find_spec"); err != nil || style != GuardFindSpec {
		t.Fatalf("find_spec should parse: %v %v", style, err)
	}
	if _, err := ParseGuardStyle("maybe"); err == nil {
		t.Fatalf("unknown style should fail")
	}
}
