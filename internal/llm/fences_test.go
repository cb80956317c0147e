package llm

import "testing"

func TestStripCodeFences(t *testing.T) {
	cases := map[string]string{
		"```json\n{\"a\":1}\n```":  `{"a":1}`,
		"```JSON\n{\"a\":1}\n```":  `{"a":1}`,
		"```\n[1,2]\n```":          `[1,2]`,
		"```json {\"a\":1}```":     `{"a":1}`,
		"```{\"a\":1}```":          `{"a":1}`,
		"  {\"a\":1}  ":            `{"a":1}`,
		"{\"a\":1}\n```":           `{"a":1}`,
		"```json\n{\"a\":\n1}\n```": "{\"a\":\n1}",
	}
	for in, want := range cases {
		if got := StripCodeFences(in); got != want {
			t.Errorf("StripCodeFences(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseJSON(t *testing.T) {
	got, err := ParseJSON("```json\n{ \"a\" : 1 }\n```")
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if string(got) != `{"a":1}` {
		t.Fatalf("unexpected %s", got)
	}

	if _, err := ParseJSON("```json\n```"); err == nil {
		t.Fatalf("expected error for empty fenced block")
	}
}
