package docent

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Starry Night!! 2025", "starry_night_2025"},
		{"  Water   Lilies ", "water_lilies"},
		{"별이 빛나는 밤", "별이_빛나는_밤"},
		{"Self-Portrait (1889)", "self-portrait_1889"},
		{"!!!", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Slugify(tc.in); got != tc.want {
			t.Fatalf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSlugifyIsStableAndBounded(t *testing.T) {
	in := "Starry Night!! 2025"
	first := Slugify(in)
	for i := 0; i < 5; i++ {
		if got := Slugify(in); got != first {
			t.Fatalf("Slugify not stable: %q vs %q", got, first)
		}
	}
	if first != strings.ToLower(first) || strings.ContainsAny(first, "! ") {
		t.Fatalf("slug not normalized: %q", first)
	}

	long := strings.Repeat("가나다라마", 20)
	got := Slugify(long)
	if n := utf8.RuneCountInString(got); n != 40 {
		t.Fatalf("expected 40 runes, got %d", n)
	}
	if !utf8.ValidString(got) {
		t.Fatalf("truncation produced invalid utf-8")
	}
}

func TestMediaBaseNameAndPaths(t *testing.T) {
	base := MediaBaseName(7, "Starry Night!! 2025", 1700000000)
	if base != "7_starry_night_2025_1700000000" {
		t.Fatalf("base = %q", base)
	}
	if got := MediaBaseName(7, "???", 1700000000); got != "7_1700000000" {
		t.Fatalf("base without slug = %q", got)
	}
	if got := AudioPath(base); got != "docent/mp3/7_starry_night_2025_1700000000.mp3" {
		t.Fatalf("audio path = %q", got)
	}
	if got := VideoPath(base); got != "docent/video/7_starry_night_2025_1700000000.mp4" {
		t.Fatalf("video path = %q", got)
	}
	if got := ArtImagePath("3_1700000000", ".JPEG"); got != "art/3_1700000000.jpg" {
		t.Fatalf("art path = %q", got)
	}
}

func TestAvatarCachePath(t *testing.T) {
	a := AvatarCachePath("https://img.test/works/1.png?size=large")
	b := AvatarCachePath("https://img.test/works/1.png?size=large")
	c := AvatarCachePath("https://img.test/works/2.png")
	if a != b {
		t.Fatalf("cache path must be deterministic")
	}
	if a == c {
		t.Fatalf("different urls must not collide")
	}
	if !strings.HasPrefix(a, "docent/tmp/avatar_") || !strings.HasSuffix(a, ".png") {
		t.Fatalf("unexpected cache path %q", a)
	}
	if len(strings.TrimSuffix(strings.TrimPrefix(a, "docent/tmp/avatar_"), ".png")) != 16 {
		t.Fatalf("expected 16 hex chars in %q", a)
	}
	if got := AvatarCachePath("https://img.test/render"); !strings.HasSuffix(got, ".jpg") {
		t.Fatalf("expected default .jpg ext, got %q", got)
	}
}

func TestBuildPromptTruncatesPreview(t *testing.T) {
	script := strings.Repeat("가", 100)
	p := BuildPrompt(script, 80)
	if !strings.Contains(p, strings.Repeat("가", 80)) || strings.Contains(p, strings.Repeat("가", 81)) {
		t.Fatalf("preview not truncated to 80 runes: %q", p)
	}
	if got := BuildPrompt("short\n script", 80); !strings.Contains(got, `"short script"`) {
		t.Fatalf("whitespace not collapsed: %q", got)
	}
}
