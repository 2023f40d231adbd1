package promptstyle

import "strings"

const marker = "ARTSPACE_PROMPT_STYLE_V1"

// ApplySystem prepends the shared guidance block to a system prompt. Prompts
// that already carry it are returned unchanged.
func ApplySystem(system string) string {
	base := strings.TrimSpace(system)
	if base == "" || strings.Contains(base, marker) {
		return base
	}

	var b strings.Builder
	b.WriteString(marker)
	b.WriteString("\nYou write for ArtSpace, a gallery and exhibition guide.")
	b.WriteString("\nFollow the system and user instructions precisely.")
	b.WriteString("\nUse only the facts given about artworks, exhibitions and galleries; never invent artists, dates or prices.")
	b.WriteString("\nIf information is missing, say so briefly.")
	b.WriteString("\nAnswer in the language of the user's message.")
	b.WriteString("\n---\n")
	b.WriteString(base)
	return strings.TrimSpace(b.String())
}
