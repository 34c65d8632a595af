// Package prompts holds the prompt templates for single-page app generation.
package prompts

import (
	"fmt"
	"strings"
)

// InitialSiteSystem is the round-1 instruction: one self-contained HTML file,
// no prose around the code.
func InitialSiteSystem() string {
	return "You are an expert web developer. Your task is to create a single, complete HTML file " +
		"based on a user's brief. The file must contain all necessary HTML, CSS, and JavaScript inline. " +
		"Use only CDN-hosted libraries if any dependency is needed. Use semantic, accessible markup " +
		"(landmarks, labels, alt text). Do not add any explanations or comments outside of the code. " +
		"Respond ONLY with the raw HTML code."
}

// ReviseSiteSystem is the round-N instruction: preserve what works, layer in
// the new requirement, return the full updated file.
func ReviseSiteSystem() string {
	return "You are an expert web developer. Your task is to update an existing HTML file based on " +
		"a new brief. The user will provide the original code and the new requirements. Preserve the " +
		"existing behavior and layer in the new requirement. Respond ONLY with the full, updated raw " +
		"HTML code. Do not add any explanations."
}

// InitialSiteUser renders the round-1 user prompt. Attachment names are
// listed so the generated page can reference them by relative path.
func InitialSiteUser(brief string, attachmentNames []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "BRIEF: %q", brief)
	if len(attachmentNames) > 0 {
		b.WriteString("\n\nThe following files are committed alongside index.html and may be referenced by relative path:")
		for _, name := range attachmentNames {
			b.WriteString("\n- ")
			b.WriteString(name)
		}
	}
	return b.String()
}

// ReviseSiteUser renders the round-N user prompt with the existing artifact
// supplied verbatim.
func ReviseSiteUser(brief, existingCode string) string {
	return fmt.Sprintf("BRIEF: %q\n\nORIGINAL CODE:\n---\n%s", brief, existingCode)
}
