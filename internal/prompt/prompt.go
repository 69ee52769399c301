// Package prompt builds generation prompts from slide text. It parses @Name
// entity references, assembles the final prompt with validation, and gathers
// reference images. Pure text transformation, no I/O.
package prompt

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/deckforge/deckforge/internal/store"
)

// MaxPromptLength bounds the assembled prompt. Oversize prompts are rejected
// before any external call so quota is never spent on a guaranteed-invalid
// request.
const MaxPromptLength = 4000

// qualitySuffix is appended to every generation prompt.
const qualitySuffix = "High quality, detailed illustration. 16:9 widescreen aspect ratio."

// entityToken matches @Name references: alphanumeric runs joined by internal
// hyphens. Greedy matching over the full identifier class gives longest-token
// correctness, so @Bob never consumes part of @Bob-Jr.
var entityToken = regexp.MustCompile(`@([A-Za-z0-9]+(?:-[A-Za-z0-9]+)*)`)

// ParseResult is the outcome of resolving @Name tokens in one text.
type ParseResult struct {
	// Text is the input with every resolved token replaced by the entity's
	// display name. Unresolved tokens are left untouched.
	Text string
	// Resolved lists the entity names that were matched, in order of first use.
	Resolved []string
	// Unknown lists referenced names with no matching entity, deduplicated.
	Unknown []string
}

// ParseEntityReferences resolves @Name tokens against the merged entity map.
// Lookup is case-sensitive first, then falls back to a case-insensitive scan.
func ParseEntityReferences(text string, entities map[string]store.Entity) ParseResult {
	result := ParseResult{}
	seenResolved := map[string]bool{}
	seenUnknown := map[string]bool{}

	result.Text = entityToken.ReplaceAllStringFunc(text, func(token string) string {
		name := token[1:]
		entity, ok := lookupEntity(name, entities)
		if !ok {
			if !seenUnknown[name] {
				seenUnknown[name] = true
				result.Unknown = append(result.Unknown, name)
			}
			return token
		}
		if !seenResolved[entity.Name] {
			seenResolved[entity.Name] = true
			result.Resolved = append(result.Resolved, entity.Name)
		}
		return entity.DisplayName()
	})
	return result
}

func lookupEntity(name string, entities map[string]store.Entity) (store.Entity, bool) {
	if e, ok := entities[name]; ok {
		return e, true
	}
	for key, e := range entities {
		if strings.EqualFold(key, name) {
			return e, true
		}
	}
	return store.Entity{}, false
}

// ReferenceImage names one entity image to pass to the provider as a visual
// reference, with a human-readable label for the prompt.
type ReferenceImage struct {
	Filename string
	Label    string
}

// ReferencedEntityImages returns, for each resolved @Name reference in text,
// the entity's first backing image plus its display label. Entities without
// any image are silently skipped: a partially-configured entity still
// resolves in text, it just contributes no reference image.
func ReferencedEntityImages(text string, entities map[string]store.Entity) []ReferenceImage {
	parsed := ParseEntityReferences(text, entities)
	var refs []ReferenceImage
	for _, name := range parsed.Resolved {
		entity := entities[name]
		if len(entity.Images) == 0 {
			continue
		}
		refs = append(refs, ReferenceImage{
			Filename: entity.Images[0],
			Label:    entity.DisplayName(),
		})
	}
	return refs
}

// BuildFullPrompt assembles the final generation prompt: visual style, theme
// guidance when theme images exist, the entity-resolved description, and a
// fixed quality/aspect-ratio suffix. Both hard preconditions (something to
// render, and a bounded length) are checked here, before any external call.
func BuildFullPrompt(visualStyle, imageDescription string, entities map[string]store.Entity, themeImageCount int) (string, ParseResult, error) {
	if strings.TrimSpace(visualStyle) == "" && strings.TrimSpace(imageDescription) == "" {
		return "", ParseResult{}, &store.ValidationError{Msg: "nothing to render: both visual style and image description are empty"}
	}

	parsed := ParseEntityReferences(imageDescription, entities)

	var b strings.Builder
	if strings.TrimSpace(visualStyle) != "" {
		b.WriteString(strings.TrimSpace(visualStyle))
		b.WriteString("\n\n")
	}
	if themeImageCount > 0 {
		fmt.Fprintf(&b, "Match the mood, palette and style of the %d attached theme reference images.\n\n", themeImageCount)
	}
	if strings.TrimSpace(parsed.Text) != "" {
		b.WriteString(strings.TrimSpace(parsed.Text))
		b.WriteString("\n\n")
	}
	b.WriteString(qualitySuffix)

	full := b.String()
	if len(full) > MaxPromptLength {
		return "", parsed, &store.ValidationError{Msg: fmt.Sprintf("assembled prompt is %d characters, maximum is %d", len(full), MaxPromptLength)}
	}
	return full, parsed, nil
}
