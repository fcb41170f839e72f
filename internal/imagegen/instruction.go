package imagegen

import (
	"fmt"
	"strings"
)

// BuildInstruction wraps the raw user prompt with the fixed thumbnail design
// guidelines: 16:9 framing, central safe zone, and a hard rule against
// inventing elements the user did not ask for.
func BuildInstruction(userPrompt string) string {
	userPrompt = strings.TrimSpace(userPrompt)

	var b strings.Builder
	fmt.Fprintf(&b, "Generate a professional, high-click-through-rate YouTube thumbnail based ONLY on the following user request: %q.\n\n", userPrompt)

	b.WriteString("CRITICAL GUIDELINES FOR THE THUMBNAIL:\n")
	b.WriteString("1. Aspect Ratio & Safe Zone: design for a 16:9 aspect ratio. All critical visual elements (faces, main objects, all text) MUST be clearly visible within the central 80% of the image. Edges may be cropped; do NOT place important details near the absolute edges.\n")
	fmt.Fprintf(&b, "2. Subject Matter: the main subject(s) and action(s) MUST be directly derived from the user's request: %q. DO NOT add people, faces, specific text, or objects unless they are EXPLICITLY mentioned in the user's request.\n", userPrompt)
	b.WriteString("3. Visual Quality & Composition: crystal clear, professional quality, excellent lighting and depth. High-impact, attention-grabbing layout with a clean, uncluttered design.\n")
	b.WriteString("4. Human Elements (ONLY IF IN USER PROMPT): natural, expressive faces conveying authentic emotion, positioned within the central safe zone.\n")
	b.WriteString("5. Text Elements (ONLY IF IN USER PROMPT): render requested text with perfect clarity at thumbnail size using dynamic, high-contrast typography. DO NOT invent text if none is provided.\n")
	b.WriteString("6. Overall Style & Finish: cohesive, professional color grading; balanced contrast and brightness for visibility on YouTube.\n\n")
	fmt.Fprintf(&b, "Final Check: re-read the user's request (%q) and ensure ONLY the elements they asked for are the primary focus.", userPrompt)

	return b.String()
}
