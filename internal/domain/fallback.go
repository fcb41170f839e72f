package domain

// Fallback thumbnail sets shown whenever a real result is unavailable. Terminal
// responses always carry a non-empty thumbnail list, so the UI never renders an
// empty state.
var fallbackThumbnails = []string{
	"https://placehold.co/1280x720/3b82f6/FFFFFF/png?text=Thumbnail+1",
	"https://placehold.co/1280x720/ef4444/FFFFFF/png?text=Thumbnail+2",
	"https://placehold.co/1280x720/22c55e/FFFFFF/png?text=Thumbnail+3",
	"https://placehold.co/1280x720/f59e0b/FFFFFF/png?text=Thumbnail+4",
	"https://placehold.co/1280x720/8b5cf6/FFFFFF/png?text=Thumbnail+5",
}

var processingThumbnails = []string{
	"https://placehold.co/1280x720/3b82f6/FFFFFF/png?text=Processing+1",
	"https://placehold.co/1280x720/ef4444/FFFFFF/png?text=Processing+2",
	"https://placehold.co/1280x720/22c55e/FFFFFF/png?text=Processing+3",
	"https://placehold.co/1280x720/f59e0b/FFFFFF/png?text=Processing+4",
	"https://placehold.co/1280x720/8b5cf6/FFFFFF/png?text=Processing+5",
}

// FallbackThumbnails returns a copy of the placeholder set used on failures.
func FallbackThumbnails() []string {
	return append([]string(nil), fallbackThumbnails...)
}

// ProcessingThumbnails returns a copy of the placeholder set shown while a job
// is still pending.
func ProcessingThumbnails() []string {
	return append([]string(nil), processingThumbnails...)
}

// PadThumbnails fills results with fallback entries until ThumbnailCount is
// reached. Results beyond the count are kept as-is.
func PadThumbnails(results []string) []string {
	out := append([]string(nil), results...)
	for i := 0; len(out) < ThumbnailCount; i++ {
		out = append(out, fallbackThumbnails[i%len(fallbackThumbnails)])
	}
	return out
}
