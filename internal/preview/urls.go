package preview

import "regexp"

// Inline embeds are rendered client-side and must not trigger a preview task,
// so they are stripped from the body before URL extraction.
var (
	imageURLPattern  = regexp.MustCompile(`(?i)https?://[^\s"'<>]+\.(?:jpe?g|png|gif|bmp|webp)(?:\?[^\s"'<>]*)?`)
	videoURLPattern  = regexp.MustCompile(`(?i)https?://(?:www\.)?(?:youtube\.com/watch\?[^\s"'<>]+|youtu\.be/[^\s"'<>]+)`)
	anyURLPattern    = regexp.MustCompile(`https?://[^\s"'<>]+`)
	paramLinePattern = regexp.MustCompile(`^([A-Za-z][\w-]*):\s*(.*)$`)
)

// ExtractURLs returns the URL-like substrings of body that should get a link
// preview, in order of appearance.
func ExtractURLs(body string) []string {
	rest := imageURLPattern.ReplaceAllString(body, "")
	rest = videoURLPattern.ReplaceAllString(rest, "")
	return anyURLPattern.FindAllString(rest, -1)
}
