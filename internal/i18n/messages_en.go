package i18n

// englishMessages contains all English translations.
var englishMessages = map[string]string{
	// Command replies
	"music.unsupported_platform": "Platform %s is not supported yet.",
	"music.missing_keyword":      "Please tell me which song you are looking for.",
	"music.search_failed":        "Song request failed, please try another platform.",
	"music.invalid_index":        "Please enter a valid number.",
	"music.invalid_options":      "Invalid options: %s\nUsage: %s",
	"music.usage":                "Usage: %s",

	// Candidate list
	"list.header":        "We found several songs that may match, reply with a number to choose:",
	"list.image_caption": "Reply with a number to choose, any other text cancels:",
	"list.column_index":  "No.",
	"list.column_title":  "Title",
	"list.column_artist": "Artist",
	"list.footer":        "Generated by %s",

	// Button texts
	"button.open_song": "🎵 Open song",
}
