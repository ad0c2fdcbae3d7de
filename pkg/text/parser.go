// Package text parses chat messages into music command invocations.
package text

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/spf13/pflag"
	"golang.org/x/text/unicode/norm"
)

const (
	// CommandName is the canonical command name.
	CommandName = "music"
	// CommandAlias is the localized alias for CommandName.
	CommandAlias = "点歌"
)

var (
	// ErrInvalidOptions is returned when the command options cannot be parsed.
	ErrInvalidOptions = errors.New("invalid command options")

	// shortcuts match as prefixes, with or without a space before the keyword.
	shortcuts = []string{"来一首", "点一首", "整一首"}
)

// Invocation is a parsed music command.
type Invocation struct {
	Keyword  string // Free-text search keyword, may be empty.
	Platform string // Explicit platform override, empty when not given.
	Force    bool   // Take the top result without prompting.
	Help     bool   // Usage was requested, the other fields are empty.
}

const defaultPlatformHelp = "search platform (qq, netease)"

// Parser recognizes the music command, its alias and its shortcut phrases.
type Parser struct {
	names        map[string]struct{}
	platformHelp string
}

// Option configures a Parser.
type Option func(*Parser)

// WithPlatforms sets the platforms and default named by the -p help text.
func WithPlatforms(platforms []string, defaultPlatform string) Option {
	return func(p *Parser) {
		p.platformHelp = fmt.Sprintf("search platform (%s; default %s)",
			strings.Join(platforms, ", "), defaultPlatform)
	}
}

// NewParser creates a parser for the music command.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		names: map[string]struct{}{
			CommandName:  {},
			CommandAlias: {},
		},
		platformHelp: defaultPlatformHelp,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseCommand reports whether text addresses the music command and, if so,
// returns its invocation. The error is non-nil only for malformed options.
//
// Only -p/--platform, -f/--force and -h/--help are options. Every other token,
// including negative numbers and unknown dash words, belongs to the keyword,
// which keeps the original spelling and spacing of the message.
func (p *Parser) ParseCommand(text string) (Invocation, bool, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Invocation{}, false, nil
	}

	rest, ok := p.stripCommand(text)
	if !ok {
		return Invocation{}, false, nil
	}

	optionArgs, keyword := splitOptions(rest)

	fs, platform, force := newFlagSet(p.platformHelp)
	if err := fs.Parse(optionArgs); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return Invocation{Help: true}, true, nil
		}
		return Invocation{}, true, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}

	return Invocation{
		Keyword:  keyword,
		Platform: *platform,
		Force:    *force,
	}, true, nil
}

// Usage describes the command options for help replies.
func (p *Parser) Usage() string {
	fs, _, _ := newFlagSet(p.platformHelp)
	return CommandName + " <keyword>\n" + fs.FlagUsages()
}

// stripCommand removes the command token or shortcut phrase and returns the
// untouched remainder.
func (p *Parser) stripCommand(text string) (string, bool) {
	for _, shortcut := range shortcuts {
		if strings.HasPrefix(text, shortcut) {
			return strings.TrimSpace(strings.TrimPrefix(text, shortcut)), true
		}
	}

	end := strings.IndexFunc(text, unicode.IsSpace)
	if end < 0 {
		end = len(text)
	}

	head := strings.TrimPrefix(norm.NFKC.String(text[:end]), "/")
	// Telegram addresses commands in groups as /music@BotName.
	if name, _, found := strings.Cut(head, "@"); found {
		head = name
	}

	if _, ok := p.names[strings.ToLower(head)]; !ok {
		return "", false
	}
	return strings.TrimSpace(text[end:]), true
}

// token is a whitespace-delimited word of rest with its byte span.
type token struct {
	start, end int
}

func tokenize(rest string) []token {
	var tokens []token
	start := -1
	for i, r := range rest {
		switch {
		case unicode.IsSpace(r) && start >= 0:
			tokens = append(tokens, token{start, i})
			start = -1
		case !unicode.IsSpace(r) && start < 0:
			start = i
		}
	}
	if start >= 0 {
		tokens = append(tokens, token{start, len(rest)})
	}
	return tokens
}

// splitOptions separates option tokens, returned for flag parsing, from the
// keyword. Runs of keyword tokens keep their inner spacing; runs split by an
// option are joined with one space. Tokens after "--" are always keyword.
func splitOptions(rest string) (args []string, keyword string) {
	tokens := tokenize(rest)

	var parts []string
	runStart := -1
	closeRun := func(end int) {
		if runStart >= 0 {
			parts = append(parts, rest[runStart:end])
			runStart = -1
		}
	}

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		word := norm.NFKC.String(rest[tok.start:tok.end])

		if word == "--" {
			closeRun(tokens[max(i-1, 0)].end)
			if i+1 < len(tokens) {
				parts = append(parts, rest[tokens[i+1].start:])
			}
			break
		}

		switch optionKind(word) {
		case optionWithValue:
			closeRun(tokens[max(i-1, 0)].end)
			args = append(args, word)
			if i+1 < len(tokens) {
				i++
				args = append(args, norm.NFKC.String(rest[tokens[i].start:tokens[i].end]))
			}
		case optionStandalone:
			closeRun(tokens[max(i-1, 0)].end)
			args = append(args, word)
		default:
			if runStart < 0 {
				runStart = tok.start
			}
			if i == len(tokens)-1 {
				closeRun(tok.end)
			}
		}
	}

	return args, strings.Join(parts, " ")
}

type optionClass int

const (
	notAnOption optionClass = iota
	optionStandalone
	optionWithValue
)

func optionKind(word string) optionClass {
	switch {
	case word == "-p" || word == "--platform":
		return optionWithValue
	case strings.HasPrefix(word, "-p=") || strings.HasPrefix(word, "--platform="):
		return optionStandalone
	case word == "-f" || word == "--force" || word == "-h" || word == "--help":
		return optionStandalone
	default:
		return notAnOption
	}
}

func newFlagSet(platformHelp string) (fs *pflag.FlagSet, platform *string, force *bool) {
	fs = pflag.NewFlagSet(CommandName, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SetInterspersed(true)
	platform = fs.StringP("platform", "p", "", platformHelp)
	force = fs.BoolP("force", "f", false, "take the top result without asking")
	return fs, platform, force
}
