package text

import (
	"errors"
	"strings"
	"testing"
)

func TestParseCommand_Recognition(t *testing.T) {
	p := NewParser()

	tests := []struct {
		name    string
		input   string
		wantOK  bool
		wantKey string
	}{
		{"command name", "music 晴天", true, "晴天"},
		{"slash command", "/music 晴天", true, "晴天"},
		{"telegram bot suffix", "/music@SongBot 晴天", true, "晴天"},
		{"uppercase name", "MUSIC stay", true, "stay"},
		{"alias", "点歌 七里香", true, "七里香"},
		{"shortcut without space", "来一首晴天", true, "晴天"},
		{"shortcut with space", "点一首 稻香", true, "稻香"},
		{"third shortcut", "整一首夜曲", true, "夜曲"},
		{"multi word keyword", "music 晴天 周杰伦", true, "晴天 周杰伦"},
		{"inner spacing kept", "music 爱   你", true, "爱   你"},
		{"ligature kept", "music ﬁx you", true, "ﬁx you"},
		{"full-width keyword kept", "music Ｌｅｍｏｎ", true, "Ｌｅｍｏｎ"},
		{"full-width command name", "ｍｕｓｉｃ 晴天", true, "晴天"},
		{"bare command", "music", true, ""},
		{"full-width space", "点歌　晴天", true, "晴天"},
		{"unrelated text", "hello there", false, ""},
		{"prefix of another word", "musical theatre", false, ""},
		{"empty", "   ", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, ok, err := p.ParseCommand(tt.input)
			if err != nil {
				t.Fatalf("ParseCommand(%q) error = %v", tt.input, err)
			}
			if ok != tt.wantOK {
				t.Fatalf("ParseCommand(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if inv.Keyword != tt.wantKey {
				t.Errorf("keyword = %q, want %q", inv.Keyword, tt.wantKey)
			}
		})
	}
}

func TestParseCommand_Options(t *testing.T) {
	p := NewParser()

	tests := []struct {
		name         string
		input        string
		wantKeyword  string
		wantPlatform string
		wantForce    bool
	}{
		{"short platform", "music -p netease 晴天", "晴天", "netease", false},
		{"long platform", "music --platform=qq 晴天", "晴天", "qq", false},
		{"force", "music -f 晴天", "晴天", "", true},
		{"long force", "music --force 晴天", "晴天", "", true},
		{"options after keyword", "music 晴天 -p netease -f", "晴天", "netease", true},
		{"shortcut with option", "来一首 -p netease 稻香", "稻香", "netease", false},
		{"full-width option", "music －ｐ netease 晴天", "晴天", "netease", false},
		{"unknown platform value kept", "music -p kugou 晴天", "晴天", "kugou", false},
		{"terminator", "music -- -f", "-f", "", false},
		{"negative number", "music -273.15", "-273.15", "", false},
		{"unknown dash word", "music 七里香 -live", "七里香 -live", "", false},
		{"unknown flag", "music -x 晴天", "-x 晴天", "", false},
		{"platform with equals", "music -p=netease 晴天", "晴天", "netease", false},
		{"spacing kept around options", "music 爱  你 -f 周  杰伦", "爱  你 周  杰伦", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, ok, err := p.ParseCommand(tt.input)
			if err != nil {
				t.Fatalf("ParseCommand(%q) error = %v", tt.input, err)
			}
			if !ok {
				t.Fatalf("ParseCommand(%q) not recognized", tt.input)
			}
			if inv.Keyword != tt.wantKeyword {
				t.Errorf("keyword = %q, want %q", inv.Keyword, tt.wantKeyword)
			}
			if inv.Platform != tt.wantPlatform {
				t.Errorf("platform = %q, want %q", inv.Platform, tt.wantPlatform)
			}
			if inv.Force != tt.wantForce {
				t.Errorf("force = %v, want %v", inv.Force, tt.wantForce)
			}
		})
	}
}

func TestParseCommand_InvalidOptions(t *testing.T) {
	p := NewParser()

	for _, input := range []string{"music 晴天 -p", "music --platform"} {
		t.Run(input, func(t *testing.T) {
			_, ok, err := p.ParseCommand(input)
			if !ok {
				t.Fatalf("ParseCommand(%q) not recognized", input)
			}
			if !errors.Is(err, ErrInvalidOptions) {
				t.Errorf("error = %v, want ErrInvalidOptions", err)
			}
		})
	}
}

func TestParseCommand_Help(t *testing.T) {
	p := NewParser()

	for _, input := range []string{"music -h", "点歌 --help", "music 晴天 -h"} {
		t.Run(input, func(t *testing.T) {
			inv, ok, err := p.ParseCommand(input)
			if err != nil {
				t.Fatalf("ParseCommand(%q) error = %v", input, err)
			}
			if !ok || !inv.Help {
				t.Errorf("ParseCommand(%q) = %+v, %v, want help", input, inv, ok)
			}
		})
	}
}

func TestSplitOptions(t *testing.T) {
	tests := []struct {
		rest        string
		wantArgs    []string
		wantKeyword string
	}{
		{"晴天", nil, "晴天"},
		{"-p qq 晴天", []string{"-p", "qq"}, "晴天"},
		{"晴天 -p", []string{"-p"}, "晴天"},
		{"a  b -f c -- -p d", []string{"-f"}, "a  b c -p d"},
		{"－ｆ 晴天", []string{"-f"}, "晴天"},
	}

	for _, tt := range tests {
		args, keyword := splitOptions(tt.rest)
		if strings.Join(args, ",") != strings.Join(tt.wantArgs, ",") {
			t.Errorf("splitOptions(%q) args = %q, want %q", tt.rest, args, tt.wantArgs)
		}
		if keyword != tt.wantKeyword {
			t.Errorf("splitOptions(%q) keyword = %q, want %q", tt.rest, keyword, tt.wantKeyword)
		}
	}
}

func TestUsage(t *testing.T) {
	usage := NewParser().Usage()
	for _, want := range []string{"--platform", "-p", "--force", "-f"} {
		if !strings.Contains(usage, want) {
			t.Errorf("Usage() missing %q:\n%s", want, usage)
		}
	}
}

func TestUsage_WithPlatforms(t *testing.T) {
	usage := NewParser(WithPlatforms([]string{"qq", "netease"}, "netease")).Usage()
	if !strings.Contains(usage, "search platform (qq, netease; default netease)") {
		t.Errorf("Usage() lacks platform help:\n%s", usage)
	}
}
