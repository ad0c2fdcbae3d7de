package i18n

// chineseMessages contains all Simplified Chinese messages.
var chineseMessages = map[string]string{
	// Command replies
	"music.unsupported_platform": "目前不支持平台 %s。",
	"music.missing_keyword":      "请输入歌曲相关信息。",
	"music.search_failed":        "点歌失败，请尝试更换平台。",
	"music.invalid_index":        "请输入正确的序号。",
	"music.invalid_options":      "参数错误：%s\n用法：%s",
	"music.usage":                "用法：%s",

	// Candidate list
	"list.header":        "我们找到了多个可能符合条件的歌曲，请输入序号进行选择：",
	"list.image_caption": "请输入序号以进行选择，输入其他文本视为退出：",
	"list.column_index":  "编号",
	"list.column_title":  "名称",
	"list.column_artist": "歌手",
	"list.footer":        "Generated by %s",

	// Button texts
	"button.open_song": "🎵 打开歌曲",
}
