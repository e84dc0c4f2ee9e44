package eventcategory

// ColorOption is a palette entry offered by the create form.
type ColorOption struct {
	Hex   string `json:"hex"`
	Label string `json:"label"`
}

// EmojiOption is an emoji offered by the create form.
type EmojiOption struct {
	Emoji string `json:"emoji"`
	Label string `json:"label"`
}

// ColorOptions is the preset palette.
var ColorOptions = []ColorOption{
	{Hex: "#FF6B6B", Label: "Bright Red"},
	{Hex: "#4ECDC4", Label: "Teal"},
	{Hex: "#45B7D1", Label: "Sky Blue"},
	{Hex: "#FFA07A", Label: "Light Salmon"},
	{Hex: "#98D8C8", Label: "Seafoam Green"},
	{Hex: "#FDCB6E", Label: "Mustard Yellow"},
	{Hex: "#6C5CE7", Label: "Soft Purple"},
	{Hex: "#FF85A2", Label: "Pink"},
	{Hex: "#2ECC71", Label: "Emerald Green"},
	{Hex: "#E17055", Label: "Terracotta"},
}

// EmojiOptions is the preset emoji list.
var EmojiOptions = []EmojiOption{
	{Emoji: "💰", Label: "Money (Sale)"},
	{Emoji: "👤", Label: "User (Sign-up)"},
	{Emoji: "🎉", Label: "Celebration"},
	{Emoji: "📅", Label: "Calendar"},
	{Emoji: "🚀", Label: "Launch"},
	{Emoji: "📢", Label: "Announcement"},
	{Emoji: "🎓", Label: "Graduation"},
	{Emoji: "🏆", Label: "Achievement"},
	{Emoji: "💡", Label: "Idea"},
	{Emoji: "🔔", Label: "Notification"},
}
