package catalog

// Language codes produced by DetectLanguage.
const (
	LangJapanese = "ja"
	LangKorean   = "ko"
	LangChinese  = "zh"
	LangEnglish  = "en"
)

// DetectLanguage guesses a title's language from the Unicode blocks of its
// characters. Kana wins over Hangul, Hangul over CJK ideographs, so a title
// mixing kana and Hangul is always "ja". Anything else is "en".
func DetectLanguage(title string) string {
	var hangul, han bool
	for _, r := range title {
		switch {
		case isKana(r):
			return LangJapanese
		case r >= 0xAC00 && r <= 0xD7AF:
			hangul = true
		case r >= 0x4E00 && r <= 0x9FFF:
			han = true
		}
	}

	switch {
	case hangul:
		return LangKorean
	case han:
		return LangChinese
	default:
		return LangEnglish
	}
}

func isKana(r rune) bool {
	return (r >= 0x3040 && r <= 0x30FF) || (r >= 0x31F0 && r <= 0x31FF)
}
