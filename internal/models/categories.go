package models

var Categories = []string{"fiction", "non-fiction", "poetry", "mystery", "romance", "sci-fi"}

func IsCategory(value string) bool {
	for _, c := range Categories {
		if c == value {
			return true
		}
	}
	return false
}

const (
	LanguageArabic  = "ar"
	LanguageEnglish = "en"
)

type LanguagePreference struct {
	Language  string `json:"language"`
	Direction string `json:"dir"`
}

func NewLanguagePreference(lang string) LanguagePreference {
	if lang == LanguageEnglish {
		return LanguagePreference{Language: LanguageEnglish, Direction: "ltr"}
	}
	return LanguagePreference{Language: LanguageArabic, Direction: "rtl"}
}
