package persona

import "strings"

// photoKeywords triggers the photo-response path on a plain substring hit.
// Deliberately naive: no tokenization or negation handling, so "I don't
// want a photo" still matches. Korean terms first, English equivalents after.
var photoKeywords = []string{
	"사진", "셀카", "얼굴", "모습", "보여줘", "보내줘",
	"찍어", "이미지", "그림", "어떻게 생겼", "얼굴 보여",
	"photo", "selfie", "picture", "image", "drawing",
	"show me", "send me", "what do you look like",
	"your face", "appearance",
}

// WantsPhoto reports whether the utterance asks for a photo of the persona.
func WantsPhoto(utterance string) bool {
	lower := strings.ToLower(utterance)
	for _, kw := range photoKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
