package imagegen

import (
	"fmt"
	"strings"

	"github.com/dearxhq/dearx/internal/persona"
)

// AgeGroup buckets the portrayed age into the descriptor used by the
// image prompt.
func AgeGroup(age int) string {
	switch {
	case age <= 5:
		return "toddler"
	case age <= 12:
		return "child"
	case age <= 19:
		return "teenager"
	case age <= 30:
		return "young adult"
	case age <= 50:
		return "middle-aged adult"
	default:
		return "elderly"
	}
}

func genderTerm(g persona.Gender) string {
	if g == persona.GenderMale {
		return "boy"
	}
	return "girl"
}

// BuildImagePrompt composes the text-to-image prompt: age-bucketed
// descriptor, gender term, optional visual-feature block, and the fixed
// warm-family-photo style directives with negative constraints.
func BuildImagePrompt(p persona.Persona, visualFeatures string) string {
	features := ""
	if strings.TrimSpace(visualFeatures) != "" {
		features = fmt.Sprintf(
			"Character design reference: %s. Apply these characteristics to a %d-year-old version.",
			visualFeatures, p.TargetAge,
		)
	}

	return fmt.Sprintf(
		"A warm, heartfelt portrait photo of a Korean %s %s, approximately %d years old.\n"+
			"%s\n"+
			"Natural lighting, genuine happy smile, casual everyday Korean home setting.\n"+
			"The photo should feel like a cherished family memory, candid and authentic.\n"+
			"Soft warm color tones, high quality realistic photograph style.\n"+
			"Portrait shot focusing on face and upper body.\n"+
			"NO text, NO watermarks, NO artificial elements, NO anime style.",
		AgeGroup(p.TargetAge), genderTerm(p.Gender), p.TargetAge, features,
	)
}
