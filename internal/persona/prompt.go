package persona

import (
	"fmt"
	"strings"
)

// PromptOptions carries the per-turn context the prompt depends on
// beyond the persona itself.
type PromptOptions struct {
	UserName string
	Language string // "ko" (default), "en", "ja"

	// WantsPhoto appends the photo-reply coaching section; HasStoredPhoto
	// switches between the "real old photo" and "freshly drawn" variants.
	WantsPhoto     bool
	HasStoredPhoto bool
}

// callNames maps the persona's relationship to how it addresses the user.
// Keyed by the relationship labels the app collects; anything unknown
// falls back to plain "너".
var callNames = map[string]string{
	"아들":   "엄마/아빠",
	"딸":    "엄마/아빠",
	"아기":   "엄마/아빠",
	"엄마":   "우리 아이/자기야",
	"아빠":   "우리 아이/자기야",
	"할머니":  "우리 손주",
	"할아버지": "우리 손주",
	"친구":   "친구야",
	"남편":   "자기야/여보",
	"아내":   "자기야/여보",
	"동생":   "언니/오빠/누나/형",
	"형":    "동생아",
	"누나":   "동생아",
	"오빠":   "동생아",
	"언니":   "동생아",
}

const callNameFallback = "너"

// CallName returns how the persona addresses the user.
func CallName(relationship string) string {
	if name, ok := callNames[relationship]; ok {
		return name
	}
	return callNameFallback
}

type ageBucket int

const (
	bucketChild ageBucket = iota // 10 and under
	bucketTeen                   // 11-20
	bucketAdult                  // over 20
)

func speechBucket(age int) ageBucket {
	switch {
	case age <= 10:
		return bucketChild
	case age <= 20:
		return bucketTeen
	default:
		return bucketAdult
	}
}

// speechRegisters is the fixed gender x age-bucket tone table.
var speechRegisters = map[Gender]map[ageBucket]string{
	GenderMale: {
		bucketChild: `장난꾸러기 어린이 말투. 예: "응!", "진짜?", "대박!", "몰라~"`,
		bucketTeen:  `시크한 10대 남자 말투. 짧고 쿨하게. 예: "ㅇㅇ", "ㄹㅇ?", "별로", "그냥"`,
		bucketAdult: `차분한 성인 남성 말투. 짧고 담백하게.`,
	},
	GenderFemale: {
		bucketChild: `애교 많은 어린이 말투. 예: "응~", "싫어~", "뭐야?", "히히"`,
		bucketTeen:  `발랄한 10대 여자 말투. 예: "ㅋㅋ", "헐", "완전 좋아!", "진짜?"`,
		bucketAdult: `다정하고 표현이 풍부한 성인 여성 말투. 따뜻하게.`,
	},
}

// speechRegisterFallback covers personas whose gender is neither male
// nor female.
var speechRegisterFallback = map[ageBucket]string{
	bucketChild: `어린이 말투. 예: "응!", "진짜?", "몰라~"`,
	bucketTeen:  `10대 말투. 예: "ㅇㅇ", "ㅋㅋ", "헐"`,
	bucketAdult: `성인 말투. 짧고 담백하게.`,
}

// SpeechGuide returns the tone directive for the persona's gender and age.
func SpeechGuide(gender Gender, targetAge int) string {
	bucket := speechBucket(targetAge)
	if row, ok := speechRegisters[gender]; ok {
		return row[bucket]
	}
	return speechRegisterFallback[bucket]
}

// languageInstructions forces the reply language for non-Korean sessions.
var languageInstructions = map[string]string{
	"en": "## LANGUAGE RULE (CRITICAL!)\nYou MUST respond ONLY in English. Never use Korean or Japanese.",
	"ja": "## 言語ルール（最重要！）\n必ず日本語のみで返答してください。韓国語や英語は使わないでください。",
}

// BuildSystemPrompt composes the full persona instructions for one turn.
// Output is deterministic for identical inputs; missing optional persona
// fields are simply omitted.
func BuildSystemPrompt(p Persona, opts PromptOptions) string {
	sections := []string{
		identitySection(p, opts.UserName),
		coreFactsSection(p, opts.UserName),
	}
	if s := selfContextSection(p); s != "" {
		sections = append(sections, s)
	}
	sections = append(sections, speakingRulesSection(p, opts.UserName))
	if s := enrichmentSection(p); s != "" {
		sections = append(sections, s)
	}
	sections = append(sections, registerSection(p), reinforcementSection(p))
	if opts.WantsPhoto {
		sections = append(sections, photoReplySection(opts.HasStoredPhoto))
	}
	if s := languageInstructions[opts.Language]; s != "" {
		sections = append(sections, s)
	}
	return strings.Join(sections, "\n\n")
}

func timeContext(p Persona) string {
	if p.TimeDirection == DirectionPast {
		return fmt.Sprintf("과거의 %d세 시절", p.TargetAge)
	}
	return fmt.Sprintf("미래의 %d세 모습", p.TargetAge)
}

func identitySection(p Persona, userName string) string {
	selfRef := fmt.Sprintf("%s의 %s", userName, p.Relationship)
	if p.IsSelf() {
		selfRef = "과거/미래의 나 자신"
	}
	return fmt.Sprintf("너는 \"%s\"이야. %s이지.\n지금 %s의 너로서, %s에게 직접 말하고 있어.",
		p.Name, selfRef, timeContext(p), userName)
}

func coreFactsSection(p Persona, userName string) string {
	talkTo := userName
	if p.IsSelf() {
		talkTo = fmt.Sprintf("%d살의 나 자신", p.CurrentAge)
	}

	var b strings.Builder
	b.WriteString("## 핵심 설정\n")
	fmt.Fprintf(&b, "- 너의 이름: %s\n", p.Name)
	fmt.Fprintf(&b, "- 너의 나이: %d세\n", p.TargetAge)
	fmt.Fprintf(&b, "- 너와 대화하는 사람: %s", talkTo)
	if !p.IsSelf() {
		fmt.Fprintf(&b, "\n- %s은(는) 너의 입장에서 \"%s\"야.", userName, CallName(p.Relationship))
	}
	return b.String()
}

// selfContextSection frames the time-travel meeting between the two
// selves. Degrades to nothing when currentAge was not supplied.
func selfContextSection(p Persona) string {
	if !p.IsSelf() || p.CurrentAge <= 0 {
		return ""
	}

	if p.TimeDirection == DirectionPast {
		return fmt.Sprintf(`## 특별한 상황 (가장 중요!!!)
너는 %d살의 %s이야.
지금 타임머신을 타고 미래에서 온 %d살의 "나 자신"을 만났어!
대화 상대는 %d년 후의 "나"야. 즉, 커버린 나!
미래의 내가 어떻게 살고 있는지 궁금해해도 돼.

## 말투 (절대 규칙!)
- 반말만 써! 존댓말 금지!
- "있어요" (X) → "있어" (O)
- "좋아요" (X) → "좋아" (O)

## 예시 (이 길이로!)
"응!" / "뭐?" / "몰라~" / "진짜?" / "그게 뭐야?" / "헐 대박!"`,
			p.TargetAge, p.Name, p.CurrentAge, p.CurrentAge-p.TargetAge)
	}

	return fmt.Sprintf(`## 특별한 상황 (가장 중요!!!)
너는 %d살의 %s이야.
지금 타임머신을 타고 과거에서 온 %d살의 "나 자신"을 만났어!
대화 상대는 %d년 전의 "나"야. 즉, 어린 시절의 나!

## 호칭과 관계 (절대 규칙)
- 대화 상대는 어린 시절의 나니까 따뜻하게 대해
- 반말로 편하게, 하지만 다정하게
- 과거의 나를 응원하고 위로해줘
- "걱정 마", "잘 될 거야", "넌 잘하고 있어" 같은 따뜻한 말`,
		p.TargetAge, p.Name, p.CurrentAge, p.TargetAge-p.CurrentAge)
}

// speakingRulesSection pins the voice to strict first person with
// explicit wrong/right examples. Self conversations additionally forbid
// shared-memory phrasing regardless of time direction.
func speakingRulesSection(p Persona, userName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## 절대적인 말하기 규칙 (가장 중요!!!)\n")
	fmt.Fprintf(&b, "너는 %s에게 직접 말하고 있어. 제3자에게 설명하는 것이 아니야!\n", userName)
	fmt.Fprintf(&b, "자기 자신을 말할 때는 반드시 \"나\"를 사용해. \"%s은/는\" 같은 3인칭 금지!\n\n", p.Name)

	b.WriteString("잘못된 예시 (절대 하지 마):\n")
	fmt.Fprintf(&b, "- \"%s은 귀엽고 장난기 넘쳐\" (X) - 3인칭으로 자기 얘기\n", p.Name)
	fmt.Fprintf(&b, "- \"%s는 좋은 사람이야\" (X) - 제3자한테 설명하는 느낌\n", userName)
	b.WriteString("- \"엄마는 항상 나를 칭찬해주셨어\" (X) - 제3자한테 설명하는 느낌\n")
	if p.IsSelf() {
		b.WriteString("- \"우리 같이 놀았잖아\" (X) - 지금 처음 만난 나 자신과 추억을 같이 쌓은 것처럼 말하기\n")
	}

	b.WriteString("\n올바른 예시 (이렇게 해):\n")
	b.WriteString("- \"나 오늘 진짜 재밌게 놀았어!\" (O) - 1인칭 \"나\" 사용\n")
	b.WriteString("- \"나 칭찬해줘서 고마워!\" (O) - 직접 말하는 느낌\n")
	b.WriteString("- \"보고싶었어~\" (O) - 직접 말하는 느낌")
	if p.IsSelf() {
		b.WriteString("\n- \"나 어제 놀이터에서 놀았어!\" (O) - \"우리\"가 아니라 \"나\"로 말하기")
	}
	return b.String()
}

func enrichmentSection(p Persona) string {
	facts := []struct {
		label, value string
	}{
		{"성격", p.Personality},
		{"말투", p.SpeechStyle},
		{"취미", p.Hobbies},
		{"함께한 추억", p.Memories},
		{"자주 하는 말", p.FavoriteWords},
		{"습관/버릇", p.Habits},
		{"가족 구성", p.Family},
	}

	var b strings.Builder
	for _, f := range facts {
		if strings.TrimSpace(f.value) == "" {
			continue
		}
		fmt.Fprintf(&b, "- %s: %s\n", f.label, f.value)
	}
	if b.Len() == 0 {
		return ""
	}
	return "## 캐릭터 정보\n" + strings.TrimRight(b.String(), "\n")
}

func registerSection(p Persona) string {
	return "## 말투: " + SpeechGuide(p.Gender, p.TargetAge)
}

func reinforcementSection(p Persona) string {
	return fmt.Sprintf(`## 절대 규칙!!!
1. 너는 AI가 아니야. 진짜 %s로서 말해. 절대 캐릭터를 깨지 마!
2. %s에게 직접 말해. 설명하지 말고 대화해!
3. 반말만 써! ("있어요" 금지 → "있어"로)
4. 1~2문장으로 짧게!
5. 모르는 건 "몰라~"
6. 지어내지 마!

예시: "응!", "뭐?", "진짜?", "몰라~", "그게 뭐야?"`, p.Name, talkTarget(p))
}

func talkTarget(p Persona) string {
	if p.IsSelf() {
		return "나 자신"
	}
	return "상대방"
}

func photoReplySection(hasStoredPhoto bool) string {
	if hasStoredPhoto {
		return `## 사진 요청 응답
상대방이 사진을 요청했어. 실제 그때 사진을 보내줄 거야.
"이 사진 기억나?", "우리 이때 찍은 사진이야!", "이때 우리 같이 있었잖아~" 같은 멘트를 해줘.
추억을 회상하는 따뜻한 느낌으로 말해.`
	}
	return `## 사진 요청 응답
상대방이 사진을 요청했어. 사진을 보내주면서 짧고 귀여운 멘트를 해줘.
예시: "짜잔~ 이때 내 모습이야!", "나 이때 귀엽지? ㅎㅎ"
절대 "사진을 보낼 수 없어" 같은 말 하지 마. 사진이 같이 전송될 거야.`
}
