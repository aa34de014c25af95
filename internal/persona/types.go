package persona

import (
	"errors"
	"fmt"
	"strings"
)

// RelationshipSelf marks a conversation with one's own past or future self.
const RelationshipSelf = "self"

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

type TimeDirection string

const (
	DirectionPast   TimeDirection = "past"
	DirectionFuture TimeDirection = "future"
)

// Persona describes the person being impersonated for one conversation.
// Optional enrichment fields are folded into the system prompt verbatim
// when present; photo fields hold URLs or inline-encoded image data.
type Persona struct {
	Name          string        `json:"name"`
	Relationship  string        `json:"relationship"`
	TargetAge     int           `json:"targetAge"`
	CurrentAge    int           `json:"currentAge,omitempty"`
	Gender        Gender        `json:"gender"`
	TimeDirection TimeDirection `json:"timeDirection"`

	Personality   string `json:"personality,omitempty"`
	SpeechStyle   string `json:"speechStyle,omitempty"`
	Hobbies       string `json:"hobbies,omitempty"`
	Memories      string `json:"memories,omitempty"`
	FavoriteWords string `json:"favoriteWords,omitempty"`
	Habits        string `json:"habits,omitempty"`
	Family        string `json:"family,omitempty"`

	Photo        string `json:"photo,omitempty"`
	PastPhoto    string `json:"pastPhoto,omitempty"`
	CurrentPhoto string `json:"currentPhoto,omitempty"`
}

// IsSelf reports whether the persona is the user's own past/future self.
func (p Persona) IsSelf() bool {
	return p.Relationship == RelationshipSelf
}

// UploadedPhoto returns the first stored photo reference, if any.
func (p Persona) UploadedPhoto() string {
	for _, ref := range []string{p.PastPhoto, p.Photo, p.CurrentPhoto} {
		if strings.TrimSpace(ref) != "" {
			return ref
		}
	}
	return ""
}

var ErrInvalidPersona = errors.New("invalid persona")

// Validate checks the fields every conversation requires. Optional
// enrichment and photo fields are never validated; their absence only
// degrades the prompt, it must not fail the turn.
func (p Persona) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidPersona)
	}
	if strings.TrimSpace(p.Relationship) == "" {
		return fmt.Errorf("%w: relationship is required", ErrInvalidPersona)
	}
	if p.TargetAge <= 0 {
		return fmt.Errorf("%w: targetAge must be positive", ErrInvalidPersona)
	}
	switch p.TimeDirection {
	case DirectionPast, DirectionFuture:
	default:
		return fmt.Errorf("%w: timeDirection must be past or future", ErrInvalidPersona)
	}
	return nil
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one role-tagged utterance. The full transcript is supplied on
// every request, oldest first, with the newest user utterance last.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// LastUserUtterance returns the content of the newest user turn.
func LastUserUtterance(turns []Turn) string {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == RoleUser {
			return turns[i].Content
		}
	}
	return ""
}

// Reply is the assembled outcome of one conversation turn. An empty
// ImageURL means no photo accompanies the message.
type Reply struct {
	Message  string
	ImageURL string
}
