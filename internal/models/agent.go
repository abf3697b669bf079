package models

// Gender is an agent's stated gender.
type Gender string

const (
	GenderMale      Gender = "Male"
	GenderFemale    Gender = "Female"
	GenderNonBinary Gender = "Non-binary"
)

// AllGenders lists genders in display order.
var AllGenders = []Gender{GenderMale, GenderFemale, GenderNonBinary}

// Valid reports whether g is a known gender.
func (g Gender) Valid() bool { return contains(AllGenders, g) }

// Emotion is the mood an agent is currently in.
type Emotion string

const (
	EmotionHappy      Emotion = "Happy / Cheerful"
	EmotionCalm       Emotion = "Calm / Serene"
	EmotionEmpathetic Emotion = "Empathetic / Compassionate"
	EmotionEnergetic  Emotion = "Energetic / Enthusiastic"
	EmotionSarcastic  Emotion = "Sarcastic / Witty"
	EmotionPlayful    Emotion = "Playful / Mischievous"
	EmotionSerious    Emotion = "Serious / Logical"
	EmotionPassionate Emotion = "Passionate / Bold"
	EmotionCurious    Emotion = "Curious / Inquisitive"
	EmotionHopeful    Emotion = "Hopeful / Optimistic"
	EmotionReserved   Emotion = "Reserved / Shy"
	EmotionFriendly   Emotion = "Friendly / Supportive"
	EmotionWarm       Emotion = "Warm / Caring"
	EmotionExcited    Emotion = "Excited / Joyful"
	EmotionFocused    Emotion = "Focused / Determined"
	EmotionNeutral    Emotion = "Neutral"
)

// AllEmotions lists emotions in display order.
var AllEmotions = []Emotion{
	EmotionHappy, EmotionCalm, EmotionEmpathetic, EmotionEnergetic,
	EmotionSarcastic, EmotionPlayful, EmotionSerious, EmotionPassionate,
	EmotionCurious, EmotionHopeful, EmotionReserved, EmotionFriendly,
	EmotionWarm, EmotionExcited, EmotionFocused, EmotionNeutral,
}

// Valid reports whether e is a known emotion.
func (e Emotion) Valid() bool { return contains(AllEmotions, e) }

// Profession is an agent's occupation.
type Profession string

const (
	ProfessionFriend              Profession = "Friend"
	ProfessionBusinessConsultant  Profession = "Business Consultant"
	ProfessionLawyer              Profession = "Lawyer"
	ProfessionActorModel          Profession = "Actor / Model"
	ProfessionPilot               Profession = "Commercial Pilot / Cabin Crew"
	ProfessionDoctor              Profession = "Medical Doctor"
	ProfessionSoftwareEngineer    Profession = "Software Engineer"
	ProfessionNurse               Profession = "Nurse"
	ProfessionTeacher             Profession = "Teacher"
	ProfessionScientist           Profession = "Scientist"
	ProfessionArtist              Profession = "Artist"
	ProfessionSalesRepresentative Profession = "Sales Representative"
	ProfessionCustomerService     Profession = "Customer Service Representative"
	ProfessionMarketingManager    Profession = "Marketing Manager"
	ProfessionDataScientist       Profession = "Data Scientist"
	ProfessionAISpecialist        Profession = "AI/Machine Learning Specialist"
)

// AllProfessions lists professions in display order.
var AllProfessions = []Profession{
	ProfessionFriend, ProfessionBusinessConsultant, ProfessionLawyer,
	ProfessionActorModel, ProfessionPilot, ProfessionDoctor,
	ProfessionSoftwareEngineer, ProfessionNurse, ProfessionTeacher,
	ProfessionScientist, ProfessionArtist, ProfessionSalesRepresentative,
	ProfessionCustomerService, ProfessionMarketingManager,
	ProfessionDataScientist, ProfessionAISpecialist,
}

// Valid reports whether p is a known profession.
func (p Profession) Valid() bool { return contains(AllProfessions, p) }

// PersonalityTrait is one behavioural trait an agent can carry.
type PersonalityTrait string

const (
	TraitSupportive    PersonalityTrait = "Supportive"
	TraitSarcastic     PersonalityTrait = "Sarcastic"
	TraitPlayful       PersonalityTrait = "Playful"
	TraitSerious       PersonalityTrait = "Serious"
	TraitIntroverted   PersonalityTrait = "Introverted"
	TraitExtroverted   PersonalityTrait = "Extroverted"
	TraitCreative      PersonalityTrait = "Creative"
	TraitAnalytical    PersonalityTrait = "Analytical"
	TraitOptimistic    PersonalityTrait = "Optimistic"
	TraitPessimistic   PersonalityTrait = "Pessimistic"
	TraitPragmatic     PersonalityTrait = "Pragmatic"
	TraitIdealistic    PersonalityTrait = "Idealistic"
	TraitSpontaneous   PersonalityTrait = "Spontaneous"
	TraitMethodical    PersonalityTrait = "Methodical"
	TraitHumorous      PersonalityTrait = "Humorous"
	TraitPhilosophical PersonalityTrait = "Philosophical"
	TraitNurturing     PersonalityTrait = "Nurturing"
	TraitCompetitive   PersonalityTrait = "Competitive"
)

// AllTraits lists personality traits in display order.
var AllTraits = []PersonalityTrait{
	TraitSupportive, TraitSarcastic, TraitPlayful, TraitSerious,
	TraitIntroverted, TraitExtroverted, TraitCreative, TraitAnalytical,
	TraitOptimistic, TraitPessimistic, TraitPragmatic, TraitIdealistic,
	TraitSpontaneous, TraitMethodical, TraitHumorous, TraitPhilosophical,
	TraitNurturing, TraitCompetitive,
}

// Valid reports whether t is a known trait.
func (t PersonalityTrait) Valid() bool { return contains(AllTraits, t) }

// SpeakingStyle is the vocal tone used for speech.
type SpeakingStyle string

const (
	StyleExpressive SpeakingStyle = "Expressive"
	StyleCalm       SpeakingStyle = "Calm"
	StyleFormal     SpeakingStyle = "Formal"
	StyleCheerful   SpeakingStyle = "Cheerful"
	StyleWhispering SpeakingStyle = "Whispering"
	StyleSerious    SpeakingStyle = "Serious"
)

// AllSpeakingStyles lists speaking styles in display order.
var AllSpeakingStyles = []SpeakingStyle{
	StyleExpressive, StyleCalm, StyleFormal, StyleCheerful, StyleWhispering, StyleSerious,
}

// Valid reports whether s is a known speaking style.
func (s SpeakingStyle) Valid() bool { return contains(AllSpeakingStyles, s) }

// VoiceType selects between a prebuilt voice and a custom sample.
type VoiceType string

const (
	VoicePrebuilt VoiceType = "prebuilt"
	VoiceCustom   VoiceType = "custom"
)

// PrebuiltVoices are the voice names the backend accepts.
var PrebuiltVoices = []string{
	"Zephyr", "Puck", "Charon", "Kore", "Fenrir",
	"Aries", "Orion", "Cygnus", "Lyra", "Aquila",
}

// DefaultVoice is used when an agent has no voice configured.
const DefaultVoice = "Zephyr"

// Agent is one AI persona in the roster.
type Agent struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	Gender            Gender             `json:"gender"`
	Emotion           Emotion            `json:"emotion"`
	Profession        Profession         `json:"profession"`
	Age               int                `json:"age"`
	PersonalityTraits []PersonalityTrait `json:"personalityTraits"`
	AvatarURL         string             `json:"avatarUrl,omitempty"`
	VoiceType         VoiceType          `json:"voiceType,omitempty"`
	VoiceName         string             `json:"voiceName,omitempty"`
	SpeakingStyle     SpeakingStyle      `json:"speakingStyle,omitempty"`
	CustomVoiceURL    string             `json:"customVoiceUrl,omitempty"`
}

// Clone returns a deep copy of a.
func (a Agent) Clone() Agent {
	if a.PersonalityTraits != nil {
		a.PersonalityTraits = append([]PersonalityTrait(nil), a.PersonalityTraits...)
	}
	return a
}

// Voice returns the prebuilt voice to speak with, falling back to DefaultVoice.
func (a Agent) Voice() string {
	if a.VoiceName == "" {
		return DefaultVoice
	}
	return a.VoiceName
}

// Style returns the speaking style, falling back to Expressive.
func (a Agent) Style() SpeakingStyle {
	if a.SpeakingStyle == "" {
		return StyleExpressive
	}
	return a.SpeakingStyle
}

func contains[T comparable](list []T, v T) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
