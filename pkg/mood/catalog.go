package mood

// Track is a music track suggested for a mood. Playback lives outside this module.
type Track struct {
	Name     string `json:"name"`
	Filename string `json:"filename"`
	Mood     Mood   `json:"mood"`
}

// Emoji returns the emoji shown next to the mood.
func (m Mood) Emoji() string {
	switch m {
	case Happy:
		return "😊"
	case Calm:
		return "😌"
	case Sad:
		return "😢"
	case Angry:
		return "😠"
	default:
		return "😐"
	}
}

// Description returns a short user-facing line for the mood.
func (m Mood) Description() string {
	switch m {
	case Happy:
		return "You're feeling great!"
	case Calm:
		return "You're in a peaceful state"
	case Sad:
		return "Let's lift your spirits"
	case Angry:
		return "Let's help you relax"
	default:
		return "You're feeling balanced"
	}
}

// Tracks returns the suggested playlist for the mood. Sad and Angry moods mix
// in tracks from gentler moods.
func (m Mood) Tracks() []Track {
	switch m {
	case Happy:
		return []Track{
			{"Joyful Vibes", "happy1", Happy},
			{"Sunshine Day", "happy2", Happy},
			{"Happy Moments", "happy3", Happy},
		}
	case Calm:
		return []Track{
			{"Ocean Waves", "calm1", Calm},
			{"Forest Breeze", "calm2", Calm},
			{"Peaceful Mind", "calm3", Calm},
		}
	case Sad:
		return []Track{
			{"Rise Up", "uplifting1", Sad},
			{"New Beginnings", "uplifting2", Sad},
			{"Hope Restored", "uplifting3", Sad},
			{"Joyful Vibes", "happy1", Happy},
			{"Sunshine Day", "happy2", Happy},
		}
	case Angry:
		return []Track{
			{"Calm Waters", "soothing1", Angry},
			{"Inner Peace", "soothing2", Angry},
			{"Serenity Now", "soothing3", Angry},
			{"Peaceful Mind", "calm3", Calm},
			{"Joyful Vibes", "happy1", Happy},
		}
	default:
		return []Track{
			{"Ambient Flow", "neutral1", Neutral},
			{"Gentle Rhythm", "neutral2", Neutral},
			{"Balanced Energy", "neutral3", Neutral},
		}
	}
}

// Info bundles the presentation metadata for one mood.
type Info struct {
	Mood        Mood    `json:"mood"`
	Emoji       string  `json:"emoji"`
	Description string  `json:"description"`
	Tracks      []Track `json:"tracks"`
}

// Catalog returns presentation metadata for every mood in ordinal order.
func Catalog() []Info {
	out := make([]Info, 0, Count)
	for _, m := range All() {
		out = append(out, Info{
			Mood:        m,
			Emoji:       m.Emoji(),
			Description: m.Description(),
			Tracks:      m.Tracks(),
		})
	}
	return out
}
