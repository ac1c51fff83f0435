/*
Package tagging implements the deterministic keyword classifier for ASMR videos.

Tags are plain string identifiers drawn from a closed vocabulary: trigger
types, talking styles, roleplay scenes, and (for voting only) language codes.
The classifier evaluates an injectable RuleTable against lowercase search
bags built from a video's title, description, and creator labels.
*/
package tagging

import "sort"

// Talking style tags.
const (
	Whisper    = "whisper"
	SoftSpoken = "soft_spoken"
	NoTalking  = "no_talking"
)

// Trigger tags.
const (
	Tapping     = "tapping"
	Scratching  = "scratching"
	Crinkling   = "crinkling"
	Brushing    = "brushing"
	EarCleaning = "ear_cleaning"
	MouthSounds = "mouth_sounds"
	WhiteNoise  = "white_noise"
	Binaural    = "binaural"
	VisualASMR  = "visual_asmr"
	Layered     = "layered"
)

// Roleplay tags. Roleplay is the parent implied by every scene tag.
const (
	Roleplay  = "roleplay"
	RPHaircut = "rp_haircut"
	RPCranial = "rp_cranial"
	RPDentist = "rp_dentist"
)

// Language codes produced by catalog language detection.
const (
	LangEnglish  = "en"
	LangJapanese = "ja"
	LangKorean   = "ko"
	LangChinese  = "zh"
)

var contentTags = map[string]bool{
	Whisper: true, SoftSpoken: true, NoTalking: true,
	Tapping: true, Scratching: true, Crinkling: true, Brushing: true,
	EarCleaning: true, MouthSounds: true, WhiteNoise: true, Binaural: true,
	VisualASMR: true, Layered: true,
	Roleplay: true, RPHaircut: true, RPCranial: true, RPDentist: true,
}

var languageTags = map[string]bool{
	LangEnglish: true, LangJapanese: true, LangKorean: true, LangChinese: true,
}

// IsContentTag reports whether tag is a classifier tag.
func IsContentTag(tag string) bool {
	return contentTags[tag]
}

// IsLanguage reports whether code is one of the detected language codes.
func IsLanguage(code string) bool {
	return languageTags[code]
}

// IsVotable reports whether users may vote on tag. Language codes are
// votable so that users can downvote a language classification.
func IsVotable(tag string) bool {
	return contentTags[tag] || languageTags[tag]
}

// ContentTags returns the classifier vocabulary in sorted order.
func ContentTags() []string {
	return sortedKeys(contentTags)
}

// VotableTags returns every tag accepted by the vote boundary in sorted order.
func VotableTags() []string {
	all := make(map[string]bool, len(contentTags)+len(languageTags))
	for k := range contentTags {
		all[k] = true
	}
	for k := range languageTags {
		all[k] = true
	}
	return sortedKeys(all)
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
