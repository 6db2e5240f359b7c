package recommend

import "maps"

var defaultReasons = map[string]string{
	"computer-science":        "You show strong interest in technology and programming",
	"medicine":                "You demonstrate compassion and interest in healthcare",
	"engineering":             "Your practical and innovative mindset aligns well",
	"pharmacy":                "Your scientific curiosity and attention to detail shine through",
	"law":                     "Your analytical and argumentative skills are evident",
	"mass-communication":      "Your creative and communicative nature stands out",
	"accounting":              "Your numerical aptitude and attention to detail are clear",
	"marketing":               "Your creativity and people skills are prominent",
	"business-administration": "Your leadership and strategic thinking abilities show",
	"economics":               "Your analytical mind and interest in data are apparent",
}

// DefaultReasons returns a copy of the built-in trait to sentence table.
func DefaultReasons() map[string]string {
	return maps.Clone(defaultReasons)
}
