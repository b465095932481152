package ai

import (
	"strings"

	"cims/models"
)

// CategorizeText classifies complaint text into a complaint category using
// keyword heuristics. Water keywords are checked before electricity, then PWD;
// multi-word phrases before single words. Defaults to "other" when nothing
// matches. Deterministic: same text, same answer.
func CategorizeText(text string) models.ComplaintCategory {
	lower := strings.ToLower(text)

	waterPhrases := []string{
		"water supply", "water leak", "no water", "dirty water",
	}
	for _, kw := range waterPhrases {
		if strings.Contains(lower, kw) {
			return models.CategoryWater
		}
	}

	waterWords := []string{
		"water", "leak", "pipe", "pipeline", "drainage", "drain",
		"sewage", "sewer", "tap", "borewell", "tank",
	}
	for _, kw := range waterWords {
		if strings.Contains(lower, kw) {
			return models.CategoryWater
		}
	}

	electricityPhrases := []string{
		"street light", "power cut", "no power", "power outage",
	}
	for _, kw := range electricityPhrases {
		if strings.Contains(lower, kw) {
			return models.CategoryElectricity
		}
	}

	electricityWords := []string{
		"electric", "electricity", "power", "streetlight", "light",
		"transformer", "wire", "cable", "voltage", "current", "pole",
	}
	for _, kw := range electricityWords {
		if strings.Contains(lower, kw) {
			return models.CategoryElectricity
		}
	}

	pwdWords := []string{
		"road", "pothole", "bridge", "footpath", "pavement",
		"highway", "asphalt", "speed breaker", "divider", "construction",
	}
	for _, kw := range pwdWords {
		if strings.Contains(lower, kw) {
			return models.CategoryPWD
		}
	}

	return models.CategoryOther
}
