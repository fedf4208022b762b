package deck

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

const (
	maxSlides        = 12
	bulletsPerSlide  = 4
	maxBulletRunes   = 160
	overviewHeading  = "Overview"
	takeawaysHeading = "Key Takeaways"
)

// BuildOutline derives a slide outline from the transcript and the ordered
// skill list. Skills become section headings; transcript sentences are
// distributed across them in order.
func BuildOutline(title, transcript string, skills []string) []Slide {
	sentences := splitSentences(transcript)

	headings := make([]string, 0, len(skills))
	for _, skill := range skills {
		skill = strings.TrimSpace(skill)
		if skill == "" {
			continue
		}
		headings = append(headings, titleCaser.String(skill))
	}
	if len(headings) == 0 {
		headings = []string{overviewHeading}
	}
	if len(headings) > maxSlides-2 {
		headings = headings[:maxSlides-2]
	}

	slides := make([]Slide, 0, len(headings)+2)
	slides = append(slides, Slide{Heading: titleCaser.String(strings.TrimSpace(title))})

	perSection := len(sentences) / len(headings)
	if perSection == 0 {
		perSection = 1
	}
	if perSection > bulletsPerSlide {
		perSection = bulletsPerSlide
	}
	next := 0
	for _, heading := range headings {
		var bullets []string
		for len(bullets) < perSection && next < len(sentences) {
			bullets = append(bullets, clipBullet(sentences[next]))
			next++
		}
		slides = append(slides, Slide{Heading: heading, Bullets: bullets})
	}

	var leftovers []string
	for next < len(sentences) && len(leftovers) < bulletsPerSlide {
		leftovers = append(leftovers, clipBullet(sentences[next]))
		next++
	}
	if len(leftovers) > 0 {
		slides = append(slides, Slide{Heading: takeawaysHeading, Bullets: leftovers})
	}
	return slides
}

func splitSentences(text string) []string {
	var out []string
	for _, chunk := range strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?' || r == '\n'
	}) {
		chunk = strings.TrimSpace(chunk)
		if len(chunk) < 8 {
			continue
		}
		out = append(out, chunk)
	}
	return out
}

func clipBullet(s string) string {
	runes := []rune(s)
	if len(runes) <= maxBulletRunes {
		return s
	}
	return string(runes[:maxBulletRunes-1]) + "…"
}
