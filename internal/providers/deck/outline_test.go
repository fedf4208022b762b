package deck

import (
	"strings"
	"testing"
)

const transcript = "Variables hold values. Functions group behavior. Loops repeat work. " +
	"Slices grow dynamically. Maps associate keys with values. Interfaces describe behavior."

func TestBuildOutlineUsesSkillsAsHeadings(t *testing.T) {
	slides := BuildOutline("intro to go", transcript, []string{"basic syntax", "data structures"})

	if len(slides) < 3 {
		t.Fatalf("slides = %d, want title + sections", len(slides))
	}
	if slides[0].Heading != "Intro To Go" {
		t.Fatalf("title slide = %q", slides[0].Heading)
	}
	if slides[1].Heading != "Basic Syntax" || slides[2].Heading != "Data Structures" {
		t.Fatalf("section headings = %q, %q", slides[1].Heading, slides[2].Heading)
	}
	if len(slides[1].Bullets) == 0 {
		t.Fatalf("section slides should carry bullets")
	}
}

func TestBuildOutlineWithoutSkills(t *testing.T) {
	slides := BuildOutline("Topic", transcript, nil)
	if slides[1].Heading != "Overview" {
		t.Fatalf("fallback heading = %q", slides[1].Heading)
	}
}

func TestBuildOutlineCollectsLeftovers(t *testing.T) {
	slides := BuildOutline("Topic", transcript, []string{"one"})
	last := slides[len(slides)-1]
	if last.Heading != "Key Takeaways" {
		t.Fatalf("last heading = %q", last.Heading)
	}
}

func TestBuildOutlineClipsLongSentences(t *testing.T) {
	long := strings.Repeat("word ", 80) + "end."
	slides := BuildOutline("Topic", long, []string{"s"})
	for _, slide := range slides {
		for _, bullet := range slide.Bullets {
			if len([]rune(bullet)) > maxBulletRunes {
				t.Fatalf("bullet not clipped: %d runes", len([]rune(bullet)))
			}
		}
	}
}
