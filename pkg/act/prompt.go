package act

import (
	"fmt"
	"strings"
)

// Profile describes the person the quiz is answered as.
type Profile struct {
	Name         string `json:"name" yaml:"name"`
	Background   string `json:"background" yaml:"background"`
	Goals        string `json:"goals" yaml:"goals"`
	WritingStyle string `json:"writing_style" yaml:"writing_style"`
}

// IsZero reports whether no profile field is set.
func (p Profile) IsZero() bool {
	return p == Profile{}
}

const basePrompt = `You operate a web page on behalf of a student taking a quiz.

You receive an instruction and cleaned HTML snapshots of the page and of each embedded frame. Decide which elements to interact with to carry out the instruction.

Reply with ONLY a JSON object of this shape:
{"steps":[{"frame":0,"action":"click","selector":"...","value":""}],"reason":"..."}

Rules:
- frame is the number of the document the element is in, as listed in the snapshot headers.
- action is "click" or "fill". "fill" replaces the element's text with value.
- selector is a CSS selector, or an XPath expression prefixed with "xpath=". Prefer ids, names and values from the snapshot.
- Use as few steps as possible. To answer a question, select or type the answer you believe is correct.
- If nothing on the page matches the instruction, reply {"steps":[],"reason":"..."}.
Do not include explanations outside the JSON.`

func systemPrompt(p Profile) string {
	if p.IsZero() {
		return basePrompt
	}

	var b strings.Builder
	b.WriteString(basePrompt)
	b.WriteString("\n\n## Student profile\n")
	for _, field := range []struct{ label, value string }{
		{"Name", p.Name},
		{"Background", p.Background},
		{"Goals", p.Goals},
		{"Writing style", p.WritingStyle},
	} {
		if v := strings.TrimSpace(field.value); v != "" {
			fmt.Fprintf(&b, "- %s: %s\n", field.label, v)
		}
	}
	b.WriteString("Write free-text answers the way this student would.")
	return b.String()
}

type documentSnapshot struct {
	index     int
	url       string
	html      string
	truncated bool
}

func userPrompt(instruction string, docs []documentSnapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Instruction: %s\n", instruction)
	for _, d := range docs {
		kind := "frame"
		if d.index == 0 {
			kind = "page"
		}
		fmt.Fprintf(&b, "\n### [%d] %s %s\n", d.index, kind, d.url)
		b.WriteString(d.html)
		if d.truncated {
			b.WriteString("\n[snapshot truncated]")
		}
		b.WriteString("\n")
	}
	return b.String()
}
