package browser

import (
	"strings"
	"testing"
)

func TestCleanHTML(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		maxLength int
		wantTitle string
		wantHTML  []string // substrings that should be present
		wantNot   []string // substrings that should NOT be present
		truncated bool
	}{
		{
			name: "script and style removal",
			input: `<html>
				<head>
					<title>Week 3 Quiz</title>
					<script>alert('evil');</script>
					<style>body { color: red; }</style>
				</head>
				<body>
					<h1 id="main-title">Week 3</h1>
					<p class="intro">Answer every question.</p>
				</body>
			</html>`,
			wantTitle: "Week 3 Quiz",
			wantHTML:  []string{`<h1 id="main-title">`, "Week 3", `<p class="intro">`, "Answer every question."},
			wantNot:   []string{"<script>", "alert", "<style>", "color: red", "<title>", "<body>"},
		},
		{
			name: "quiz form attributes",
			input: `<form action="/submit" method="post" style="margin:0">
				<label for="q1a"><input type="radio" name="q1" id="q1a" value="a" checked onclick="x()"> A</label>
				<textarea name="q2" placeholder="Your answer" rows="4"></textarea>
				<div class="matching-item" draggable="true" data-key="paris">Paris</div>
				<button type="submit" class="btn-primary">Submit</button>
			</form>`,
			wantHTML: []string{
				`<form action="/submit">`,
				`<label for="q1a">`,
				`type="radio" name="q1" id="q1a" value="a" checked=""`,
				`<textarea name="q2" placeholder="Your answer">`,
				`class="matching-item" draggable="true" data-key="paris"`,
				`<button type="submit" class="btn-primary">Submit</button>`,
			},
			wantNot: []string{"method=", "style=", "onclick", "rows="},
		},
		{
			name: "remove embedded content",
			input: `<div>Content</div>
				<noscript>No JS</noscript>
				<iframe src="quiz.html"></iframe>
				<svg><circle/></svg>`,
			wantHTML: []string{"<div>", "Content"},
			wantNot:  []string{"<noscript>", "<iframe>", "<svg>", "No JS"},
		},
		{
			name: "collapse whitespace",
			input: `<p>  2 +
				2   = ?  </p>`,
			wantHTML: []string{"<p>2 + 2 = ?</p>"},
		},
		{
			name: "truncate at boundary",
			input: `<p>First paragraph with some content.</p>
				<p>Second paragraph with more content.</p>
				<p>Third paragraph that should be truncated.</p>`,
			maxLength: 60,
			wantHTML:  []string{"First paragraph", "..."},
			wantNot:   []string{"Third paragraph"},
			truncated: true,
		},
		{
			name:     "void elements",
			input:    `<img src="a.jpg" alt="Diagram"><br><input type="text" name="field"><hr>`,
			wantHTML: []string{`<img alt="Diagram">`, "<br>", `<input type="text" name="field">`, "<hr>"},
			wantNot:  []string{"</img>", "</br>", "</input>", "</hr>", "src="},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := CleanHTML(tt.input, tt.maxLength)
			if err != nil {
				t.Fatalf("CleanHTML() error = %v", err)
			}

			if result.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", result.Title, tt.wantTitle)
			}

			if result.Truncated != tt.truncated {
				t.Errorf("Truncated = %v, want %v", result.Truncated, tt.truncated)
			}

			for _, want := range tt.wantHTML {
				if !strings.Contains(result.HTML, want) {
					t.Errorf("HTML missing expected substring: %q\nGot: %s", want, result.HTML)
				}
			}

			for _, notWant := range tt.wantNot {
				if strings.Contains(result.HTML, notWant) {
					t.Errorf("HTML contains unwanted substring: %q\nGot: %s", notWant, result.HTML)
				}
			}
		})
	}
}

func TestKeepAttribute(t *testing.T) {
	tests := []struct {
		tag  string
		attr string
		want bool
	}{
		{"div", "id", true},
		{"div", "class", true},
		{"div", "style", false},
		{"div", "onclick", false},
		{"div", "data-test", true},
		{"div", "draggable", true},
		{"a", "href", true},
		{"a", "target", false},
		{"input", "name", true},
		{"input", "CHECKED", true},
		{"label", "for", true},
		{"option", "selected", true},
		{"form", "method", false},
	}

	for _, tt := range tests {
		t.Run(tt.tag+"_"+tt.attr, func(t *testing.T) {
			if got := keepAttribute(tt.tag, tt.attr); got != tt.want {
				t.Errorf("keepAttribute(%q, %q) = %v, want %v", tt.tag, tt.attr, got, tt.want)
			}
		})
	}
}
