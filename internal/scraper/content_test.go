package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentSelectorsOrder(t *testing.T) {
	expected := []string{
		"article",
		`[class*="job-description"]`,
		`[class*="job-details"]`,
		`[class*="description"]`,
		`[id*="job-description"]`,
		`[id*="job-details"]`,
		"main",
		`[role="main"]`,
	}

	assert.Equal(t, expected, ContentSelectors)
}

func TestExtractContent_Priority(t *testing.T) {
	tests := []struct {
		name   string
		page   string
		expect string
	}{
		{
			name:   "job-description class beats description class",
			page:   `<body><div class="description">Generic</div><div class="x job-description-body">Specific</div></body>`,
			expect: "Specific",
		},
		{
			name:   "job-details class beats job-description id",
			page:   `<body><div id="job-description">By id</div><section class="job-details">By class</section></body>`,
			expect: "By class",
		},
		{
			name:   "description class beats main",
			page:   `<body><main>Main area</main><p class="descriptionText">Described</p></body>`,
			expect: "Described",
		},
		{
			name:   "job-details id beats main",
			page:   `<body><main>Main area</main><div id="posting-job-details">Details</div></body>`,
			expect: "Details",
		},
		{
			name:   "main beats role main",
			page:   `<body><div role="main">Role main</div><main>Main tag</main></body>`,
			expect: "Main tag",
		},
		{
			name:   "role main beats body",
			page:   `<body><p>Intro</p><div role="main">Role main</div></body>`,
			expect: "Role main",
		},
		{
			name:   "falls back to body",
			page:   `<body><p>Only</p><p>paragraphs</p></body>`,
			expect: "Only\nparagraphs",
		},
		{
			name:   "page without body is read whole",
			page:   `<title>Backend Engineer</title><p>Go, Kubernetes</p>`,
			expect: "Backend Engineer\nGo, Kubernetes",
		},
		{
			name:   "declared body excludes head title",
			page:   `<html><head><title>Careers</title></head><BODY class="jobs"><p>Go, Kubernetes</p></BODY></html>`,
			expect: "Go, Kubernetes",
		},
		{
			name:   "class match is case-sensitive",
			page:   `<body><div class="Job-Description">Upper</div><main>Lower</main></body>`,
			expect: "Lower",
		},
		{
			name:   "first match in document order",
			page:   `<body><article>First</article><article>Second</article></body>`,
			expect: "First",
		},
		{
			name:   "noise removed inside selected region",
			page:   `<body><article><header>Share</header><p>Keep</p><style>.a{}</style><footer>Apply</footer></article></body>`,
			expect: "Keep",
		},
		{
			name:   "nav is removed before matching",
			page:   `<body><nav class="job-description">Menu</nav><main>Real</main></body>`,
			expect: "Real",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := ExtractContent(tt.page)
			require.NoError(t, err)
			assert.Equal(t, tt.expect, text)
		})
	}
}

func TestExtractContent_CollapsesWhitespace(t *testing.T) {
	page := "<main>\n\n   <h2>  Requirements </h2>\n\t<ul><li> Go </li>\n<li>\n\n SQL\n</li></ul><pre>line one\n\n   line two</pre></main>"

	text, err := ExtractContent(page)
	require.NoError(t, err)
	assert.Equal(t, "Requirements\nGo\nSQL\nline one\nline two", text)
}

func TestExtractContent_Deterministic(t *testing.T) {
	page := `<div class="job-details"><p>A</p><p>B</p><!-- hidden --><p>C</p></div>`

	first, err := ExtractContent(page)
	require.NoError(t, err)
	second, err := ExtractContent(page)
	require.NoError(t, err)

	assert.Equal(t, "A\nB\nC", first)
	assert.Equal(t, first, second)
}

func TestExtractContent_Noscript(t *testing.T) {
	tests := []struct {
		name   string
		page   string
		expect string
	}{
		{
			name: "tag manager iframe adds no text",
			page: `<html><body><noscript><iframe src="https://www.googletagmanager.com/ns.html?id=GTM-XXXX" height="0" width="0" style="display:none;visibility:hidden"></iframe></noscript>` +
				`<h1>Senior Go Engineer</h1></body></html>`,
			expect: "Senior Go Engineer",
		},
		{
			name:   "fallback text is kept without markup",
			page:   `<html><body><noscript><p>Enable <b>JavaScript</b></p></noscript><p>Remote</p></body></html>`,
			expect: "Enable\nJavaScript\nRemote",
		},
		{
			name:   "noscript inside a content region",
			page:   `<body><article><noscript><img src="pixel.gif"></noscript><p>Platform team</p></article></body>`,
			expect: "Platform team",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := ExtractContent(tt.page)
			require.NoError(t, err)
			assert.Equal(t, tt.expect, text)
			assert.NotContains(t, text, "<")
		})
	}
}
