package pathe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cinescout/internal/domain"
)

const listingPage = `<html><body>
<section class="poster-carousel">
	<div class="poster"><a href="/film/101/great-film"></a><span class="poster-status">Nu te zien</span></div>
	<div class="poster"><a href="/film/102/coming-film"></a><span class="poster-status">Verwacht</span></div>
	<div class="poster"><a href="/film/103/gone-film"></a><span class="poster-status">Uitverkocht</span></div>
	<div class="poster"><span class="poster-status">Nu te zien</span></div>
</section>
<ul class="pagination">
	<li><a>&laquo;</a></li>
	<li><a>1</a></li>
	<li><a>2</a></li>
	<li><a>3</a></li>
	<li><a>&raquo;</a></li>
</ul>
</body></html>`

func TestPageCount(t *testing.T) {
	doc := parseHTML(t, listingPage)
	pages, err := PageCount(doc)
	require.NoError(t, err)
	assert.Equal(t, 3, pages)
}

func TestPageCountMissingControl(t *testing.T) {
	doc := parseHTML(t, `<html><body></body></html>`)
	pages, err := PageCount(doc)
	require.NoError(t, err)
	assert.Equal(t, 1, pages)
}

func TestPageCountMalformed(t *testing.T) {
	doc := parseHTML(t, `<ul class="pagination"><li><a>&laquo;</a></li><li><a>&raquo;</a></li></ul>`)
	_, err := PageCount(doc)
	assert.True(t, IsParseError(err), "got %v", err)
}

func TestParseCandidates(t *testing.T) {
	doc := parseHTML(t, listingPage)
	candidates := ParseCandidates(doc, "https://www.pathe.nl")
	assert.Equal(t, []domain.MovieCandidate{
		{URL: "https://www.pathe.nl/film/101/great-film", Status: "Nu te zien"},
		{URL: "https://www.pathe.nl/film/102/coming-film", Status: "Verwacht"},
		{URL: "https://www.pathe.nl/film/103/gone-film", Status: "Uitverkocht"},
	}, candidates)
}

func TestStatusAllowed(t *testing.T) {
	assert.True(t, StatusAllowed("Nu te zien"))
	assert.True(t, StatusAllowed("verwacht"))
	assert.False(t, StatusAllowed("Uitverkocht"))
	assert.False(t, StatusAllowed(""))
}

func TestExcluded(t *testing.T) {
	assert.True(t, Excluded("https://www.pathe.nl/film/999/sneak-preview"))
	assert.False(t, Excluded("https://www.pathe.nl/film/101/great-film"))
	// Off-site URLs are not on the deny-list by definition.
	assert.False(t, Excluded("https://example.com/film/999/sneak-preview"))
}

func TestParseDetailURL(t *testing.T) {
	id, slug, err := ParseDetailURL("https://www.pathe.nl/film/12345/amelie")
	require.NoError(t, err)
	assert.Equal(t, 12345, id)
	assert.Equal(t, "amelie", slug)

	_, _, err = ParseDetailURL("https://www.pathe.nl/films")
	assert.True(t, IsParseError(err), "got %v", err)
}
