package scraper

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const articlePage = `<html><head><script>tracking();</script></head><body>
<nav>Home | News | About</nav>
<article>
<p>The first paragraph carries the opening of the story.</p>
<p>The second paragraph continues with further details on events.</p>
<p>The third paragraph closes out the reported developments.</p>
</article>
<footer>Copyright some publisher</footer>
</body></html>`

func TestExtract(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(articlePage))
	}))
	defer srv.Close()

	s := New(5 * time.Second)
	content, err := s.Extract(srv.URL)
	require.NoError(t, err)

	assert.Equal(t, srv.URL, content.URL)
	assert.Contains(t, content.Text, "first paragraph")
	assert.Contains(t, content.Text, "third paragraph")
	assert.NotContains(t, content.Text, "tracking")
	assert.NotContains(t, content.Text, "Copyright")
}

func TestExtract_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	s := New(5 * time.Second)
	_, err := s.Extract(srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP error: 404")
}

func TestExtract_NoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("<html><body><p>too short</p></body></html>"))
	}))
	defer srv.Close()

	s := New(5 * time.Second)
	_, err := s.Extract(srv.URL)
	assert.Error(t, err)
}

func TestExtract_CapsLength(t *testing.T) {
	long := strings.Repeat("word ", 200)
	page := "<html><body><article>" +
		"<p>" + long + "</p><p>" + long + "</p><p>" + long + "</p>" +
		"</article></body></html>"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(page))
	}))
	defer srv.Close()

	s := New(5 * time.Second)
	content, err := s.Extract(srv.URL)
	require.NoError(t, err)
	assert.Len(t, content.Text, maxContentLength)
}

func TestExtractAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/bad") {
			http.Error(w, "gone", http.StatusGone)
			return
		}
		w.Write([]byte(articlePage))
	}))
	defer srv.Close()

	s := New(5 * time.Second)
	urls := []string{srv.URL + "/a", srv.URL + "/b", srv.URL + "/bad"}

	results := s.ExtractAll(urls, 2)

	assert.Len(t, results, 2)
	assert.Contains(t, results, srv.URL+"/a")
	assert.Contains(t, results, srv.URL+"/b")
	assert.NotContains(t, results, srv.URL+"/bad")
}
