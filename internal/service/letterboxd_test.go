package service

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reviewPageHTML = `<html><body>
<div class="film-detail">
  <a class="context" href="/moviefan99/film/heat/">Review by moviefan99</a>
  <strong class="name">Movie Fan</strong>
  <span class="rating rated-9">★★★★½</span>
  <span class="icon-liked"></span>
  <div class="js-review-body">
    <p>First paragraph of the review.</p>
    <p>Second paragraph, still going.</p>
    <p>   </p>
  </div>
</div>
<div class="film-detail">
  <a class="context" href="/quietwatcher/film/heat/">Review by quietwatcher</a>
  <div class="js-review-body">Plain body without paragraph tags.</div>
</div>
<div class="film-detail">
  <div class="js-review-body"><p>   </p></div>
</div>
</body></html>`

func TestParseReviewPage(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(reviewPageHTML))
	require.NoError(t, err)

	crawler := NewLetterboxdCrawler(newMemStores())
	drafts := crawler.parseReviewPage(doc)
	// 第三条正文为空，丢弃
	require.Len(t, drafts, 2)

	first := drafts[0]
	// 多段正文用空行拼接，空白段丢弃
	assert.Equal(t, "First paragraph of the review.\n\nSecond paragraph, still going.", first.text)
	assert.Equal(t, "https://letterboxd.com/moviefan99/film/heat/", first.url)
	// 页面上有展示名时覆盖 URL 里的用户名
	assert.Equal(t, "Movie Fan", first.author)
	// rated-9 是 9 个半星，即 4.5 星
	require.NotNil(t, first.rating)
	assert.Equal(t, 4.5, *first.rating)
	require.NotNil(t, first.liked)
	assert.True(t, *first.liked)

	second := drafts[1]
	assert.Equal(t, "Plain body without paragraph tags.", second.text)
	// 没有展示名时退回 URL 里的用户名
	assert.Equal(t, "quietwatcher", second.author)
	assert.Nil(t, second.rating)
	assert.Nil(t, second.liked)
}

func TestFetchReviewsStoresAndDeduplicates(t *testing.T) {
	// 第一页返回固定页面，第二页重复第一页（模拟翻页重叠），之后为空
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/page/1/") || strings.Contains(r.URL.Path, "/page/2/") {
			fmt.Fprint(w, reviewPageHTML)
			return
		}
		fmt.Fprint(w, "<html><body></body></html>")
	}))
	defer srv.Close()

	stores := newMemStores()
	crawler := NewLetterboxdCrawler(stores)
	crawler.baseURL = srv.URL
	crawler.client = srv.Client()

	count, err := crawler.FetchReviews("heat-1995", "heat", 3)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	reviews, err := stores.ListReviews("heat-1995")
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, "heat-1995", reviews[0].MovieID)
	require.NotNil(t, reviews[0].Rating)
	assert.Equal(t, 4.5, *reviews[0].Rating)
	assert.Contains(t, reviews[1].Text, "Plain body")
}

func TestFetchReviewsFirstPageFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	crawler := NewLetterboxdCrawler(newMemStores())
	crawler.baseURL = srv.URL
	crawler.client = srv.Client()

	_, err := crawler.FetchReviews("heat-1995", "heat", 2)
	assert.Error(t, err)
}
