package service

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/user/reelguess/internal/model"
	"golang.org/x/sync/singleflight"
)

// LetterboxdCrawler Letterboxd 影评爬虫
// 离线补料用：抓取一部电影的热门影评页，入库后交给审核台出候选线索
type LetterboxdCrawler struct {
	reviews ReviewStore
	client  *http.Client
	baseURL string
	sf      singleflight.Group // 防止并发重复抓取同一电影
}

// NewLetterboxdCrawler 创建爬虫服务
func NewLetterboxdCrawler(reviews ReviewStore) *LetterboxdCrawler {
	return &LetterboxdCrawler{
		reviews: reviews,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseURL: "https://letterboxd.com",
	}
}

// FetchReviews 抓取一部电影的影评并入库
// filmSlug 是 Letterboxd 的电影路径名，pages 是抓取的热门影评页数
// 返回实际入库的影评条数
func (c *LetterboxdCrawler) FetchReviews(movieID, filmSlug string, pages int) (int, error) {
	if pages <= 0 {
		pages = 1
	}

	v, err, _ := c.sf.Do(movieID, func() (interface{}, error) {
		return c.fetchReviews(movieID, filmSlug, pages)
	})
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}

func (c *LetterboxdCrawler) fetchReviews(movieID, filmSlug string, pages int) (int, error) {
	seen := make(map[string]bool)
	var reviews []*reviewDraft

	for page := 1; page <= pages; page++ {
		url := fmt.Sprintf("%s/film/%s/reviews/by/activity/page/%d/", c.baseURL, filmSlug, page)
		doc, err := c.fetchDocument(url)
		if err != nil {
			// 首页都抓不到才算失败，翻页失败只影响数量
			if page == 1 {
				return 0, err
			}
			log.Printf("[LetterboxdCrawler] 抓取第 %d 页失败: %v", page, err)
			break
		}

		pageReviews := c.parseReviewPage(doc)
		if len(pageReviews) == 0 {
			break
		}
		for _, r := range pageReviews {
			key := r.url
			if key == "" {
				key = truncate(r.text, 100)
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			reviews = append(reviews, r)
		}
	}

	if len(reviews) == 0 {
		return 0, nil
	}
	models := draftsToReviews(movieID, reviews)
	if err := c.reviews.InsertReviews(models); err != nil {
		return 0, fmt.Errorf("影评入库失败: %w", err)
	}
	log.Printf("[LetterboxdCrawler] %s 入库 %d 条影评", movieID, len(models))
	return len(models), nil
}

func (c *LetterboxdCrawler) fetchDocument(url string) (*goquery.Document, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("非预期的状态码: %d", resp.StatusCode)
	}

	return goquery.NewDocumentFromReader(resp.Body)
}

type reviewDraft struct {
	text   string
	url    string
	author string
	rating *float64
	liked  *bool
}

// parseReviewPage 解析影评列表页
func (c *LetterboxdCrawler) parseReviewPage(doc *goquery.Document) []*reviewDraft {
	var drafts []*reviewDraft

	doc.Find(".film-detail").Each(func(i int, item *goquery.Selection) {
		body := item.Find(".js-review-body")
		var parts []string
		body.Find("p").Each(func(_ int, p *goquery.Selection) {
			if t := strings.TrimSpace(p.Text()); t != "" {
				parts = append(parts, t)
			}
		})
		text := strings.Join(parts, "\n\n")
		if text == "" {
			text = strings.TrimSpace(body.Text())
		}
		if text == "" {
			return
		}

		draft := &reviewDraft{text: text}

		if href, ok := item.Find("a.context").Attr("href"); ok {
			draft.url = c.baseURL + href
			draft.author = reviewerFromURL(draft.url)
		}
		if name := strings.TrimSpace(item.Find(".name").First().Text()); name != "" {
			draft.author = name
		}

		// 评分藏在 rated-N 的 class 里，N 是 0.5 星为单位的半星数
		item.Find(".rating").First().Each(func(_ int, r *goquery.Selection) {
			class, _ := r.Attr("class")
			for _, cls := range strings.Fields(class) {
				if strings.HasPrefix(cls, "rated-") {
					if n, err := strconv.Atoi(strings.TrimPrefix(cls, "rated-")); err == nil {
						rating := float64(n) / 2
						draft.rating = &rating
					}
				}
			}
		})

		if item.Find(".icon-liked").Length() > 0 {
			liked := true
			draft.liked = &liked
		}

		drafts = append(drafts, draft)
	})

	return drafts
}

// draftsToReviews 抓取结果转成不可变的影评记录
func draftsToReviews(movieID string, drafts []*reviewDraft) []*model.Review {
	now := time.Now()
	reviews := make([]*model.Review, 0, len(drafts))
	for _, d := range drafts {
		reviews = append(reviews, &model.Review{
			MovieID:   movieID,
			Text:      d.text,
			Rating:    d.rating,
			Liked:     d.liked,
			Author:    d.author,
			URL:       d.url,
			CreatedAt: now,
		})
	}
	return reviews
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
