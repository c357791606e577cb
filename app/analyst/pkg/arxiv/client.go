package arxiv

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/iWorld-y/report_analyst/app/analyst/pkg/model"
	"github.com/mmcdole/gofeed"
)

// DefaultBaseURL arXiv 查询接口，返回 Atom feed
const DefaultBaseURL = "http://export.arxiv.org/api/query"

// Client arXiv 论文检索客户端
type Client struct {
	baseURL string
	parser  *gofeed.Parser
}

// NewClient 创建客户端，baseURL 为空时使用 DefaultBaseURL
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	fp := gofeed.NewParser()
	fp.Client = &http.Client{Timeout: timeout}
	return &Client{baseURL: baseURL, parser: fp}
}

// Search 按关键词检索论文，按相关度排序
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]model.ReferencePaper, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	q := u.Query()
	q.Set("search_query", "all:"+query)
	q.Set("start", "0")
	q.Set("max_results", strconv.Itoa(maxResults))
	q.Set("sortBy", "relevance")
	u.RawQuery = q.Encode()

	feed, err := c.parser.ParseURLWithContext(u.String(), ctx)
	if err != nil {
		return nil, fmt.Errorf("arxiv query %q: %w", query, err)
	}

	papers := make([]model.ReferencePaper, 0, len(feed.Items))
	for _, item := range feed.Items {
		papers = append(papers, toPaper(item))
		if maxResults > 0 && len(papers) >= maxResults {
			break
		}
	}
	return papers, nil
}

func toPaper(item *gofeed.Item) model.ReferencePaper {
	names := make([]string, 0, len(item.Authors))
	for _, a := range item.Authors {
		if a != nil && a.Name != "" {
			names = append(names, a.Name)
		}
	}

	p := model.ReferencePaper{
		Title:   strings.Join(strings.Fields(item.Title), " "),
		Authors: strings.Join(names, ", "),
		URL:     item.Link,
	}
	if item.PublishedParsed != nil {
		year := item.PublishedParsed.Year()
		p.Year = &year
	}
	return p
}
