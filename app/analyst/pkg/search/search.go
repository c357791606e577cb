package search

import "context"

// Searcher 联网搜索接口，用于补充公司背景信息
type Searcher interface {
	Search(ctx context.Context, req *Request) (*Response, error)
}

// Request 通用搜索请求
type Request struct {
	Query             string
	Topic             string // "general" 或 "news"
	MaxResults        int
	IncludeRawContent bool
}

// Response 通用搜索响应
type Response struct {
	Results []Result
}

// Result 单条搜索结果
type Result struct {
	Title      string
	URL        string
	Content    string
	RawContent string
	Score      float64
}

// Text 结果正文，优先使用原始内容
func (r Result) Text() string {
	if len(r.RawContent) > len(r.Content) {
		return r.RawContent
	}
	return r.Content
}
