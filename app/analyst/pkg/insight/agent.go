package insight

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/gg/gson"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/go-shiori/go-readability"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/report_analyst/app/analyst/pkg/logger"
	dm "github.com/iWorld-y/report_analyst/app/analyst/pkg/model"
	"github.com/iWorld-y/report_analyst/app/analyst/pkg/search"
)

const (
	// maxContextLen 单条外部资料保留的最大字符数
	maxContextLen = 5000
	// shortSnippetLen 搜索摘要短于该长度时抓取原网页
	shortSnippetLen = 500
	// fetchTimeout 单个网页抓取的上限，调用方的 ctx 更短时以 ctx 为准
	fetchTimeout = 30 * time.Second
)

// Fetcher 抓取网页正文
type Fetcher func(ctx context.Context, url string) (string, error)

// Agent 基于 eino ChatModel 的 Insight Provider
type Agent struct {
	chatModel  model.BaseChatModel
	limiter    *rate.Limiter
	papers     PaperSearcher
	searcher   search.Searcher
	fetch      Fetcher
	maxResults int
	maxRetries int
	retryDelay time.Duration
}

// AgentOptions Agent 可选依赖，零值字段使用默认值
type AgentOptions struct {
	Limiter    *rate.Limiter
	Papers     PaperSearcher
	Searcher   search.Searcher
	Fetch      Fetcher
	MaxResults int
	MaxRetries int
	RetryDelay time.Duration
}

var _ Provider = (*Agent)(nil)

// NewAgent 创建 Agent
func NewAgent(cm model.BaseChatModel, opts AgentOptions) *Agent {
	a := &Agent{
		chatModel:  cm,
		limiter:    opts.Limiter,
		papers:     opts.Papers,
		searcher:   opts.Searcher,
		fetch:      opts.Fetch,
		maxResults: opts.MaxResults,
		maxRetries: opts.MaxRetries,
		retryDelay: opts.RetryDelay,
	}
	if a.limiter == nil {
		a.limiter = rate.NewLimiter(rate.Inf, 1)
	}
	if a.fetch == nil {
		a.fetch = fetchAndCleanContent
	}
	if a.maxResults == 0 {
		a.maxResults = 5
	}
	if a.maxRetries == 0 {
		a.maxRetries = 3
	}
	if a.retryDelay == 0 {
		a.retryDelay = 2 * time.Second
	}
	return a
}

// GetNarrativeAnalysis 以指定角色逐个执行子任务，每个子任务使用全新的消息列表
func (a *Agent) GetNarrativeAnalysis(ctx context.Context, rec dm.CompanyRecord, perspective dm.Perspective) (string, error) {
	role, ok := Roles[perspective]
	if !ok {
		return "", fmt.Errorf("%w: unknown perspective %q", dm.ErrProvider, perspective)
	}

	tasks := role.Tasks(rec)
	if extra := a.companyContext(ctx, rec, perspective); extra != "" {
		tasks[0] = tasks[0] + "\n\n参考资料：\n" + extra
	}

	results := make([]string, 0, len(tasks))
	for i, task := range tasks {
		answer, err := a.generate(ctx, role.SystemPrompt, task)
		if err != nil {
			return "", fmt.Errorf("%w: %s 子任务 %d: %w", dm.ErrProvider, role.Name, i+1, err)
		}
		results = append(results, strings.TrimSpace(answer))
	}

	out := strings.TrimSpace(strings.Join(results, "\n\n"))
	if out == "" {
		return "", fmt.Errorf("%w: %s 返回空内容", dm.ErrProvider, role.Name)
	}
	logger.Log.Debugf("%s 分析完成 [%s]", role.Name, rec.Name)
	return out, nil
}

// SearchReferencePapers 检索参考论文
func (a *Agent) SearchReferencePapers(ctx context.Context, query string, maxResults int) ([]dm.ReferencePaper, error) {
	if a.papers == nil {
		return nil, fmt.Errorf("%w: paper search not configured", dm.ErrProvider)
	}
	papers, err := a.papers.Search(ctx, query, maxResults)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", dm.ErrProvider, err)
	}
	logger.Log.Debugf("论文检索 [%s] 返回 %d 篇", query, len(papers))
	return papers, nil
}

// generate 单轮对话，遇到 429 时指数退避重试
func (a *Agent) generate(ctx context.Context, system, user string) (string, error) {
	var lastErr error
	for i := 0; i <= a.maxRetries; i++ {
		if err := a.limiter.Wait(ctx); err != nil {
			return "", err
		}

		messages := []*schema.Message{
			schema.SystemMessage(system),
			schema.UserMessage(user),
		}

		resp, err := a.chatModel.Generate(ctx, messages)
		if err != nil {
			if !isRateLimited(err) {
				return "", err
			}
			lastErr = err
			if i < a.maxRetries {
				if err := sleep(ctx, a.retryDelay*time.Duration(1<<i)); err != nil {
					return "", err
				}
			}
			continue
		}
		if resp == nil || strings.TrimSpace(resp.Content) == "" {
			return "", errors.New("empty response")
		}
		return resp.Content, nil
	}
	return "", fmt.Errorf("failed after retries: %w", lastErr)
}

func isRateLimited(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "too many requests")
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// companyContext 外部补充资料：学术视角使用联网搜索，财务视角使用年报页面
// 任何失败只丢弃补充资料
func (a *Agent) companyContext(ctx context.Context, rec dm.CompanyRecord, perspective dm.Perspective) string {
	switch perspective {
	case dm.PerspectiveAcademic:
		return a.searchCompany(ctx, rec)
	case dm.PerspectiveFinancial:
		if rec.SourceURL == "" {
			return ""
		}
		content, err := a.fetch(ctx, rec.SourceURL)
		if err != nil {
			logger.Log.Warnf("抓取年报页面失败 [%s]: %v", rec.SourceURL, err)
			return ""
		}
		return truncate(strings.TrimSpace(content), maxContextLen)
	default:
		return ""
	}
}

func (a *Agent) searchCompany(ctx context.Context, rec dm.CompanyRecord) string {
	if a.searcher == nil {
		return ""
	}
	resp, err := a.searcher.Search(ctx, &search.Request{
		Query:      rec.Name + " 公司简介 主营业务",
		Topic:      "general",
		MaxResults: a.maxResults,
	})
	if err != nil {
		logger.Log.Warnf("搜索公司信息失败 [%s]: %v", rec.Name, err)
		return ""
	}
	logger.Log.Debugf("搜索公司信息 [%s] 成功: %s", rec.Name, gson.ToString(resp))

	var sb strings.Builder
	n := 0
	for _, item := range resp.Results {
		content := item.Text()
		if len([]rune(content)) < shortSnippetLen && item.URL != "" {
			fetched, err := a.fetch(ctx, item.URL)
			if err == nil && len(fetched) > len(content) {
				content = fetched
			}
		}
		content = truncate(strings.TrimSpace(content), maxContextLen)
		if content == "" {
			continue
		}
		n++
		fmt.Fprintf(&sb, "[%d] %s\n%s\n\n", n, item.Title, content)
	}
	return strings.TrimSpace(sb.String())
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// fetchAndCleanContent 抓取网页并用 readability 提取正文，随 ctx 取消
func fetchAndCleanContent(ctx context.Context, pageURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	parsed, err := url.Parse(pageURL)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: unexpected status %d", pageURL, resp.StatusCode)
	}

	article, err := readability.FromReader(resp.Body, parsed)
	if err != nil {
		return "", err
	}
	return article.TextContent, nil
}
