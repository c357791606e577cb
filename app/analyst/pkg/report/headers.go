package report

import "strings"

const (
	CompanyTitle    = "Company Analysis Report"
	ComparisonTitle = "Company Comparison Report"

	// NoReferences 没有参考文献时的占位
	NoReferences   = "No relevant references available"
	UnknownTitle   = "Unknown title"
	UnknownAuthors = "Unknown authors"

	// BatchFailureMessage 没有任何公司分析成功时返回的固定文本
	BatchFailureMessage = "Analysis failed: no valid company analysis results"
)

// CompanyHeaders 公司分析报告的章节标题，下游按字面值切分
var CompanyHeaders = []string{
	"1. Executive Summary",
	"2. Methodology",
	"3. Company Profile",
	"4. Financial Analysis",
	"5. R&D/Innovation Analysis",
	"6. Risk Assessment",
	"7. Industry Comparison",
	"8. Investment Advice",
	"9. References",
}

// ComparisonHeaders 公司比较报告的章节标题
var ComparisonHeaders = []string{
	"1. Overview",
	"2. Rankings",
	"3. Financial Comparison",
	"4. R&D Comparison",
	"5. Risk Comparison",
	"6. Potential Comparison",
	"7. Investment Advice",
	"8. References",
}

// TimeoutMessage 单个公司最终超时后的占位文本
func TimeoutMessage(name string) string {
	return "Analysis of company " + name + " timed out, please retry"
}

// Section 报告中的一个章节
type Section struct {
	Header string `json:"header"`
	Body   string `json:"body"`
}

// SplitSections 按字面标题切分报告，标题需独占一行且按给定顺序出现
// 未出现的标题会被跳过
func SplitSections(text string, headers []string) []Section {
	var (
		sections []Section
		current  *Section
		body     []string
		next     int
	)

	flush := func() {
		if current != nil {
			current.Body = strings.TrimSpace(strings.Join(body, "\n"))
			sections = append(sections, *current)
		}
		body = body[:0]
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if idx := indexFrom(headers, next, trimmed); idx >= 0 {
			flush()
			current = &Section{Header: headers[idx]}
			next = idx + 1
			continue
		}
		if current != nil {
			body = append(body, line)
		}
	}
	flush()
	return sections
}

func indexFrom(headers []string, from int, line string) int {
	for i := from; i < len(headers); i++ {
		if headers[i] == line {
			return i
		}
	}
	return -1
}
