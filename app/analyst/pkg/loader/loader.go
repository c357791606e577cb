package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/iWorld-y/report_analyst/app/analyst/pkg/config"
	"github.com/iWorld-y/report_analyst/app/analyst/pkg/logger"
	"github.com/iWorld-y/report_analyst/app/analyst/pkg/metrics"
	"github.com/iWorld-y/report_analyst/app/analyst/pkg/model"
)

const (
	financialBlockMarker = "主要会计数据和财务指标"
	financialBlockLines  = 50
	defaultPatentCount   = 150
)

type companiesFile struct {
	Companies []model.CompanyRecord `yaml:"companies"`
}

// Load 依次加载 YAML 公司文件与 Markdown 年报目录，均为可选
func Load(cfg config.CompaniesConfig) ([]model.CompanyRecord, error) {
	var out []model.CompanyRecord
	if cfg.File != "" {
		recs, err := LoadYAML(cfg.File)
		if err != nil {
			return nil, err
		}
		out = append(out, recs...)
	}
	if cfg.MarkdownDir != "" {
		recs, err := LoadMarkdownDir(cfg.MarkdownDir)
		if err != nil {
			return nil, err
		}
		out = append(out, recs...)
	}
	return out, nil
}

// LoadYAML 读取 companies 列表
func LoadYAML(path string) ([]model.CompanyRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read companies file: %w", err)
	}
	var f companiesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse companies file %s: %w", path, err)
	}
	logger.Log.Debugf("从 %s 加载 %d 家公司", path, len(f.Companies))
	return f.Companies, nil
}

// LoadMarkdownDir 解析目录下的 .md 年报摘录，文件名即公司名
// 单个文件失败只记录日志并跳过
func LoadMarkdownDir(dir string) ([]model.CompanyRecord, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read markdown dir: %w", err)
	}

	var out []model.CompanyRecord
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".md" {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Log.Errorf("处理文件 %s 时出错: %v", path, err)
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".md")
		out = append(out, ParseMarkdown(name, string(data)))
		logger.Log.Debugf("成功添加公司: %s", name)
	}
	return out, nil
}

// ParseMarkdown 从年报摘录中提取营业收入、净利润与主营业务，其余字段使用默认值
func ParseMarkdown(name, content string) model.CompanyRecord {
	patents := defaultPatentCount
	rec := model.CompanyRecord{
		Name:          name,
		Business:      model.Ptr("未找到主营业务信息"),
		Revenue:       model.Ptr("0" + metrics.AmountUnit),
		NetProfit:     model.Ptr("0" + metrics.AmountUnit),
		RDInvestment:  model.Ptr("2.5" + metrics.AmountUnit),
		PatentCount:   &patents,
		GrossMargin:   model.Ptr("45%"),
		DebtRatio:     model.Ptr("35%"),
		MarketRisk:    model.Ptr(string(model.RiskMedium)),
		OperationRisk: model.Ptr(string(model.RiskMedium)),
		FinancialRisk: model.Ptr(string(model.RiskMedium)),
		TechRisk:      model.Ptr(string(model.RiskMedium)),
	}

	lines := strings.Split(content, "\n")

	start := -1
	for i, line := range lines {
		if strings.Contains(line, financialBlockMarker) {
			start = i
			break
		}
	}
	if start >= 0 {
		end := min(start+financialBlockLines, len(lines))
		for _, line := range lines[start:end] {
			if !strings.Contains(line, metrics.AmountUnit) {
				continue
			}
			switch {
			case strings.Contains(line, "营业收入"):
				rec.Revenue = model.Ptr(parseAmountLine(line) + metrics.AmountUnit)
			case strings.Contains(line, "净利润"):
				rec.NetProfit = model.Ptr(parseAmountLine(line) + metrics.AmountUnit)
			}
		}
	}

	for _, line := range lines {
		if strings.Contains(line, "主营业务") {
			parts := strings.Split(line, "：")
			rec.Business = model.Ptr(strings.TrimSpace(parts[len(parts)-1]))
			break
		}
	}

	adjustRisk(&rec)
	return rec
}

// parseAmountLine "营业收入：15.8亿元" -> "15.8"，无法识别时为 "0"
func parseAmountLine(line string) string {
	if !strings.Contains(line, "：") {
		return "0"
	}
	parts := strings.Split(line, "：")
	value := strings.TrimSpace(parts[len(parts)-1])
	if !strings.Contains(value, metrics.AmountUnit) {
		return "0"
	}
	return strings.TrimSpace(strings.SplitN(value, metrics.AmountUnit, 2)[0])
}

// adjustRisk 按营收与净利润规模调整市场风险与财务风险
func adjustRisk(rec *model.CompanyRecord) {
	revenue, err := metrics.ParseAmount(model.Str(rec.Revenue))
	if err != nil {
		logger.Log.Errorf("调整风险等级时出错 [%s]: %v", rec.Name, err)
		return
	}
	netProfit, err := metrics.ParseAmount(model.Str(rec.NetProfit))
	if err != nil {
		logger.Log.Errorf("调整风险等级时出错 [%s]: %v", rec.Name, err)
		return
	}

	switch {
	case revenue < 10 || netProfit < 1:
		rec.MarketRisk = model.Ptr(string(model.RiskHigh))
		rec.FinancialRisk = model.Ptr(string(model.RiskHigh))
	case revenue > 20 && netProfit > 2:
		rec.MarketRisk = model.Ptr(string(model.RiskLow))
		rec.FinancialRisk = model.Ptr(string(model.RiskLow))
	}
}
