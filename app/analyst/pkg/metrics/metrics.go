package metrics

import (
	"errors"
	"strings"

	"github.com/iWorld-y/report_analyst/app/analyst/pkg/logger"
	"github.com/iWorld-y/report_analyst/app/analyst/pkg/model"
	"github.com/shopspring/decimal"
)

// AmountUnit 金额字段的固定单位后缀
const AmountUnit = "亿元"

var riskCodes = map[string]int{
	"high":   3,
	"medium": 2,
	"low":    1,
	"高":      3,
	"中等":     2,
	"低":      1,
}

// RiskCode 单项风险等级的数值编码，按字面值匹配，其余（包括大小写不同）编码为 0
func RiskCode(level string) int {
	return riskCodes[level]
}

// ParseAmount 解析形如 "15.8亿元" 的金额
func ParseAmount(s string) (float64, error) {
	raw := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), AmountUnit))
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, &model.ParseError{Value: s, Err: err}
	}
	return d.InexactFloat64(), nil
}

func parseField(field, value string) (float64, error) {
	v, err := ParseAmount(value)
	var perr *model.ParseError
	if errors.As(err, &perr) {
		perr.Field = field
	}
	return v, err
}

// Compute 根据公司数据计算财务指标
// 金额解析失败时返回 DefaultMetrics 与错误
func Compute(rec model.CompanyRecord) (model.FinancialMetrics, error) {
	revenue, err := parseField("revenue", model.Str(rec.Revenue))
	if err != nil {
		logger.Log.Errorf("计算财务指标失败 [%s]: %v", rec.Name, err)
		return model.DefaultMetrics(), err
	}
	netProfit, err := parseField("net_profit", model.Str(rec.NetProfit))
	if err != nil {
		logger.Log.Errorf("计算财务指标失败 [%s]: %v", rec.Name, err)
		return model.DefaultMetrics(), err
	}
	rdInvestment, err := parseField("rd_investment", model.Str(rec.RDInvestment))
	if err != nil {
		logger.Log.Errorf("计算财务指标失败 [%s]: %v", rec.Name, err)
		return model.DefaultMetrics(), err
	}

	if revenue <= 0 {
		logger.Log.Warnf("公司 %s 的营业收入为0或负数，使用默认值1", rec.Name)
		revenue = 1
	}

	var riskSum int
	for _, level := range rec.Risks() {
		riskSum += RiskCode(level)
	}

	return model.FinancialMetrics{
		NetProfitMargin: netProfit / revenue * 100,
		RDRatio:         rdInvestment / revenue * 100,
		PatentDensity:   float64(rec.Patents()) / revenue,
		RiskScore:       float64(riskSum) / 4,
	}, nil
}
