package insight

import (
	"fmt"

	"github.com/iWorld-y/report_analyst/app/analyst/pkg/model"
)

// Role 分析角色：一段系统提示词加若干相互独立的子任务
type Role struct {
	Name         string
	Perspective  model.Perspective
	SystemPrompt string
	Tasks        func(rec model.CompanyRecord) []string
}

var academicResearcher = Role{
	Name:        "学术研究员",
	Perspective: model.PerspectiveAcademic,
	SystemPrompt: `你是一位专业的学术研究员，擅长分析公司年报中的学术价值和研究意义。
你需要：
1. 识别年报中的创新点和研究价值
2. 评估公司的研发能力和技术实力
3. 分析公司的学术影响力和行业地位
4. 提供基于学术视角的投资建议`,
	Tasks: func(rec model.CompanyRecord) []string {
		return []string{
			fmt.Sprintf("请分析公司的创新能力和技术实力：\n公司名称：%s\n主营业务：%s\n研发投入：%s\n专利数量：%d",
				rec.Name, model.Str(rec.Business), model.Str(rec.RDInvestment), rec.Patents()),
			fmt.Sprintf("请分析研发投入的合理性和效果：\n研发投入：%s\n专利数量：%d", model.Str(rec.RDInvestment), rec.Patents()),
			fmt.Sprintf("请分析知识产权保护情况：\n专利数量：%d", rec.Patents()),
			fmt.Sprintf("请分析行业技术地位：\n公司名称：%s\n主营业务：%s", rec.Name, model.Str(rec.Business)),
		}
	},
}

var financialAnalyst = Role{
	Name:        "财务分析师",
	Perspective: model.PerspectiveFinancial,
	SystemPrompt: `你是一位专业的财务分析师，擅长分析公司年报中的财务数据。
你需要：
1. 分析公司的财务状况和经营成果
2. 评估公司的盈利能力和成长性
3. 识别财务风险和潜在问题
4. 提供基于财务视角的投资建议`,
	Tasks: func(rec model.CompanyRecord) []string {
		return []string{
			fmt.Sprintf("请分析公司的盈利能力和成长性：\n公司名称：%s\n营业收入：%s\n净利润：%s", rec.Name, model.Str(rec.Revenue), model.Str(rec.NetProfit)),
			fmt.Sprintf("请分析财务健康状况：\n毛利率：%s\n资产负债率：%s", model.Str(rec.GrossMargin), model.Str(rec.DebtRatio)),
			fmt.Sprintf("请分析现金流情况：\n营业收入：%s\n净利润：%s", model.Str(rec.Revenue), model.Str(rec.NetProfit)),
			fmt.Sprintf("请分析投资回报率：\n净利润：%s\n营业收入：%s", model.Str(rec.NetProfit), model.Str(rec.Revenue)),
		}
	},
}

var riskManager = Role{
	Name:        "风险管理师",
	Perspective: model.PerspectiveRisk,
	SystemPrompt: `你是一位专业的风险管理师，擅长评估公司年报中的各类风险。
你需要：
1. 识别公司面临的各类风险
2. 评估风险的影响程度和发生概率
3. 分析公司的风险管理措施
4. 提供基于风险视角的投资建议`,
	Tasks: func(rec model.CompanyRecord) []string {
		return []string{
			fmt.Sprintf("请分析市场风险：\n公司名称：%s\n市场风险：%s", rec.Name, model.Str(rec.MarketRisk)),
			fmt.Sprintf("请分析经营风险：\n经营风险：%s", model.Str(rec.OperationRisk)),
			fmt.Sprintf("请分析财务风险：\n财务风险：%s", model.Str(rec.FinancialRisk)),
			fmt.Sprintf("请分析技术风险：\n技术风险：%s", model.Str(rec.TechRisk)),
		}
	},
}

// Roles 按视角索引的全部角色
var Roles = map[model.Perspective]Role{
	model.PerspectiveAcademic:  academicResearcher,
	model.PerspectiveFinancial: financialAnalyst,
	model.PerspectiveRisk:      riskManager,
}
