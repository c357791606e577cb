package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/iWorld-y/report_analyst/app/analyst/pkg/config"
	"github.com/iWorld-y/report_analyst/app/analyst/pkg/engine"
	"github.com/iWorld-y/report_analyst/app/analyst/pkg/insight"
	"github.com/iWorld-y/report_analyst/app/analyst/pkg/loader"
	"github.com/iWorld-y/report_analyst/app/analyst/pkg/logger"
	"github.com/iWorld-y/report_analyst/app/analyst/pkg/model"
	"github.com/iWorld-y/report_analyst/app/analyst/pkg/storage"
)

var (
	flagconf    string
	flagMode    string
	flagCompany string
)

func init() {
	flag.StringVar(&flagconf, "conf", "app/analyst/configs/config.yaml", "config path, eg: -conf config.yaml")
	flag.StringVar(&flagMode, "mode", "batch", "batch | single | compare")
	flag.StringVar(&flagCompany, "company", "", "company name for single mode")
}

func main() {
	flag.Parse()

	// .env 不存在时忽略
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(flagconf)
	if err != nil {
		log.Fatalf("无法加载配置文件: %v", err)
	}
	if err := logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		log.Fatalf("无法初始化日志: %v", err)
	}
	logger.Log.Info("启动年报分析...")

	ctx := context.Background()

	companies, err := loader.Load(cfg.Companies)
	if err != nil {
		logger.Log.Fatalf("加载公司数据失败: %v", err)
	}
	if len(companies) == 0 {
		logger.Log.Fatal("配置错误: 未找到任何公司数据")
	}
	logger.Log.Infof("共加载 %d 家公司", len(companies))

	var store engine.Store
	if cfg.DB.Host != "" {
		s, err := storage.NewStorage(ctx, cfg.DB)
		if err != nil {
			logger.Log.Errorf("无法连接数据库: %v. 将仅输出报告文件。", err)
		} else {
			defer s.Close()
			store = s
			logger.Log.Info("已成功连接到数据库")
		}
	} else {
		logger.Log.Info("未配置数据库信息，跳过数据库连接")
	}

	agent, err := insight.New(ctx, cfg)
	if err != nil {
		logger.Log.Fatalf("初始化 Insight Provider 失败: %v", err)
	}
	eng := engine.FromConfig(cfg, agent, store)

	switch flagMode {
	case "single":
		rec, ok := findCompany(companies, flagCompany)
		if !ok {
			logger.Log.Fatalf("未找到公司: %s", flagCompany)
		}
		writeOutput(cfg.Output, rec.Name+".txt", eng.AnalyzeWithTimeout(ctx, rec))
	case "compare":
		writeOutput(cfg.Output, "comparison.txt", eng.CompareCompanies(ctx, companies))
	case "batch":
		res := eng.RunBatch(ctx, companies, func(status string, percent int) {
			logger.Log.Infof("[%3d%%] %s", percent, status)
		})
		for _, c := range res.Companies {
			if c.Report != "" {
				writeOutput(cfg.Output, c.Name+".txt", c.Report)
			}
		}
		writeOutput(cfg.Output, "comparison.txt", res.Comparison)
	default:
		logger.Log.Fatalf("未知模式: %s", flagMode)
	}
}

func findCompany(companies []model.CompanyRecord, name string) (model.CompanyRecord, bool) {
	if name == "" {
		return companies[0], true
	}
	for _, c := range companies {
		if c.Name == name {
			return c, true
		}
	}
	return model.CompanyRecord{}, false
}

// writeOutput 未配置输出目录时打印到标准输出
func writeOutput(dir, name, content string) {
	if dir == "" {
		fmt.Printf("===== %s =====\n%s\n", strings.TrimSuffix(name, ".txt"), content)
		return
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Log.Errorf("无法创建输出目录: %v", err)
		return
	}
	path := filepath.Join(dir, time.Now().Format("20060102")+"_"+safeFileName(name))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		logger.Log.Errorf("写入报告失败 [%s]: %v", path, err)
		return
	}
	logger.Log.Infof("报告已写入 %s", path)
}

// safeFileName 公司名可能来自 Markdown 文件名，去掉路径分隔符等字符，保证写在输出目录内
func safeFileName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r < 0x20, strings.ContainsRune(`/\:*?"<>|`, r):
			return '_'
		}
		return r
	}, name)
	cleaned = strings.Trim(cleaned, " .")
	if cleaned == "" {
		return "report"
	}
	return cleaned
}
