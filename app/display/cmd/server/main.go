package main

import (
	"flag"
	"os"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/config"
	"github.com/go-kratos/kratos/v2/config/file"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"
	"github.com/joho/godotenv"

	"github.com/iWorld-y/report_analyst/app/display/internal/conf"
	"github.com/iWorld-y/report_analyst/app/display/internal/server"
)

// go build -ldflags "-X main.Version=x.y.z"
var (
	// Name 是服务的名称
	Name string = "display"
	// Version 是服务的版本号
	Version string
	// flagconf 是配置文件的路径命令行参数
	flagconf string

	id, _ = os.Hostname()
)

func init() {
	flag.StringVar(&flagconf, "conf", "app/display/configs/config.yaml", "config path, eg: -conf config.yaml")
}

func newApp(logger log.Logger, hs *http.Server, cs *server.CronServer) *kratos.App {
	return kratos.New(
		kratos.ID(id),
		kratos.Name(Name),
		kratos.Version(Version),
		kratos.Metadata(map[string]string{}),
		kratos.Logger(logger),
		kratos.Server(hs, cs),
	)
}

func main() {
	flag.Parse()
	_ = godotenv.Load()

	// 初始化日志记录器，包含时间戳、调用者信息、服务ID等上下文
	logger := log.With(log.NewStdLogger(os.Stdout),
		"ts", log.DefaultTimestamp,
		"caller", log.DefaultCaller,
		"service.id", id,
		"service.name", Name,
		"service.version", Version,
	)

	c := config.New(
		config.WithSource(
			file.NewSource(flagconf),
		),
	)
	defer c.Close()

	if err := c.Load(); err != nil {
		panic(err)
	}

	var bc conf.Bootstrap
	if err := c.Scan(&bc); err != nil {
		panic(err)
	}
	applyEnv(&bc)

	app, cleanup, err := initApp(bc.Server, bc.Data, bc.Analyst, logger)
	if err != nil {
		panic(err)
	}
	defer cleanup()

	if err := app.Run(); err != nil {
		panic(err)
	}
}

// applyEnv 敏感信息允许通过环境变量覆盖
func applyEnv(bc *conf.Bootstrap) {
	if v := os.Getenv("ANALYST_DB_SOURCE"); v != "" && bc.Data != nil && bc.Data.Database != nil {
		bc.Data.Database.Source = v
	}
	if bc.Analyst == nil {
		return
	}
	if v := os.Getenv("ANALYST_LLM_API_KEY"); v != "" && bc.Analyst.Llm != nil {
		bc.Analyst.Llm.ApiKey = v
	}
	if v := os.Getenv("ANALYST_TAVILY_API_KEY"); v != "" && bc.Analyst.Search != nil && bc.Analyst.Search.Tavily != nil {
		bc.Analyst.Search.Tavily.ApiKey = v
	}
}
