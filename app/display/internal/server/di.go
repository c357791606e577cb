package server

import (
	"github.com/google/wire"

	"github.com/iWorld-y/report_analyst/app/display/internal/data"
	"github.com/iWorld-y/report_analyst/app/display/internal/service"
	"github.com/iWorld-y/report_analyst/app/display/internal/usecase"
)

// ProviderSet 是展示服务的依赖注入 Provider 集合
var ProviderSet = wire.NewSet(
	// Server providers
	NewHTTPServer,
	NewCronServer,
	NewAnalystEngine,
	NewCompanySource,

	// Data providers
	data.NewData,
	data.NewReportRepo,

	// UseCase providers
	usecase.NewReportUseCase,
	usecase.NewAnalysisUseCase,

	// Service providers
	service.NewDisplayService,
)
