package cutoff

import (
	"github.com/flexiworks/cetpredict/internal/cutoff/repository"
	"github.com/flexiworks/cetpredict/internal/cutoff/service"
	"go.uber.org/fx"
)

var Module = fx.Module("cutoff",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
