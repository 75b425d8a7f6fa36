package unlock

import (
	"github.com/flexiworks/cetpredict/internal/unlock/service"
	"go.uber.org/fx"
)

var Module = fx.Module("unlock",
	fx.Provide(service.NewService),
)
