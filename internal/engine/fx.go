package engine

import (
	"github.com/smallbiznis/settleline/internal/engine/service"
	"go.uber.org/fx"
)

var Module = fx.Module("engine",
	fx.Provide(service.NewEngine),
)
