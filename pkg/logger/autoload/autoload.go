package autoload

import (
	configx "github.com/Ade-Adeleke/SmartShopperAI/pkg/config"
	logx "github.com/Ade-Adeleke/SmartShopperAI/pkg/logger"
)

func init() {
	logx.Init(*configx.MustNew[logx.Config]("LOG"))
}
