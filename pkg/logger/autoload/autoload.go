// Package autoload initializes the global logger from the environment as a
// side effect of being imported.
package autoload

import (
	configx "github.com/opsloop-ai/opsloop/pkg/config"
	logx "github.com/opsloop-ai/opsloop/pkg/logger"
)

func init() {
	conf := configx.MustNew[logx.Config]("LOG")
	logx.Init(*conf)
}
