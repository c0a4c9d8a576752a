package logsvc

import "github.com/trezcool/masomo-client/core"

// New returns the zap logger, reporting to Rollbar as well when a token is configured.
func New(conf *core.Config) core.Logger {
	zl := NewZapLogger(conf)
	if conf.RollbarToken == "" || conf.TestMode {
		return zl
	}
	return NewRollbarLogger(zl, conf)
}
