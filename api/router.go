// Package api exposes a running session over HTTP.
package api

import (
	"context"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/luma/warchat/internal/metrics"
	"github.com/luma/warchat/state"
)

// Session is the part of client.Session the handlers use.
type Session interface {
	Do(ctx context.Context, fn func(e *state.Engine)) error
	Snapshot(ctx context.Context) (state.Snapshot, error)
}

type Options struct {
	Session Session

	// Debug puts gin in debug mode.
	Debug bool

	Log *zap.Logger
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(opts Options) *gin.Engine {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := setupRouter(opts.Debug, log)
	h := &handlers{session: opts.Session, log: log}

	r.GET("/ping", h.ping)
	r.GET("/version", h.version)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	r.GET("/state", h.snapshot)
	r.GET("/users", h.users)
	r.GET("/bots", h.bots)
	r.GET("/channels", h.channels)
	r.GET("/friends", h.friends)
	r.GET("/motd", h.motd)
	r.GET("/chats", h.chats)
	r.GET("/whispers", h.whispers)
	r.GET("/whispers/:name", h.whispersFor)

	r.POST("/chat", h.chat)
	r.POST("/connect", h.connect)
	r.POST("/disconnect", h.disconnect)
	r.POST("/friends", h.addFriend)
	r.DELETE("/friends/:name", h.removeFriend)

	r.GET("/profile", h.profile)
	r.PUT("/profile", h.saveProfile)
	r.GET("/settings", h.settings)
	r.PUT("/settings", h.saveSettings)

	return r
}

func setupRouter(debug bool, log *zap.Logger) *gin.Engine {
	gin.DisableConsoleColor()
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Access log in UTC, polling endpoints are left out
	r.Use(ginzap.GinzapWithConfig(log, &ginzap.Config{
		TimeFormat: time.RFC3339,
		UTC:        true,
		SkipPaths:  []string{"/ping", "/metrics"},
	}))

	// Logs all panic to error log
	//   - stack means whether output the stack info.
	r.Use(ginzap.RecoveryWithZap(log, true))

	return r
}
