package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/luma/warchat/bus"
	"github.com/luma/warchat/client"
	"github.com/luma/warchat/internal/meta"
	"github.com/luma/warchat/state"
)

type handlers struct {
	session Session
	log     *zap.Logger
}

type chatRequest struct {
	Text string `json:"text" binding:"required"`
}

type friendRequest struct {
	Name string `json:"name" binding:"required"`
}

type channelsResponse struct {
	Current  state.Channel   `json:"current"`
	Channels []state.Channel `json:"channels"`
}

type connectionResponse struct {
	State string `json:"state"`
	Busy  bool   `json:"busy"`
}

func (h *handlers) ping(c *gin.Context) {
	c.String(http.StatusOK, "pong")
}

func (h *handlers) version(c *gin.Context) {
	c.JSON(http.StatusOK, meta.GetInfo())
}

func (h *handlers) snapshot(c *gin.Context) {
	snap, err := h.session.Snapshot(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, snap)
}

// users honours the SeparateBots setting, bots are served by /bots then.
func (h *handlers) users(c *gin.Context) {
	h.read(c, func(e *state.Engine) interface{} {
		if e.Settings.Settings().SeparateBots {
			people, _ := e.Users.Split()
			return people
		}

		return e.Users.Users()
	})
}

func (h *handlers) bots(c *gin.Context) {
	h.read(c, func(e *state.Engine) interface{} {
		if !e.Settings.Settings().SeparateBots {
			return []state.User{}
		}

		_, bots := e.Users.Split()
		return append([]state.User{}, bots...)
	})
}

func (h *handlers) channels(c *gin.Context) {
	h.read(c, func(e *state.Engine) interface{} {
		return channelsResponse{
			Current:  e.Channels.Current(),
			Channels: e.Channels.Directory(),
		}
	})
}

func (h *handlers) friends(c *gin.Context) {
	h.read(c, func(e *state.Engine) interface{} {
		return e.Friends.Friends()
	})
}

func (h *handlers) motd(c *gin.Context) {
	h.read(c, func(e *state.Engine) interface{} {
		return e.Motd.Lines()
	})
}

func (h *handlers) chats(c *gin.Context) {
	h.read(c, func(e *state.Engine) interface{} {
		return e.Chats.Chats()
	})
}

func (h *handlers) whispers(c *gin.Context) {
	h.read(c, func(e *state.Engine) interface{} {
		return e.Chats.Whispers()
	})
}

func (h *handlers) whispersFor(c *gin.Context) {
	name := c.Param("name")

	h.read(c, func(e *state.Engine) interface{} {
		return e.Chats.WhispersFor(name)
	})
}

func (h *handlers) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.write(c, func(e *state.Engine) {
		e.Say(req.Text)
	})
}

func (h *handlers) connect(c *gin.Context) {
	h.read(c, func(e *state.Engine) interface{} {
		e.Connection.Connect()
		return connectionOf(e)
	})
}

func (h *handlers) disconnect(c *gin.Context) {
	h.read(c, func(e *state.Engine) interface{} {
		e.Connection.Disconnect()
		return connectionOf(e)
	})
}

func (h *handlers) addFriend(c *gin.Context) {
	var req friendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.write(c, func(e *state.Engine) {
		e.Friends.AddFriend(req.Name)
	})
}

func (h *handlers) removeFriend(c *gin.Context) {
	name := c.Param("name")

	h.write(c, func(e *state.Engine) {
		e.Friends.RemoveFriend(name)
	})
}

func (h *handlers) profile(c *gin.Context) {
	h.read(c, func(e *state.Engine) interface{} {
		return redact(e.Profile.Profile())
	})
}

func (h *handlers) saveProfile(c *gin.Context) {
	var profile bus.Profile
	if err := c.ShouldBindJSON(&profile); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.read(c, func(e *state.Engine) interface{} {
		// An empty password keeps the stored one
		if profile.Password == "" {
			profile.Password = e.Profile.Profile().Password
		}

		e.Profile.SetProfile(profile)
		return redact(profile)
	})
}

func (h *handlers) settings(c *gin.Context) {
	h.read(c, func(e *state.Engine) interface{} {
		return e.Settings.Settings()
	})
}

func (h *handlers) saveSettings(c *gin.Context) {
	var settings bus.Settings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.read(c, func(e *state.Engine) interface{} {
		e.Settings.SetSettings(settings)
		return settings
	})
}

// read runs fn on the session loop and responds with what it returns.
func (h *handlers) read(c *gin.Context, fn func(e *state.Engine) interface{}) {
	var body interface{}

	err := h.session.Do(c.Request.Context(), func(e *state.Engine) {
		body = fn(e)
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, body)
}

// write runs fn on the session loop and responds 202, the server answers
// asynchronously.
func (h *handlers) write(c *gin.Context, fn func(e *state.Engine)) {
	if err := h.session.Do(c.Request.Context(), fn); err != nil {
		h.fail(c, err)
		return
	}

	c.Status(http.StatusAccepted)
}

func (h *handlers) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, client.ErrSessionClosed):
		status = http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		status = http.StatusGatewayTimeout
	}

	h.log.Warn("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(status, gin.H{"error": err.Error()})
}

func connectionOf(e *state.Engine) connectionResponse {
	return connectionResponse{
		State: e.Connection.State().String(),
		Busy:  e.Connection.IsBusy(),
	}
}

func redact(profile bus.Profile) bus.Profile {
	if profile.Password != "" {
		profile.Password = "********"
	}

	return profile
}
