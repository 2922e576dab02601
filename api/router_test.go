package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/tidwall/gjson"

	"github.com/luma/warchat/api"
	"github.com/luma/warchat/bus"
	"github.com/luma/warchat/client"
	"github.com/luma/warchat/state"
)

var _ = Describe("Router", func() {
	var (
		ctx     context.Context
		cancel  context.CancelFunc
		session *client.Session
		router  *gin.Engine
	)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		var req *http.Request
		if body == "" {
			req = httptest.NewRequest(method, path, nil)
		} else {
			req = httptest.NewRequest(method, path, strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
		}

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	BeforeEach(func() {
		ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)

		session = client.New(client.Options{
			Profile:  bus.Profile{Username: "Me", Password: "secret", Home: "Op Home"},
			Settings: bus.DefaultSettings(),
			Offline:  true,
		})
		go session.Run(ctx)

		router = api.NewRouter(api.Options{Session: session})

		session.Signal(bus.SocketConnected)
		session.Receive("2010 NAME Me\r\n1007 CHANNEL \"Trade\"\r\n1001 USER Me 0010 [CHAT]\r\n1001 USER Jo 0000 [SEXP]\r\n")
		session.Receive("1004 WHISPER Jo 0000 \"psst\"\r\n")
	})

	AfterEach(func() {
		cancel()
		Expect(session.Close()).To(Succeed())
	})

	It("answers ping", func() {
		w := do(http.MethodGet, "/ping", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(Equal("pong"))
	})

	It("reports the build", func() {
		w := do(http.MethodGet, "/version", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(gjson.Get(w.Body.String(), "GoVersion").String()).NotTo(BeEmpty())
	})

	It("serves metrics", func() {
		// The loop has handled both received chunks once a snapshot returns.
		_, err := session.Snapshot(ctx)
		Expect(err).NotTo(HaveOccurred())

		w := do(http.MethodGet, "/metrics", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring("warchat_lines_total"))
		Expect(w.Body.String()).To(ContainSubstring(`kind="whisper_in"`))
	})

	It("returns the whole snapshot", func() {
		w := do(http.MethodGet, "/state", "")
		Expect(w.Code).To(Equal(http.StatusOK))

		body := w.Body.String()
		Expect(gjson.Get(body, "connection").String()).To(Equal("connected"))
		Expect(gjson.Get(body, "current.name").String()).To(Equal("Trade"))
		Expect(gjson.Get(body, "users.#").Int()).To(BeEquivalentTo(2))
	})

	It("lists users and channels", func() {
		w := do(http.MethodGet, "/users", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(gjson.Get(w.Body.String(), "#.name").String()).To(Equal(`["Me","Jo"]`))

		w = do(http.MethodGet, "/channels", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(gjson.Get(w.Body.String(), "current.users").Int()).To(BeEquivalentTo(2))
	})

	It("lists anti-idle bots apart from users", func() {
		session.Receive("1005 TALK Jo 0000 \"Apathy3 - Unstable and damn near unusable\"\r\n")
		_, err := session.Snapshot(ctx)
		Expect(err).NotTo(HaveOccurred())

		w := do(http.MethodGet, "/users", "")
		Expect(gjson.Get(w.Body.String(), "#.name").String()).To(Equal(`["Me"]`))

		w = do(http.MethodGet, "/bots", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(gjson.Get(w.Body.String(), "#.name").String()).To(Equal(`["Jo"]`))
	})

	It("lists whispers by counterpart", func() {
		w := do(http.MethodGet, "/whispers/jo", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(gjson.Get(w.Body.String(), "#.message").String()).To(Equal(`["psst"]`))

		w = do(http.MethodGet, "/whispers/Nobody", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(gjson.Get(w.Body.String(), "#").Int()).To(BeZero())
	})

	It("says chat text", func() {
		w := do(http.MethodPost, "/chat", `{"text":"hello all"}`)
		Expect(w.Code).To(Equal(http.StatusAccepted))

		w = do(http.MethodGet, "/chats", "")
		messages := gjson.Get(w.Body.String(), "#.message").Array()
		Expect(messages[len(messages)-1].String()).To(Equal("hello all"))
	})

	It("rejects chat without text", func() {
		w := do(http.MethodPost, "/chat", `{}`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(gjson.Get(w.Body.String(), "error").String()).NotTo(BeEmpty())
	})

	It("accepts friend changes", func() {
		Expect(do(http.MethodPost, "/friends", `{"name":"Jo"}`).Code).To(Equal(http.StatusAccepted))
		Expect(do(http.MethodDelete, "/friends/Jo", "").Code).To(Equal(http.StatusAccepted))
	})

	It("hides the password", func() {
		w := do(http.MethodGet, "/profile", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(gjson.Get(w.Body.String(), "username").String()).To(Equal("Me"))
		Expect(w.Body.String()).NotTo(ContainSubstring("secret"))
	})

	It("keeps the password when saving a profile without one", func() {
		w := do(http.MethodPut, "/profile", `{"username":"Other","server":"chat.example.com"}`)
		Expect(w.Code).To(Equal(http.StatusOK))

		var password string
		Expect(session.Do(ctx, func(e *state.Engine) {
			password = e.Profile.Profile().Password
		})).To(Succeed())
		Expect(password).To(Equal("secret"))
	})

	It("saves settings", func() {
		w := do(http.MethodPut, "/settings", `{"autoReconnect":false,"ignoreEmotes":true,"separateBots":false}`)
		Expect(w.Code).To(Equal(http.StatusOK))

		var settings bus.Settings
		Expect(json.Unmarshal(do(http.MethodGet, "/settings", "").Body.Bytes(), &settings)).To(Succeed())
		Expect(settings).To(Equal(bus.Settings{IgnoreEmotes: true}))
	})

	It("reports a closed session", func() {
		Expect(session.Close()).To(Succeed())

		w := do(http.MethodGet, "/state", "")
		Expect(w.Code).To(Equal(http.StatusServiceUnavailable))
	})
})
