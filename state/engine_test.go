package state_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/luma/warchat/bus"
	"github.com/luma/warchat/state"
)

var _ = Describe("Engine", func() {
	It("builds a snapshot of a whole login", func() {
		h := defaultHarness()
		h.connected()

		h.receive(
			"2010 NAME Me",
			`1018 INFO "Welcome to the server!"`,
			`1007 CHANNEL "Trade"`,
			"1001 USER Me 0010 [CHAT]",
			"1001 USER Jo 0000 [SEXP]",
			`1005 TALK Jo 0000 "hey"`,
			"9999 GARBAGE",
			"",
			`1018 INFO "1: Bo, offline."`,
		)

		snap := h.engine.Snapshot()
		Expect(snap.Connection).To(Equal("connected"))
		Expect(snap.Self).To(Equal("Me"))
		Expect(snap.Current).To(Equal(state.Channel{Name: "Trade", Users: 2}))
		Expect(snap.Users).To(HaveLen(2))
		Expect(snap.Friends).To(Equal([]state.Friend{{Name: "Bo", Position: 1}}))
		Expect(snap.Motd).To(Equal([]string{"Welcome to the server!"}))

		var messages []string
		for _, c := range snap.Chats {
			messages = append(messages, c.Message)
		}
		Expect(messages).To(Equal([]string{"Connected!", "", "hey", "1: Bo, offline."}))
		Expect(snap.Whispers).To(BeEmpty())
	})

	Describe("bots", func() {
		idle := func(h *harness) {
			h.connected()
			h.receive(
				`1007 CHANNEL "Trade"`,
				"1001 USER Me 0010 [CHAT]",
				"1001 USER Idler 0010 [CHAT]",
				`1005 TALK Idler 0010 "Apathy3 - Unstable and damn near unusable"`,
			)
		}

		It("are listed apart when SeparateBots is on", func() {
			h := defaultHarness()
			idle(h)

			snap := h.engine.Snapshot()
			Expect(snap.Users).To(HaveLen(1))
			Expect(snap.Users[0].Name).To(Equal("Me"))
			Expect(snap.Bots).To(HaveLen(1))
			Expect(snap.Bots[0].Name).To(Equal("Idler"))
		})

		It("stay among the users when SeparateBots is off", func() {
			h := newHarness(bus.Profile{Username: "Me"}, bus.Settings{})
			idle(h)

			snap := h.engine.Snapshot()
			Expect(snap.Users).To(HaveLen(2))
			Expect(snap.Users[1].Bot).To(BeTrue())
			Expect(snap.Bots).To(BeEmpty())
		})
	})

	It("forwards what we say to the chat channel", func() {
		h := defaultHarness()
		h.engine.Say("/who Trade")
		Expect(h.recorder.Chat()).To(Equal([]string{"/who Trade"}))
	})
})
