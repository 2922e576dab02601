package state_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/luma/warchat/bus"
	"github.com/luma/warchat/state"
)

var _ = Describe("ChatLog", func() {
	var h *harness

	BeforeEach(func() {
		h = defaultHarness()
		h.joined("Trade")
	})

	last := func() state.Chat {
		chats := h.engine.Chats.Chats()
		ExpectWithOffset(1, chats).NotTo(BeEmpty())
		return chats[len(chats)-1]
	}

	It("logs talk from a known user", func() {
		h.receive("1001 USER GLUECK2000 0010 [SEXP]")
		h.receive(`1005 TALK GLUECK2000 0010 "Hello there"`)

		Expect(last()).To(Equal(state.Chat{
			Timestamp: epoch,
			Kind:      state.ChatTalk,
			User:      state.User{Name: "GLUECK2000", Flags: "0010", Client: "[SEXP]"},
			Direction: state.DirectionFrom,
			Message:   "Hello there",
		}))
	})

	It("logs init6 talk and emotes", func() {
		h.receive("USER IN 0 0 0010 0 Jo tahc")
		h.receive("USER TALK FROM 0 0010 0 Jo hi  there", "USER EMOTE FROM 0 0010 0 Jo waves")

		chats := h.engine.Chats.Chats()
		Expect(chats[len(chats)-2].Message).To(Equal("hi  there"))
		Expect(chats[len(chats)-2].User.Client).To(Equal("[CHAT]"))
		Expect(last().Kind).To(Equal(state.ChatEmote))
		Expect(last().Message).To(Equal("waves"))
	})

	It("attributes talk from strangers to a synthetic user", func() {
		h.receive(`1005 TALK Ghost 0010 "boo"`)
		Expect(last().User).To(Equal(state.User{Name: "Ghost", Client: "[NONE]"}))
	})

	It("drops emotes when told to", func() {
		h = newHarness(bus.Profile{Username: "Me"}, bus.Settings{IgnoreEmotes: true})
		h.joined("Trade")
		before := len(h.engine.Chats.Chats())

		h.receive(`1023 EMOTE Jo 0010 "waves"`)
		Expect(h.engine.Chats.Chats()).To(HaveLen(before))
	})

	It("marks anti-idle bots", func() {
		h.receive("1001 USER Idler 0010 [CHAT]")
		h.receive(`1005 TALK Idler 0010 "Apathy3 - Unstable and damn near unusable"`)

		u, _ := h.engine.Users.Lookup("Idler")
		Expect(u.Bot).To(BeTrue())
		Expect(last().User.Bot).To(BeTrue())
	})

	It("logs broadcasts, errors and info from the server", func() {
		h.receive(`1006 BROADCAST "Maintenance soon"`, `1019 ERROR "That user is not logged on."`, `1018 INFO "Hi"`)

		chats := h.engine.Chats.Chats()
		tail := chats[len(chats)-3:]
		Expect(tail[0].Kind).To(Equal(state.ChatBroadcast))
		Expect(tail[1].Kind).To(Equal(state.ChatError))
		Expect(tail[2].Kind).To(Equal(state.ChatInfo))
		for _, c := range tail {
			Expect(c.User).To(Equal(state.ServerUser))
		}
	})

	Describe("channel changes", func() {
		It("are logged from WarChat", func() {
			h.receive("CHANNEL JOIN 0 0 0 Op Home")

			Expect(last().Kind).To(Equal(state.ChatChannel))
			Expect(last().Channel).To(Equal("Op Home"))
			Expect(last().User).To(Equal(state.WarChatUser))
			Expect(last().Message).To(BeEmpty())
		})

		It("skip the Chat lobby", func() {
			before := len(h.engine.Chats.Chats())
			h.joined("Chat")
			Expect(h.engine.Chats.Chats()).To(HaveLen(before))
		})
	})

	Describe("info suppression", func() {
		It("drops everything while the MOTD is read", func() {
			h = defaultHarness()
			h.receive(`1018 INFO "Welcome"`, `1007 CHANNEL "Chat"`, `1018 INFO "After"`)

			Expect(h.engine.Chats.Chats()).To(HaveLen(1))
			Expect(last().Message).To(Equal("After"))
		})

		It("drops unrequested channel listings", func() {
			before := len(h.engine.Chats.Chats())
			h.receive(`1018 INFO "Listing 3 channels:"`, `1018 INFO "Trade | 4 | 0 | buy and sell"`)
			Expect(h.engine.Chats.Chats()).To(HaveLen(before))
		})

		It("shows listings requested in the last second", func() {
			h.engine.Say("/channels")
			h.receive(`1018 INFO "Listing 3 channels:"`)
			Expect(last().Message).To(Equal("Listing 3 channels:"))
			Expect(h.engine.Chats.IsListingChannels()).To(BeTrue())

			h.sched.Advance(state.ListingWindow)
			Expect(h.engine.Chats.IsListingChannels()).To(BeFalse())

			before := len(h.engine.Chats.Chats())
			h.receive(`1018 INFO "Listing 3 channels:"`)
			Expect(h.engine.Chats.Chats()).To(HaveLen(before))
		})

		It("keeps the window open for a later request", func() {
			h.engine.Say(" /LIST ")
			h.sched.Advance(state.ListingWindow / 2)
			h.engine.Say("/chs")
			h.sched.Advance(state.ListingWindow / 2)

			Expect(h.engine.Chats.IsListingChannels()).To(BeTrue())
		})

		It("logs the friends list the user asked for", func() {
			h.engine.Say("/friends list")
			before := len(h.engine.Chats.Chats())

			h.receive(`1018 INFO "Your friends are:"`, `1018 INFO "1: Jo, offline."`)
			Expect(h.engine.Chats.Chats()).To(HaveLen(before + 2))
			Expect(last().Message).To(Equal("1: Jo, offline."))
		})

		It("drops the answer to the periodic friends poll", func() {
			h.sched.Advance(state.FriendsPollInterval)
			Expect(h.engine.Friends.IsPolling()).To(BeTrue())

			before := len(h.engine.Chats.Chats())
			h.receive(`1018 INFO "Your friends are:"`, `1018 INFO "1: Jo, offline."`, `1018 INFO "Added Bo to your friends list."`)

			Expect(h.engine.Chats.Chats()).To(HaveLen(before + 1))
			Expect(last().Message).To(Equal("Added Bo to your friends list."))

			h.sched.Advance(state.FriendsPollWindow)
			Expect(h.engine.Friends.IsPolling()).To(BeFalse())

			h.receive(`1018 INFO "Your friends are:"`)
			Expect(last().Message).To(Equal("Your friends are:"))
		})
	})

	Describe("whispers", func() {
		It("are logged in both directions", func() {
			h.receive(`1004 WHISPER Jo 0010 "psst"`, "USER WHISPER TO 0 0010 0 Bo hey you")

			whispers := h.engine.Chats.Whispers()
			Expect(whispers).To(HaveLen(2))
			Expect(whispers[0].Direction).To(Equal(state.DirectionFrom))
			Expect(whispers[0].User).To(Equal(state.User{Name: "Jo", Client: "[NONE]"}))
			Expect(whispers[1].Direction).To(Equal(state.DirectionTo))
			Expect(whispers[1].Message).To(Equal("hey you"))
		})

		It("map whispers to your friends onto All Friends", func() {
			h.receive("1010 WHISPER your\u00A0friends 0010 \"hi all\"")
			Expect(last().User.Name).To(Equal("All Friends"))
		})

		It("are a subsequence of the log", func() {
			h.receive(
				`1005 TALK Jo 0010 "a"`,
				`1004 WHISPER Jo 0010 "b"`,
				`1018 INFO "c"`,
				`1010 WHISPER Bo 0010 "d"`,
			)

			var fromLog []state.Chat
			for _, c := range h.engine.Chats.Chats() {
				if c.Kind == state.ChatWhisper {
					fromLog = append(fromLog, c)
				}
			}
			Expect(h.engine.Chats.Whispers()).To(Equal(fromLog))
		})

		It("publish the new entry along with the thread", func() {
			var got []state.Whispers
			h.engine.Chats.OnWhispers(func(w state.Whispers) {
				got = append(got, w)
			})

			h.receive(`1004 WHISPER Jo 0010 "one"`, `1004 WHISPER Jo 0010 "two"`)

			Expect(got).To(HaveLen(2))
			Expect(got[1].All).To(HaveLen(2))
			Expect(got[1].New.Message).To(Equal("two"))
		})

		It("are grouped by counterpart", func() {
			h.receive(
				`1018 INFO "1: Jo, offline."`,
				`1004 WHISPER Jo 0010 "a"`,
				`1004 WHISPER Bo 0010 "b"`,
				`1010 WHISPER jo 0010 "c"`,
				"1010 WHISPER your\u00A0friends 0010 \"d\"",
			)

			messages := func(chats []state.Chat) []string {
				var out []string
				for _, c := range chats {
					out = append(out, c.Message)
				}
				return out
			}

			Expect(messages(h.engine.Chats.WhispersFor("JO"))).To(Equal([]string{"a", "c"}))
			Expect(messages(h.engine.Chats.WhispersFor("Bo"))).To(Equal([]string{"b"}))
			Expect(messages(h.engine.Chats.WhispersFor(state.AllFriends))).To(Equal([]string{"a", "c", "d"}))
		})
	})

	It("logs what we say ourselves", func() {
		h.engine.Say("hello all")
		h.engine.Say("/whois Jo")

		Expect(last().Message).To(Equal("hello all"))
		Expect(last().User).To(Equal(state.User{Name: "Me", Client: "[NONE]"}))
	})

	It("logs lifecycle notices from WarChat", func() {
		h.connected()

		Expect(last().Message).To(Equal("Connected!"))
		Expect(last().User).To(Equal(state.WarChatUser))
		Expect(last().Kind).To(Equal(state.ChatInfo))
	})

	It("keeps its history across sessions", func() {
		h.receive(`1005 TALK Jo 0010 "a"`)
		before := len(h.engine.Chats.Chats())

		h.connected()
		Expect(len(h.engine.Chats.Chats())).To(BeNumerically(">=", before))
	})
})
