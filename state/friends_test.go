package state_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"

	"github.com/luma/warchat/state"
)

var _ = Describe("Friends", func() {
	var h *harness

	BeforeEach(func() {
		h = defaultHarness()
		h.joined("Trade")
	})

	It("parses an online friend", func() {
		h.receive(`1018 INFO "3: Jo, using Starcraft Broodwar in the channel Trade on server useast.battle.net."`)

		Expect(h.engine.Friends.Friends()).To(Equal([]state.Friend{{
			Name:     "Jo",
			Online:   true,
			Client:   "[SEXP]",
			Channel:  "Trade",
			Server:   "useast.battle.net.",
			Position: 3,
		}}))
	})

	It("parses an offline friend from init6", func() {
		h.receive("SERVER INFO 0 0 0 1: Bo, offline.")
		Expect(h.engine.Friends.Friends()).To(Equal([]state.Friend{{Name: "Bo", Position: 1}}))
	})

	It("leaves the client empty for products it does not know", func() {
		h.receive(`1018 INFO "2: Jo, using Some Game in the channel Trade on server x."`)
		Expect(h.engine.Friends.Friends()[0].Client).To(BeEmpty())
	})

	It("skips friend lines neither shape matches", func() {
		h.receive(`1018 INFO "Jo, in the channel Trade"`)
		Expect(h.engine.Friends.Friends()).To(BeEmpty())
	})

	It("replaces the list on every header", func() {
		h.receive(
			`1018 INFO "Your friends are:"`,
			`1018 INFO "1: A, offline."`,
			`1018 INFO "2: B, offline."`,
			`1018 INFO "Your friends are:"`,
			`1018 INFO "1: C, offline."`,
		)

		Expect(h.engine.Friends.Friends()).To(Equal([]state.Friend{{Name: "C", Position: 1}}))
	})

	It("rejects duplicate names in any case", func() {
		h.receive(
			`1018 INFO "1: Jo, offline."`,
			`1018 INFO "2: JO, offline."`,
		)

		Expect(h.engine.Friends.Friends()).To(HaveLen(1))
		Expect(h.engine.Friends.HasFriend("jo")).To(BeTrue())
	})

	It("treats All Friends as a friend", func() {
		Expect(h.engine.Friends.HasFriend("All Friends")).To(BeTrue())
		Expect(h.engine.Friends.HasFriend("Nobody")).To(BeFalse())
	})

	It("is cleared when a new session starts", func() {
		h.receive(`1018 INFO "1: Jo, offline."`)
		h.connected()
		Expect(h.engine.Friends.Friends()).To(BeEmpty())
	})

	Describe("results", func() {
		var results []state.FriendResult

		BeforeEach(func() {
			results = nil
			h.engine.Friends.OnResult(func(r state.FriendResult) {
				results = append(results, r)
			})
			h.recorder.Reset()
		})

		It("reports an add and lists again", func() {
			h.receive(`1018 INFO "Added Jo to your friends list."`)

			Expect(results).To(Equal([]state.FriendResult{{Action: state.FriendAdd, Success: true, User: "Jo"}}))
			Expect(h.recorder.Chat()).To(Equal([]string{"/friends list"}))
		})

		It("reports a removal and lists again", func() {
			h.receive("SERVER INFO 0 0 0 Removed Jo from your friends list.")

			Expect(results).To(Equal([]state.FriendResult{{Action: state.FriendRemove, Success: true, User: "Jo"}}))
			Expect(h.recorder.Chat()).To(Equal([]string{"/friends list"}))
		})

		DescribeTable("reports failures without listing again",
			func(message string, expected state.FriendResult) {
				h.receive(`1019 ERROR "` + message + `"`)

				Expect(results).To(Equal([]state.FriendResult{expected}))
				Expect(h.recorder.Chat()).To(BeEmpty())
			},
			Entry("maximum",
				"You already have the maximum number of friends in your list. You will need to remove some of your friends before adding more.",
				state.FriendResult{Action: state.FriendAdd, Error: state.FriendErrMaximum}),
			Entry("add without a name",
				"You need to supply the account name of the friend you wish to add to your list.",
				state.FriendResult{Action: state.FriendAdd, Error: state.FriendErrUsername}),
			Entry("yourself",
				"You can't add yourself to your friends list.",
				state.FriendResult{Action: state.FriendAdd, Error: state.FriendErrYourself}),
			Entry("empty list",
				"You don't have any friends in your list. Use /friends add USERNAME to add a friend to your list.",
				state.FriendResult{Action: state.FriendList, Error: state.FriendErrEmpty}),
			Entry("remove without a name",
				"You need to supply the account name of the friend you wish to remove from your list.",
				state.FriendResult{Action: state.FriendRemove, Error: state.FriendErrUsername}),
			Entry("not a friend",
				"Jo was not in your friends list.",
				state.FriendResult{Action: state.FriendRemove, Error: state.FriendErrMissing}),
		)
	})

	Describe("requests", func() {
		BeforeEach(func() {
			h.recorder.Reset()
		})

		It("polls the list every minute", func() {
			h.sched.Advance(state.FriendsPollInterval)
			Expect(h.recorder.Chat()).To(Equal([]string{"/friends list"}))

			h.sched.Advance(state.FriendsPollInterval)
			Expect(h.recorder.Chat()).To(HaveLen(2))
		})

		It("marks only the periodic poll as polling", func() {
			h.engine.Friends.ListFriends()
			Expect(h.engine.Friends.IsPolling()).To(BeFalse())

			h.sched.Advance(state.FriendsPollInterval)
			Expect(h.engine.Friends.IsPolling()).To(BeTrue())

			h.sched.Advance(state.FriendsPollWindow)
			Expect(h.engine.Friends.IsPolling()).To(BeFalse())
		})

		It("lists on joining the home channel", func() {
			h.joined("Op Home")
			Expect(h.recorder.Chat()).To(ContainElement("/friends list"))
		})

		It("sends add and remove commands", func() {
			h.engine.Friends.AddFriend("Jo")
			h.engine.Friends.RemoveFriend("Bo")
			h.engine.Friends.ListFriends()

			Expect(h.recorder.Chat()).To(Equal([]string{
				"/friends add Jo",
				"/friends remove Bo",
				"/friends list",
			}))
		})
	})

	DescribeTable("IsFriendsMessage()",
		func(message string, expected bool) {
			Expect(state.IsFriendsMessage(message)).To(Equal(expected))
		},
		Entry("header", "Your friends are:", true),
		Entry("online", "1: Jo, using Diablo II in the channel x on server y.", true),
		Entry("offline", "1: Jo, offline.", true),
		Entry("added", "Added Jo to your friends list.", true),
		Entry("missing", "Jo was not in your friends list.", true),
		Entry("chatter", "Welcome to the server!", false),
	)
})
