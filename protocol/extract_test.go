package protocol_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"

	"github.com/luma/warchat/protocol"
)

var _ = Describe("Extractors", func() {
	Describe("Quoted()", func() {
		It("returns the text between the first quote and the last character", func() {
			Expect(protocol.Quoted(`1005 TALK GLUECK2000 0010 "Hello there"`)).To(Equal("Hello there"))
		})

		It("keeps inner quotes as they are", func() {
			Expect(protocol.Quoted(`1018 INFO "say "hi" back"`)).To(Equal(`say "hi" back`))
		})

		It("returns an empty payload for an empty quoted string", func() {
			Expect(protocol.Quoted(`1018 INFO ""`)).To(Equal(""))
		})

		It("does not panic on lines without quotes", func() {
			Expect(func() { protocol.Quoted("2010 NAME") }).NotTo(Panic())
			Expect(protocol.Quoted("")).To(Equal(""))
		})
	})

	Describe("Column()", func() {
		DescribeTable("slices from the requested column",
			func(line string, column int, expected string) {
				Expect(protocol.Column(line, column)).To(Equal(expected))
			},
			Entry("channel join", "CHANNEL JOIN 0 0 0 Trade", 6, "Trade"),
			Entry("user talk", "USER TALK FROM 0 0010 0 GLUECK2000 Hello there", 8, "Hello there"),
			Entry("preserves inner space runs", "USER TALK FROM 0 0010 0 Jo a   b", 8, "a   b"),
			Entry("column past the end", "SERVER INFO", 6, ""),
			Entry("first column", "SERVER INFO x", 1, "SERVER INFO x"),
		)
	})

	Describe("ReverseClient()", func() {
		It("reverses and uppercases the token", func() {
			Expect(protocol.ReverseClient("tahc")).To(Equal("[CHAT]"))
			Expect(protocol.ReverseClient("PX3W")).To(Equal("[W3XP]"))
		})
	})

	Describe("listing predicates", func() {
		It("recognises the listing header", func() {
			Expect(protocol.IsListingHeader("Listing 3 channels:")).To(BeTrue())
			Expect(protocol.IsListing("Listing 3 channels:")).To(BeTrue())
		})

		It("recognises a listing entry by its three separators", func() {
			Expect(protocol.IsListingEntry("Trade | 12 | 0 | Buy and sell")).To(BeTrue())
			Expect(protocol.IsListingEntry("Trade | 12 | Buy and sell")).To(BeFalse())
		})

		It("leaves ordinary text alone", func() {
			Expect(protocol.IsListing("Welcome to the server")).To(BeFalse())
		})
	})
})
