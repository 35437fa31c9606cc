package size_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	. "github.com/papercache/papercache/internal/size"
)

var _ = Describe("Size", func() {
	Describe("constants", func() {
		It("follows binary powers of 1024", func() {
			Expect(SizeKilo).To(Equal(Size(1 << 10)))
			Expect(SizeMega).To(Equal(Size(1 << 20)))
			Expect(SizeGiga).To(Equal(Size(1 << 30)))
			Expect(SizeTera).To(Equal(Size(1 << 40)))
		})
	})

	Describe("Parse", func() {
		It("parses a plain byte count", func() {
			s, err := Parse("1B")
			Expect(err).ToNot(HaveOccurred())
			Expect(s).To(Equal(SizeUnit))
		})

		DescribeTable("binary suffixes, short and IEC-style, all mean 1024-based units",
			func(input string, expected Size) {
				s, err := Parse(input)
				Expect(err).ToNot(HaveOccurred())
				Expect(s).To(Equal(expected))
			},
			Entry("1K", "1K", SizeKilo),
			Entry("1KB", "1KB", SizeKilo),
			Entry("1KiB", "1KiB", SizeKilo),
			Entry("1gib (case-insensitive)", "1gib", SizeGiga),
			Entry("10GB", "10GB", 10*SizeGiga),
			Entry("1GiB (spec example)", "1GiB", SizeGiga),
		)

		It("parses fractional values", func() {
			s, err := Parse("1.5KB")
			Expect(err).ToNot(HaveOccurred())
			Expect(s).To(Equal(Size(1.5 * float64(SizeKilo))))
		})

		It("parses zero", func() {
			s, err := Parse("0B")
			Expect(err).ToNot(HaveOccurred())
			Expect(s).To(Equal(SizeNul))
		})

		It("trims surrounding whitespace and quotes", func() {
			s, err := Parse(` "5MB" `)
			Expect(err).ToNot(HaveOccurred())
			Expect(s).To(Equal(5 * SizeMega))
		})

		It("accepts a leading plus sign", func() {
			s, err := Parse("+5MB")
			Expect(err).ToNot(HaveOccurred())
			Expect(s).To(Equal(5 * SizeMega))
		})

		It("rejects negative sizes", func() {
			_, err := Parse("-5MB")
			Expect(err).To(MatchError(ContainSubstring("negative")))
		})

		It("rejects an empty string", func() {
			_, err := Parse("")
			Expect(err).To(MatchError(ContainSubstring("invalid size")))
		})

		It("rejects a bare number with no unit", func() {
			_, err := Parse("123")
			Expect(err).To(MatchError(ContainSubstring("missing unit")))
		})

		It("rejects an unknown unit", func() {
			_, err := Parse("5XYZ")
			Expect(err).To(MatchError(ContainSubstring("unknown unit")))
		})

		It("rejects a malformed number", func() {
			_, err := Parse("5.5.5MB")
			Expect(err).To(HaveOccurred())
		})

		It("rejects values that overflow a uint64", func() {
			_, err := Parse("99999999999999999999EB")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("ParseByte", func() {
		It("parses straight from a byte slice", func() {
			s, err := ParseByte([]byte("10KB"))
			Expect(err).ToNot(HaveOccurred())
			Expect(s).To(Equal(10 * SizeKilo))
		})

		It("rejects an empty slice", func() {
			_, err := ParseByte([]byte{})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("GetSize", func() {
		It("returns ok=false instead of an error", func() {
			s, ok := GetSize("invalid")
			Expect(ok).To(BeFalse())
			Expect(s).To(Equal(SizeNul))
		})
	})

	Describe("String", func() {
		It("picks the largest unit that fits", func() {
			Expect((5 * SizeMega).String()).To(ContainSubstring("MB"))
			Expect((2 * SizeGiga).String()).To(ContainSubstring("GB"))
		})

		It("round-trips through Parse for whole-unit values", func() {
			s := 3 * SizeGiga
			reparsed, err := Parse(s.String())
			Expect(err).ToNot(HaveOccurred())
			Expect(reparsed).To(Equal(s))
		})
	})

	Describe("UnmarshalText", func() {
		It("decodes a config value the way viper would via mapstructure", func() {
			var s Size
			Expect(s.UnmarshalText([]byte("1GiB"))).To(Succeed())
			Expect(s).To(Equal(SizeGiga))
		})
	})
})
