package srverr_test

import (
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercache/papercache/internal/srverr"
)

var _ = Describe("Error", func() {
	It("reports the wire category byte for a cache-engine error", func() {
		err := srverr.NewCacheEngine(srverr.SubcodeKeyNotFound, nil)
		Expect(err.Category()).To(Equal(srverr.CategoryCacheEngine))
		Expect(err.Subcode()).To(Equal(srverr.SubcodeKeyNotFound))
	})

	It("defaults Subcode to none for non-cache-engine categories", func() {
		err := srverr.Protocol("bad frame", nil)
		Expect(err.Category()).To(Equal(srverr.CategoryProtocol))
		Expect(err.Subcode()).To(Equal(srverr.SubcodeNone))
	})

	It("matches sentinels via errors.Is", func() {
		err := srverr.NewCacheEngine(srverr.SubcodeZeroValueSize, nil)
		Expect(errors.Is(err, srverr.ErrZeroValueSize)).To(BeTrue())
		Expect(errors.Is(err, srverr.ErrKeyNotFound)).To(BeFalse())
	})

	It("unwraps to the underlying cause", func() {
		cause := fmt.Errorf("eof")
		err := srverr.Protocol("unexpected eof", cause)
		Expect(errors.Unwrap(err)).To(Equal(cause))
	})

	It("includes the wrapped cause in Error()", func() {
		cause := fmt.Errorf("connection reset")
		err := srverr.Resource("accept failed", cause)
		Expect(err.Error()).To(ContainSubstring("connection reset"))
	})

	It("records a non-empty trace for the construction site", func() {
		err := srverr.New(srverr.CategoryResource, "bind failed", nil)
		Expect(err.Trace()).ToNot(BeEmpty())
	})
})
