package chksum_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	. "github.com/cloudfoundry/bosh-chksum/chksum"
	"github.com/cloudfoundry/bosh-chksum/chksum/chksumfakes"
	"github.com/cloudfoundry/bosh-chksum/sha2256"
)

var _ = Describe("in-memory sources", func() {
	var hash *chksumfakes.FakeHash

	BeforeEach(func() {
		hash = &chksumfakes.FakeHash{}
	})

	It("feeds bytes in a single update", func() {
		Bytes("example").HashWith(hash)

		Expect(hash.UpdateCallCount()).To(Equal(1))
		Expect(hash.UpdateArgsForCall(0)).To(Equal([]byte("example")))
	})

	It("feeds the UTF-8 bytes of a string", func() {
		Expect(String("héllo").ChksumWith(hash)).To(Succeed())

		Expect(hash.UpdateCallCount()).To(Equal(1))
		Expect(hash.UpdateArgsForCall(0)).To(Equal([]byte("h\xc3\xa9llo")))
	})

	It("ignores the context", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		Expect(Bytes("example").ChksumWithContext(ctx, hash)).To(Succeed())
		Expect(String("example").ChksumWithContext(ctx, hash)).To(Succeed())
		Expect(hash.UpdateCallCount()).To(Equal(2))
	})

	It("never resets the hash", func() {
		String("exa").HashWith(hash)
		Bytes("mple").HashWith(hash)
		Expect(hash.ResetCallCount()).To(Equal(0))
	})

	It("digests string and bytes alike", func() {
		Expect(Sum[sha2256.Digest](sha2256.New(), String("abc"))).
			To(Equal(Sum[sha2256.Digest](sha2256.New(), Bytes("abc"))))
	})

	It("continues from what the hash has already seen", func() {
		hash := sha2256.New()
		hash.Update([]byte("exa"))

		Expect(Sum[sha2256.Digest](hash, String("mple"))).To(Equal(sha2256.Sum([]byte("example"))))
	})
})
