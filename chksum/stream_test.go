package chksum_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing/iotest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	. "github.com/cloudfoundry/bosh-chksum/chksum"
	"github.com/cloudfoundry/bosh-chksum/chksum/chksumfakes"
	"github.com/cloudfoundry/bosh-chksum/sha2256"
)

var _ = Describe("Reader", func() {
	var hash *chksumfakes.FakeHash

	BeforeEach(func() {
		hash = &chksumfakes.FakeHash{}
	})

	It("feeds chunks of at most BufferSize bytes in order", func() {
		content := strings.Repeat("a", BufferSize) + strings.Repeat("b", BufferSize) + "c"

		Expect(Reader(strings.NewReader(content)).ChksumWith(hash)).To(Succeed())

		Expect(hash.UpdateCallCount()).To(Equal(3))
		Expect(hash.UpdateArgsForCall(0)).To(Equal([]byte(strings.Repeat("a", BufferSize))))
		Expect(hash.UpdateArgsForCall(1)).To(Equal([]byte(strings.Repeat("b", BufferSize))))
		Expect(hash.UpdateArgsForCall(2)).To(Equal([]byte("c")))
	})

	It("never feeds empty reads", func() {
		Expect(Reader(strings.NewReader("")).ChksumWith(hash)).To(Succeed())
		Expect(hash.UpdateCallCount()).To(Equal(0))
	})

	It("feeds bytes returned together with io.EOF", func() {
		Expect(Reader(iotest.DataErrReader(strings.NewReader("example"))).ChksumWith(hash)).To(Succeed())

		Expect(hash.UpdateCallCount()).To(Equal(1))
		Expect(hash.UpdateArgsForCall(0)).To(Equal([]byte("example")))
	})

	It("wraps read failures in IOError", func() {
		readErr := errors.New("fake-read-err")
		source := Reader(io.MultiReader(strings.NewReader("exa"), iotest.ErrReader(readErr)))

		digest, err := Chksum[sha2256.Digest](sha2256.New(), source)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(Equal("Reading 'stream' for digest calculation: fake-read-err"))
		Expect(errors.Is(err, readErr)).To(BeTrue())
		Expect(err).To(BeAssignableToTypeOf(IOError{}))
		Expect(digest).To(Equal(sha2256.Digest{}))
	})

	It("names the source in read failures", func() {
		source := NamedReader(iotest.ErrReader(errors.New("fake-read-err")), "https://example.com/blob")

		err := source.ChksumWith(hash)
		Expect(err).To(MatchError("Reading 'https://example.com/blob' for digest calculation: fake-read-err"))
	})

	It("stops at the next chunk once the context is done", func() {
		ctx, cancel := context.WithCancel(context.Background())

		hash.UpdateStub = func([]byte) { cancel() }
		content := strings.Repeat("a", 3*BufferSize)

		err := Reader(strings.NewReader(content)).ChksumWithContext(ctx, hash)
		Expect(err).To(Equal(context.Canceled))
		Expect(hash.UpdateCallCount()).To(Equal(1))
	})

	It("gives the same digest with and without a context", func() {
		sync, err := Chksum[sha2256.Digest](sha2256.New(), Reader(strings.NewReader("example")))
		Expect(err).ToNot(HaveOccurred())

		async, err := ChksumContext[sha2256.Digest](context.Background(), sha2256.New(), Reader(strings.NewReader("example")))
		Expect(err).ToNot(HaveOccurred())

		Expect(async).To(Equal(sync))
		Expect(sync).To(Equal(sha2256.Sum([]byte("example"))))
	})
})
