package errors_test

import (
	"errors"
	"io/fs"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	. "github.com/cloudfoundry/bosh-chksum/errors"
)

var _ = Describe("errors", func() {
	Describe("Error", func() {
		It("creates an error with the given message", func() {
			Expect(Error("fake-message")).To(MatchError("fake-message"))
		})
	})

	Describe("Errorf", func() {
		It("formats the message", func() {
			Expect(Errorf("fake-%s-%d", "message", 1)).To(MatchError("fake-message-1"))
		})
	})

	Describe("WrapError", func() {
		It("prefixes the cause with the context message", func() {
			err := WrapError(errors.New("fake-cause"), "Opening file")
			Expect(err).To(MatchError("Opening file: fake-cause"))
		})

		It("describes a nil cause", func() {
			err := WrapError(nil, "Opening file")
			Expect(err).To(MatchError("Opening file: <nil cause>"))
		})

		It("keeps the cause reachable", func() {
			err := WrapErrorf(fs.ErrNotExist, "Opening file '%s'", "/fake-path")
			Expect(errors.Is(err, fs.ErrNotExist)).To(BeTrue())

			var complexErr ComplexError
			Expect(errors.As(err, &complexErr)).To(BeTrue())
			Expect(complexErr.Err).To(MatchError("Opening file '/fake-path'"))
		})

		It("nests context messages", func() {
			err := WrapError(WrapError(errors.New("fake-cause"), "inner"), "outer")
			Expect(err).To(MatchError("outer: inner: fake-cause"))
		})
	})

	Describe("MultiError", func() {
		It("joins messages with newlines", func() {
			err := NewMultiError(errors.New("fake-error-1"), errors.New("fake-error-2"))
			Expect(err).To(MatchError("fake-error-1\nfake-error-2"))
		})

		It("unwraps to every collected error", func() {
			err := NewMultiError(errors.New("fake-error-1"), WrapError(fs.ErrPermission, "fake-context"))
			Expect(errors.Is(err, fs.ErrPermission)).To(BeTrue())
		})
	})
})
