package blobstore_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	. "github.com/cloudfoundry/bosh-chksum/blobstore"
	fakeblobstore "github.com/cloudfoundry/bosh-chksum/blobstore/fakes"
	"github.com/cloudfoundry/bosh-chksum/checksum"
	boshlog "github.com/cloudfoundry/bosh-chksum/logger"
	"github.com/cloudfoundry/bosh-chksum/sha2256"
	fakesys "github.com/cloudfoundry/bosh-chksum/system/fakes"
)

var _ = Describe("digestVerifiableBlobstore", func() {
	var (
		fs             *fakesys.FakeFileSystem
		innerBlobstore *fakeblobstore.FakeBlobstore
		blobstore      Blobstore

		dataChecksum checksum.Checksum
	)

	BeforeEach(func() {
		fs = fakesys.NewFakeFileSystem()
		innerBlobstore = fakeblobstore.NewFakeBlobstore()
		checksumFactory := checksum.NewChecksumFactory(fs, boshlog.NewLogger(boshlog.LevelNone))
		blobstore = NewDigestVerifiableBlobstore(innerBlobstore, checksumFactory)

		dataChecksum = checksum.NewChecksum(sha2256.Sum([]byte("data")))
		Expect(fs.WriteFileString("/fake-file", "data")).To(Succeed())
	})

	Describe("Get", func() {
		BeforeEach(func() {
			innerBlobstore.GetFileName = "/fake-file"
		})

		It("returns the inner file name when the checksum matches", func() {
			fileName, err := blobstore.Get("fake-blob-id", dataChecksum)
			Expect(err).ToNot(HaveOccurred())
			Expect(fileName).To(Equal("/fake-file"))

			Expect(innerBlobstore.GetBlobIDs).To(Equal([]string{"fake-blob-id"}))
			Expect(innerBlobstore.GetFingerprints).To(Equal([]checksum.Checksum{dataChecksum}))
		})

		It("skips verification without a fingerprint", func() {
			Expect(fs.WriteFileString("/fake-file", "changed")).To(Succeed())

			fileName, err := blobstore.Get("fake-blob-id", nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(fileName).To(Equal("/fake-file"))
		})

		It("errors when the downloaded file does not match", func() {
			Expect(fs.WriteFileString("/fake-file", "changed")).To(Succeed())

			_, err := blobstore.Get("fake-blob-id", dataChecksum)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring(`Checking downloaded blob "fake-blob-id"`))
		})

		It("wraps inner failures", func() {
			innerBlobstore.GetError = errors.New("fake-get-err")

			_, err := blobstore.Get("fake-blob-id", dataChecksum)
			Expect(err).To(MatchError("Getting blob from inner blobstore: fake-get-err"))
		})
	})

	Describe("Create", func() {
		It("returns the inner blob id when the fingerprint matches the file", func() {
			innerBlobstore.CreateBlobID = "fake-blob-id"
			innerBlobstore.CreateFingerprint = dataChecksum

			blobID, fingerprint, err := blobstore.Create("/fake-file")
			Expect(err).ToNot(HaveOccurred())
			Expect(blobID).To(Equal("fake-blob-id"))
			Expect(fingerprint).To(Equal(dataChecksum))
			Expect(innerBlobstore.CreateFileNames).To(Equal([]string{"/fake-file"}))
		})

		It("errors when the inner fingerprint does not match the file", func() {
			innerBlobstore.CreateBlobID = "fake-blob-id"
			innerBlobstore.CreateFingerprint = checksum.NewChecksum(sha2256.Sum(nil))

			_, _, err := blobstore.Create("/fake-file")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring(`Checking uploaded blob "fake-blob-id"`))
		})

		It("errors when the file cannot be digested", func() {
			_, _, err := blobstore.Create("/missing")
			Expect(err).To(HaveOccurred())
			Expect(innerBlobstore.CreateFileNames).To(BeEmpty())
		})
	})

	It("delegates the rest", func() {
		innerBlobstore.ValidateError = errors.New("fake-validate-err")
		innerBlobstore.DeleteErr = errors.New("fake-delete-err")
		innerBlobstore.CleanUpErr = errors.New("fake-cleanup-err")

		Expect(blobstore.Validate()).To(MatchError("fake-validate-err"))
		Expect(blobstore.Delete("fake-blob-id")).To(MatchError("fake-delete-err"))
		Expect(blobstore.CleanUp("/fake-file")).To(MatchError("fake-cleanup-err"))
		Expect(innerBlobstore.DeleteBlobID).To(Equal("fake-blob-id"))
		Expect(innerBlobstore.CleanUpFileName).To(Equal("/fake-file"))
	})
})
