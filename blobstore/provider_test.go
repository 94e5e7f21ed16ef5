package blobstore_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	. "github.com/cloudfoundry/bosh-chksum/blobstore"
	"github.com/cloudfoundry/bosh-chksum/checksum"
	boshlog "github.com/cloudfoundry/bosh-chksum/logger"
	"github.com/cloudfoundry/bosh-chksum/sha2256"
	boshsys "github.com/cloudfoundry/bosh-chksum/system"
	boshuuid "github.com/cloudfoundry/bosh-chksum/uuid"
)

var _ = Describe("Provider", func() {
	var (
		fs       boshsys.FileSystem
		provider Provider
		workdir  string
	)

	BeforeEach(func() {
		logger := boshlog.NewLogger(boshlog.LevelNone)
		fs = boshsys.NewOsFileSystem(logger)
		provider = NewProvider(fs, boshuuid.NewGenerator(), checksum.NewChecksumFactory(fs, logger), logger)
		workdir = filepath.Join(GinkgoT().TempDir(), "store")
	})

	It("builds a local blobstore that round trips files", func() {
		blobstore, err := provider.Get(BlobstoreTypeLocal, map[string]interface{}{BlobstorePathOption: workdir})
		Expect(err).ToNot(HaveOccurred())
		Expect(filepath.Join(workdir, "blobs")).To(BeADirectory())

		source := filepath.Join(GinkgoT().TempDir(), "source")
		Expect(os.WriteFile(source, []byte("data"), 0644)).To(Succeed())

		blobID, fingerprint, err := blobstore.Create(source)
		Expect(err).ToNot(HaveOccurred())
		Expect(blobID).To(Equal(sha2256.Sum([]byte("data")).HexLower()))
		Expect(fingerprint.String()).To(Equal("sha256:" + blobID))

		fileName, err := blobstore.Get(blobID, nil)
		Expect(err).ToNot(HaveOccurred())
		Expect(fileName).To(HavePrefix(workdir))

		contents, err := os.ReadFile(fileName)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(contents)).To(Equal("data"))

		Expect(blobstore.CleanUp(fileName)).To(Succeed())
		Expect(fileName).ToNot(BeAnExistingFile())

		Expect(blobstore.Delete(blobID)).To(Succeed())
		_, err = blobstore.Get(blobID, fingerprint)
		Expect(err).To(MatchError(ContainSubstring("not found")))
	})

	It("requires a path for local blobstores", func() {
		_, err := provider.Get(BlobstoreTypeLocal, map[string]interface{}{})
		Expect(err).To(MatchError("Missing 'blobstore_path' option for local blobstore"))
	})

	It("rejects unknown types", func() {
		_, err := provider.Get("s3", nil)
		Expect(err).To(MatchError("Unknown blobstore type 's3'"))
	})
})
