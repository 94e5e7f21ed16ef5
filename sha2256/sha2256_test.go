package sha2256_test

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cloudfoundry/bosh-chksum/chksum"
	"github.com/cloudfoundry/bosh-chksum/sha2256"
)

const (
	emptyHex = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	abcHex   = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	dataHex  = "3a6eb0790f39ac87c94f3856b2dd2c5d110e6811602261a9a923d3bb23adc8b7"
)

var _ = Describe("SHA256", func() {
	It("digests nothing as the empty digest", func() {
		Expect(sha2256.New().Digest().HexLower()).To(Equal(emptyHex))
	})

	It("digests known inputs", func() {
		hash := sha2256.New()
		hash.Update([]byte("abc"))
		Expect(hash.Digest().HexLower()).To(Equal(abcHex))
	})

	It("does not depend on how the input is split", func() {
		whole := sha2256.New()
		whole.Update([]byte("example"))

		split := sha2256.New()
		split.Update([]byte("exa"))
		split.Update(nil)
		split.Update([]byte("mple"))

		Expect(split.Digest()).To(Equal(whole.Digest()))
	})

	It("can keep updating after a digest is taken", func() {
		hash := sha2256.New()
		hash.Update([]byte("ab"))
		Expect(hash.Digest()).To(Equal(sha2256.Sum([]byte("ab"))))

		hash.Update([]byte("c"))
		Expect(hash.Digest().HexLower()).To(Equal(abcHex))
	})

	It("returns to the empty state on reset", func() {
		hash := sha2256.New()
		hash.Update([]byte("data"))
		hash.Reset()
		Expect(hash.Digest().HexLower()).To(Equal(emptyHex))
	})

	It("clones an independent state", func() {
		hash := sha2256.New()
		hash.Update([]byte("a"))

		clone := hash.Clone()
		clone.Update([]byte("bc"))

		Expect(clone.Digest().HexLower()).To(Equal(abcHex))
		Expect(hash.Digest()).To(Equal(sha2256.Sum([]byte("a"))))
	})

	It("restores a marshaled state", func() {
		hash := sha2256.New()
		hash.Update([]byte("ab"))
		state, err := hash.MarshalBinary()
		Expect(err).ToNot(HaveOccurred())

		restored := sha2256.New()
		Expect(restored.UnmarshalBinary(state)).To(Succeed())
		restored.Update([]byte("c"))
		Expect(restored.Digest().HexLower()).To(Equal(abcHex))
	})

	It("fails to restore garbage", func() {
		err := sha2256.New().UnmarshalBinary([]byte("garbage"))
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("Restoring sha256 state"))
	})
})

var _ = Describe("package helpers", func() {
	It("hashes in-memory data", func() {
		Expect(sha2256.Hash(chksum.String("abc")).HexLower()).To(Equal(abcHex))
		Expect(sha2256.Hash(chksum.Bytes("abc"))).To(Equal(sha2256.Sum([]byte("abc"))))
		Expect(sha2256.Hash(chksum.Bytes(nil)).HexLower()).To(Equal(emptyHex))
	})

	Describe("Chksum", func() {
		var dir string

		BeforeEach(func() {
			dir = GinkgoT().TempDir()
		})

		It("digests an empty directory as the empty digest", func() {
			digest, err := sha2256.Chksum(chksum.Path(dir))
			Expect(err).ToNot(HaveOccurred())
			Expect(digest.HexLower()).To(Equal(emptyHex))
		})

		It("digests a directory holding one empty file as the empty digest", func() {
			Expect(os.WriteFile(filepath.Join(dir, "file.txt"), nil, 0644)).To(Succeed())

			digest, err := sha2256.Chksum(chksum.Path(dir))
			Expect(err).ToNot(HaveOccurred())
			Expect(digest.HexLower()).To(Equal(emptyHex))
		})

		It("digests a directory holding one file as that file's content", func() {
			Expect(os.MkdirAll(filepath.Join(dir, "nested"), 0755)).To(Succeed())
			Expect(os.WriteFile(filepath.Join(dir, "nested", "file.txt"), []byte("data"), 0644)).To(Succeed())

			digest, err := sha2256.Chksum(chksum.Path(dir))
			Expect(err).ToNot(HaveOccurred())
			Expect(digest.HexLower()).To(Equal(dataHex))
		})

		It("reports missing paths as IOError", func() {
			_, err := sha2256.Chksum(chksum.Path(filepath.Join(dir, "missing")))
			Expect(err).To(HaveOccurred())

			var ioErr chksum.IOError
			Expect(errors.As(err, &ioErr)).To(BeTrue())
			Expect(errors.Is(err, fs.ErrNotExist)).To(BeTrue())
		})
	})

	Describe("ChksumContext", func() {
		It("digests a file", func() {
			path := filepath.Join(GinkgoT().TempDir(), "file.txt")
			Expect(os.WriteFile(path, []byte("abc"), 0644)).To(Succeed())

			digest, err := sha2256.ChksumContext(context.Background(), chksum.Path(path))
			Expect(err).ToNot(HaveOccurred())
			Expect(digest.HexLower()).To(Equal(abcHex))
		})

		It("returns the context error once cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			digest, err := sha2256.ChksumContext(ctx, chksum.Path(GinkgoT().TempDir()))
			Expect(err).To(MatchError(context.Canceled))
			Expect(digest).To(Equal(sha2256.Digest{}))
		})
	})

	Describe("AsyncChksum", func() {
		It("delivers one result and closes", func() {
			results := sha2256.AsyncChksum(context.Background(), chksum.String("abc"))

			var result sha2256.Result
			Eventually(results).Should(Receive(&result))
			Expect(result.Err).ToNot(HaveOccurred())
			Expect(result.Digest.HexLower()).To(Equal(abcHex))
			Eventually(results).Should(BeClosed())
		})
	})
})
