package main_test

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/gexec"
	"github.com/onsi/gomega/ghttp"
)

const (
	dataDigest = "3a6eb0790f39ac87c94f3856b2dd2c5d110e6811602261a9a923d3bb23adc8b7"
	abcDigest  = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
)

var _ = Describe("bosh-chksum", func() {
	var (
		tmpDir   string
		dataFile string
	)

	run := func(stdin string, args ...string) *gexec.Session {
		command := exec.Command(chksumBinPath, args...)
		command.Stdin = strings.NewReader(stdin)

		session, err := gexec.Start(command, GinkgoWriter, GinkgoWriter)
		Expect(err).ToNot(HaveOccurred())
		Eventually(session).Should(gexec.Exit())

		return session
	}

	writeFile := func(path, content string) {
		Expect(os.MkdirAll(filepath.Dir(path), 0755)).To(Succeed())
		Expect(os.WriteFile(path, []byte(content), 0644)).To(Succeed())
	}

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		dataFile = filepath.Join(tmpDir, "data.txt")
		writeFile(dataFile, "data")
	})

	It("prints the digest of a file", func() {
		session := run("", dataFile)
		Expect(session.ExitCode()).To(Equal(0))
		Expect(string(session.Out.Contents())).To(Equal(dataDigest + "  " + dataFile + "\n"))
	})

	It("reads stdin when no source is given", func() {
		session := run("abc")
		Expect(session.ExitCode()).To(Equal(0))
		Expect(string(session.Out.Contents())).To(Equal(abcDigest + "  -\n"))
	})

	It("prints tagged uppercase digests", func() {
		session := run("", "--tag", "--uppercase", dataFile)
		Expect(session.ExitCode()).To(Equal(0))
		Expect(string(session.Out.Contents())).To(Equal("sha256:" + strings.ToUpper(dataDigest) + "  " + dataFile + "\n"))
	})

	It("prints sources in command line order regardless of --jobs", func() {
		other := filepath.Join(tmpDir, "abc.txt")
		writeFile(other, "abc")

		session := run("", "--jobs", "4", dataFile, other, dataFile)
		Expect(session.ExitCode()).To(Equal(0))
		Expect(string(session.Out.Contents())).To(Equal(
			dataDigest + "  " + dataFile + "\n" +
				abcDigest + "  " + other + "\n" +
				dataDigest + "  " + dataFile + "\n",
		))
	})

	It("digests a directory as the bytes of the files below it", func() {
		dir := filepath.Join(tmpDir, "dir")
		writeFile(filepath.Join(dir, "nested", "file"), "data")

		session := run("", dir)
		Expect(session.ExitCode()).To(Equal(0))
		Expect(string(session.Out.Contents())).To(Equal(dataDigest + "  " + dir + "\n"))
	})

	It("prints one line per file matching --include", func() {
		dir := filepath.Join(tmpDir, "dir")
		writeFile(filepath.Join(dir, "a.yml"), "data")
		writeFile(filepath.Join(dir, "b.txt"), "abc")

		session := run("", "--include", "*.yml", dir)
		Expect(session.ExitCode()).To(Equal(0))
		Expect(string(session.Out.Contents())).To(Equal(dataDigest + "  " + filepath.Join(dir, "a.yml") + "\n"))
	})

	It("digests the decompressed bytes with --gunzip", func() {
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		_, err := zw.Write([]byte("data"))
		Expect(err).ToNot(HaveOccurred())
		Expect(zw.Close()).To(Succeed())

		gzFile := filepath.Join(tmpDir, "data.gz")
		writeFile(gzFile, buf.String())

		session := run("", "--gunzip", gzFile)
		Expect(session.ExitCode()).To(Equal(0))
		Expect(string(session.Out.Contents())).To(Equal(dataDigest + "  " + gzFile + "\n"))
	})

	It("digests http sources", func() {
		server := ghttp.NewServer()
		defer server.Close()
		server.AppendHandlers(ghttp.RespondWith(http.StatusOK, "abc"))

		session := run("", server.URL()+"/abc")
		Expect(session.ExitCode()).To(Equal(0))
		Expect(string(session.Out.Contents())).To(Equal(abcDigest + "  " + server.URL() + "/abc\n"))
	})

	It("stores sources under their digest with --store", func() {
		store := filepath.Join(tmpDir, "store")

		session := run("abc", "--store", store, dataFile, "-")
		Expect(session.ExitCode()).To(Equal(0))

		content, err := os.ReadFile(filepath.Join(store, "blobs", dataDigest))
		Expect(err).ToNot(HaveOccurred())
		Expect(string(content)).To(Equal("data"))

		content, err = os.ReadFile(filepath.Join(store, "blobs", abcDigest))
		Expect(err).ToNot(HaveOccurred())
		Expect(string(content)).To(Equal("abc"))
	})

	It("writes a tarball of a directory with --archive and prints its digest", func() {
		dir := filepath.Join(tmpDir, "release")
		writeFile(filepath.Join(dir, "job", "spec"), "data")
		archiveDir := filepath.Join(tmpDir, "archives")

		session := run("", "--archive", archiveDir, dir)
		Expect(session.ExitCode()).To(Equal(0))

		tarball, err := os.ReadFile(filepath.Join(archiveDir, "release.tgz"))
		Expect(err).ToNot(HaveOccurred())

		sum := sha256.Sum256(tarball)
		Expect(string(session.Out.Contents())).To(Equal(hex.EncodeToString(sum[:]) + "  " + dir + "\n"))
	})

	Describe("manifests", func() {
		var manifestPath string

		BeforeEach(func() {
			manifestPath = filepath.Join(tmpDir, "chksum.yml")

			session := run("", "--manifest", manifestPath, dataFile)
			Expect(session.ExitCode()).To(Equal(0))
		})

		It("writes the digests it prints", func() {
			content, err := os.ReadFile(manifestPath)
			Expect(err).ToNot(HaveOccurred())
			Expect(string(content)).To(ContainSubstring("checksum: sha256:" + dataDigest))
		})

		It("verifies unchanged files with --check", func() {
			session := run("", "--check", manifestPath)
			Expect(session.ExitCode()).To(Equal(0))
			Expect(string(session.Out.Contents())).To(Equal(dataFile + ": OK\n"))
		})

		It("fails --check when a file changed", func() {
			writeFile(dataFile, "changed")

			session := run("", "--check", manifestPath)
			Expect(session.ExitCode()).To(Equal(1))
			Expect(string(session.Err.Contents())).To(ContainSubstring("Verifying '%s'", dataFile))
		})
	})

	It("reports sources that cannot be read and exits 1", func() {
		missing := filepath.Join(tmpDir, "missing")

		session := run("", dataFile, missing)
		Expect(session.ExitCode()).To(Equal(1))
		Expect(string(session.Out.Contents())).To(Equal(dataDigest + "  " + dataFile + "\n"))
		Expect(string(session.Err.Contents())).To(ContainSubstring("Checking '%s' for digest calculation", missing))
	})

	It("exits 2 when --jobs is below 1", func() {
		session := run("", "--jobs", "0", dataFile)
		Expect(session.ExitCode()).To(Equal(2))
		Expect(string(session.Err.Contents())).To(ContainSubstring("Expected --jobs to be at least 1 but received 0"))
		Expect(session.Out.Contents()).To(BeEmpty())
	})

	It("exits 2 when a manifest would record stdin", func() {
		session := run("abc", "--manifest", filepath.Join(tmpDir, "chksum.yml"), "-")
		Expect(session.ExitCode()).To(Equal(2))
	})

	It("exits 2 on unknown flags", func() {
		session := run("", "--no-such-flag")
		Expect(session.ExitCode()).To(Equal(2))
	})
})
