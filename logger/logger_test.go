package logger_test

import (
	"bytes"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/gbytes"

	. "github.com/cloudfoundry/bosh-chksum/logger"
)

var _ = Describe("Logger", func() {
	Describe("Levelify", func() {
		It("parses level names case-insensitively", func() {
			level, err := Levelify("debug")
			Expect(err).ToNot(HaveOccurred())
			Expect(level).To(Equal(LevelDebug))

			level, err = Levelify("NONE")
			Expect(err).ToNot(HaveOccurred())
			Expect(level).To(Equal(LevelNone))
		})

		It("errors on unknown levels", func() {
			_, err := Levelify("fake-level")
			Expect(err).To(MatchError(ContainSubstring("Unknown LogLevel string 'fake-level'")))
		})
	})

	Describe("NewWriterLogger", func() {
		var (
			out    *bytes.Buffer
			logger Logger
		)

		BeforeEach(func() {
			out = &bytes.Buffer{}
			logger = NewWriterLogger(LevelInfo, out)
		})

		It("prefixes lines with the tag and level", func() {
			logger.Info("fake-tag", "computed %s", "digest")
			Expect(out.String()).To(ContainSubstring("[fake-tag] "))
			Expect(out.String()).To(ContainSubstring("INFO - computed digest"))
		})

		It("drops messages below the configured level", func() {
			logger.Debug("fake-tag", "fake-debug")
			Expect(out.String()).To(BeEmpty())
		})

		It("logs debug messages once forced debug is toggled on", func() {
			logger.ToggleForcedDebug()
			logger.Debug("fake-tag", "fake-debug")
			Expect(out.String()).To(ContainSubstring("DEBUG - fake-debug"))
		})

		It("wraps details in a block", func() {
			logger.ErrorWithDetails("fake-tag", "failed", "fake-details")
			Expect(out.String()).To(ContainSubstring("ERROR - failed\n********************\nfake-details\n********************"))
		})
	})

	Describe("NewAsyncWriterLogger", func() {
		It("writes every queued line once flushed", func() {
			buffer := gbytes.NewBuffer()
			logger := NewAsyncWriterLogger(LevelDebug, buffer)

			for i := 0; i < 10; i++ {
				logger.Debug("fake-tag", "line %d", i)
			}
			Expect(logger.Flush()).To(Succeed())

			Eventually(buffer).Should(gbytes.Say("line 9"))
		})

		It("flushes within a timeout", func() {
			logger := NewAsyncWriterLogger(LevelDebug, gbytes.NewBuffer())
			logger.Warn("fake-tag", "fake-warning")
			Expect(logger.FlushTimeout(time.Second)).To(Succeed())
		})
	})
})
