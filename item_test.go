package sarfile_test

import (
	"errors"
	"io"
	"os"

	"github.com/bsm/sarfile"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("ItemReader", func() {
	var dir string
	var archive *sarfile.Reader
	var subject *sarfile.ItemReader

	// alpha is bracketed by neighbours on both sides so boundary
	// violations would surface as foreign bytes.
	contents := map[string]string{
		"0-before.bin": "<<<<<<<<",
		"alpha.txt":    "0123456789",
		"z-after.bin":  ">>>>>>>>",
	}

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "sarfile-test")
		Expect(err).NotTo(HaveOccurred())

		path, err := seedArchive(dir, contents)
		Expect(err).NotTo(HaveOccurred())
		archive, err = sarfile.Open(path)
		Expect(err).NotTo(HaveOccurred())

		subject, err = archive.Get("alpha.txt")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		_ = subject.Close()
		Expect(os.RemoveAll(dir)).To(Succeed())
	})

	It("should know its name and size", func() {
		Expect(subject.Name()).To(Equal("alpha.txt"))
		Expect(subject.Size()).To(Equal(int64(10)))
	})

	It("should read exactly the member's bytes and then EOF", func() {
		buf := make([]byte, 10)
		n, err := io.ReadFull(subject, buf)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(10))
		Expect(string(buf)).To(Equal("0123456789"))

		n, err = subject.Read(make([]byte, 1))
		Expect(n).To(Equal(0))
		Expect(err).To(Equal(io.EOF))
	})

	It("should clamp large reads at the member boundary", func() {
		buf := make([]byte, 64)
		n, err := subject.Read(buf)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(buf[:n])).To(Equal("0123456789"[:n]))

		data, err := io.ReadAll(subject)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(buf[:n]) + string(data)).To(Equal("0123456789"))
	})

	Describe("Seek", func() {
		It("should seek from start", func() {
			Expect(subject.Seek(4, io.SeekStart)).To(Equal(int64(4)))
			Expect(io.ReadAll(subject)).To(BeEquivalentTo("456789"))
		})

		It("should seek from current", func() {
			_, err := io.ReadFull(subject, make([]byte, 2))
			Expect(err).NotTo(HaveOccurred())

			Expect(subject.Seek(3, io.SeekCurrent)).To(Equal(int64(5)))
			Expect(subject.Seek(-1, io.SeekCurrent)).To(Equal(int64(4)))
			Expect(io.ReadAll(subject)).To(BeEquivalentTo("456789"))
		})

		It("should seek from end", func() {
			Expect(subject.Seek(-3, io.SeekEnd)).To(Equal(int64(7)))
			Expect(io.ReadAll(subject)).To(BeEquivalentTo("789"))

			Expect(subject.Seek(0, io.SeekEnd)).To(Equal(int64(10)))
			Expect(io.ReadAll(subject)).To(BeEquivalentTo(""))
		})

		It("should report the member-local position", func() {
			Expect(subject.Seek(0, io.SeekCurrent)).To(Equal(int64(0)))

			_, err := io.ReadFull(subject, make([]byte, 6))
			Expect(err).NotTo(HaveOccurred())
			Expect(subject.Seek(0, io.SeekCurrent)).To(Equal(int64(6)))
		})

		It("should fail on any position outside the member", func() {
			for _, seek := range []struct {
				offset int64
				whence int
			}{
				{11, io.SeekStart},
				{-1, io.SeekStart},
				{11, io.SeekCurrent},
				{-1, io.SeekCurrent},
				{1, io.SeekEnd},
				{-11, io.SeekEnd},
			} {
				_, err := subject.Seek(seek.offset, seek.whence)
				Expect(errors.Is(err, sarfile.ErrOutOfRange)).To(BeTrue(), "for %+v", seek)
			}

			// failed seeks must not move the cursor
			Expect(io.ReadAll(subject)).To(BeEquivalentTo("0123456789"))
		})

		It("should allow seeking to the exact end", func() {
			Expect(subject.Seek(10, io.SeekStart)).To(Equal(int64(10)))
			n, err := subject.Read(make([]byte, 1))
			Expect(n).To(Equal(0))
			Expect(err).To(Equal(io.EOF))
		})
	})

	It("should never bleed into neighbouring members", func() {
		Expect(subject.Seek(9, io.SeekStart)).To(Equal(int64(9)))
		Expect(io.ReadAll(subject)).To(BeEquivalentTo("9"))

		before, err := archive.Get("0-before.bin")
		Expect(err).NotTo(HaveOccurred())
		defer before.Close()
		Expect(io.ReadAll(before)).To(BeEquivalentTo("<<<<<<<<"))

		after, err := archive.Get("z-after.bin")
		Expect(err).NotTo(HaveOccurred())
		defer after.Close()
		Expect(io.ReadAll(after)).To(BeEquivalentTo(">>>>>>>>"))
	})

	It("should reject writes", func() {
		_, err := subject.Write([]byte("nope"))
		Expect(errors.Is(err, sarfile.ErrUnsupported)).To(BeTrue())
	})

	It("should refuse use after close", func() {
		Expect(subject.Close()).To(Succeed())

		_, err := subject.Read(make([]byte, 1))
		Expect(err).To(HaveOccurred())
		_, err = subject.Seek(0, io.SeekStart)
		Expect(err).To(HaveOccurred())
		Expect(subject.Close()).NotTo(Succeed())
	})
})
