package sarfile_test

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bsm/sarfile"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Reader", func() {
	var dir string
	var subject *sarfile.Reader

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "sarfile-test")
		Expect(err).NotTo(HaveOccurred())

		root := filepath.Join(dir, "files")
		Expect(os.Mkdir(root, 0o755)).To(Succeed())
		Expect(seedDir(root)).To(Succeed())
		Expect(sarfile.PackDir(sarfile.LocalFS, filepath.Join(dir, "out.sar"), root, nil)).To(Succeed())

		subject, err = sarfile.Open(filepath.Join(dir, "out.sar"))
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(os.RemoveAll(dir)).To(Succeed())
	})

	It("should expose the member list", func() {
		Expect(subject.Len()).To(Equal(10))

		names := subject.Names()
		Expect(names).To(HaveLen(10))
		for i := 0; i < 10; i++ {
			Expect(names).To(ContainElement(fmt.Sprintf("file%d.txt", i)))
		}
	})

	It("should read every member by name, byte for byte", func() {
		for i := 0; i < 10; i++ {
			item, err := subject.Get(fmt.Sprintf("file%d.txt", i))
			Expect(err).NotTo(HaveOccurred())

			data, err := io.ReadAll(item)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal(fmt.Sprintf("Hello from %d!", i)))
			Expect(item.Close()).To(Succeed())
		}
	})

	It("should read members by index", func() {
		item, err := subject.At(0)
		Expect(err).NotTo(HaveOccurred())
		defer item.Close()

		Expect(item.Name()).To(Equal("file0.txt"))
		Expect(io.ReadAll(item)).To(BeEquivalentTo("Hello from 0!"))
	})

	It("should fail lookups of unknown members", func() {
		_, err := subject.Get("nope.txt")
		Expect(errors.Is(err, sarfile.ErrNotFound)).To(BeTrue())

		_, err = subject.At(10)
		Expect(errors.Is(err, sarfile.ErrNotFound)).To(BeTrue())
		_, err = subject.At(-1)
		Expect(errors.Is(err, sarfile.ErrNotFound)).To(BeTrue())
	})

	It("should support concurrent views over independent streams", func() {
		a, err := subject.Get("file1.txt")
		Expect(err).NotTo(HaveOccurred())
		b, err := subject.Get("file2.txt")
		Expect(err).NotTo(HaveOccurred())

		buf := make([]byte, 5)
		_, err = io.ReadFull(a, buf)
		Expect(err).NotTo(HaveOccurred())

		// closing one view must not affect the other
		Expect(a.Close()).To(Succeed())
		Expect(io.ReadAll(b)).To(BeEquivalentTo("Hello from 2!"))
		Expect(b.Close()).To(Succeed())
	})

	It("should reject files without the magic preamble", func() {
		path := filepath.Join(dir, "bogus.sar")
		Expect(os.WriteFile(path, []byte("definitely not an archive"), 0o644)).To(Succeed())

		_, err := sarfile.Open(path)
		Expect(errors.Is(err, sarfile.ErrBadMagic)).To(BeTrue())

		Expect(os.WriteFile(path, []byte("SA"), 0o644)).To(Succeed())
		_, err = sarfile.Open(path)
		Expect(errors.Is(err, sarfile.ErrBadMagic)).To(BeTrue())
	})

	It("should fail on corrupted headers", func() {
		raw, err := os.ReadFile(filepath.Join(dir, "out.sar"))
		Expect(err).NotTo(HaveOccurred())
		raw[12] = 3 // width selector

		path := filepath.Join(dir, "corrupt.sar")
		Expect(os.WriteFile(path, raw, 0o644)).To(Succeed())

		_, err = sarfile.Open(path)
		Expect(errors.Is(err, sarfile.ErrMalformedHeader)).To(BeTrue())
	})

	Describe("Shard", func() {
		It("should cover all members exactly once", func() {
			var names []string
			for id := 0; id < 3; id++ {
				names = append(names, subject.Shard(id, 3).Names()...)
			}
			Expect(names).To(Equal(subject.Names()))
		})

		It("should read the same bytes as the full handle", func() {
			shard := subject.Shard(2, 3)
			Expect(shard.Len()).To(Equal(2))

			for _, name := range shard.Names() {
				want, err := subject.Get(name)
				Expect(err).NotTo(HaveOccurred())
				wantData, err := io.ReadAll(want)
				Expect(err).NotTo(HaveOccurred())
				Expect(want.Close()).To(Succeed())

				got, err := shard.Get(name)
				Expect(err).NotTo(HaveOccurred())
				Expect(io.ReadAll(got)).To(Equal(wantData))
				Expect(got.Close()).To(Succeed())
			}
		})

		It("should return empty handles past the last member", func() {
			Expect(subject.Shard(5, 4).Len()).To(Equal(0))
		})
	})
})
