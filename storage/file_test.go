package storage_test

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/luma/warchat/storage"
)

var _ = Describe("storage / file", func() {
	var (
		dir  string
		path string
	)

	BeforeEach(func() {
		var err error
		dir, err = ioutil.TempDir("", "warchat-storage")
		Expect(err).To(Succeed())
		path = filepath.Join(dir, "nested", "state.json")
	})

	AfterEach(func() {
		os.RemoveAll(dir)
	})

	Describe("Load()", func() {
		It("accepts a missing file", func() {
			store := storage.NewInmemoryStore()
			defer store.Close()

			Expect(storage.Load(store, path)).To(Succeed())
		})

		It("restores an existing file", func() {
			Expect(os.MkdirAll(filepath.Dir(path), 0750)).To(Succeed())
			Expect(ioutil.WriteFile(path, []byte(`{"a":"b"}`), 0600)).To(Succeed())

			store := storage.NewInmemoryStore()
			defer store.Close()

			Expect(storage.Load(store, path)).To(Succeed())
			Expect(store.Get(context.Background(), []byte("a"))).To(Equal([]byte(`"b"`)))
		})

		It("fails on a corrupt file", func() {
			Expect(os.MkdirAll(filepath.Dir(path), 0750)).To(Succeed())
			Expect(ioutil.WriteFile(path, []byte(`{"a":`), 0600)).To(Succeed())

			store := storage.NewInmemoryStore()
			defer store.Close()

			Expect(storage.Load(store, path)).To(MatchError(ContainSubstring("invalid JSON document")))
		})
	})

	Describe("Flush()", func() {
		It("writes the store after every update until the store closes", func() {
			store := storage.NewInmemoryStore()

			done := make(chan error, 1)
			go func() {
				done <- storage.Flush(context.Background(), store, path, zap.NewNop())
			}()

			// Flush has to be listening before the write
			Eventually(func() error {
				if err := store.Set(context.Background(), []byte("a"), "b"); err != nil {
					return err
				}
				_, err := os.Stat(path)
				return err
			}, time.Second, 10*time.Millisecond).Should(Succeed())

			Expect(ioutil.ReadFile(path)).To(MatchJSON(`{"a":"b"}`))

			Expect(store.Close()).To(Succeed())
			Eventually(done).Should(Receive(BeNil()))
		})

		It("stops when its context is cancelled", func() {
			store := storage.NewInmemoryStore()
			defer store.Close()

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			Expect(storage.Flush(ctx, store, path, zap.NewNop())).To(Succeed())
		})
	})
})
