package series_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/phaseslice/internal/series"
)

var _ = Describe("Piter", func() {
	var s *series.Series

	BeforeEach(func() {
		var err error
		s, err = series.New("run", series.Range{Start: 0, End: 9, Step: 1})
		Expect(err).NotTo(HaveOccurred())
	})

	It("visits every entry exactly once", func() {
		var mu sync.Mutex
		seen := map[int]int{}
		err := s.Piter(context.Background(), 3, func(ctx context.Context, e series.Entry) error {
			mu.Lock()
			seen[e.Index]++
			mu.Unlock()
			return nil
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(seen).To(HaveLen(10))
		for idx, n := range seen {
			Expect(n).To(Equal(1), "index %d", idx)
		}
	})

	It("never exceeds the worker limit", func() {
		var inFlight, peak int32
		err := s.Piter(context.Background(), 2, func(ctx context.Context, e series.Entry) error {
			n := atomic.AddInt32(&inFlight, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			atomic.AddInt32(&inFlight, -1)
			return nil
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(atomic.LoadInt32(&peak)).To(BeNumerically("<=", 2))
	})

	It("wraps the failing entry", func() {
		boom := errors.New("boom")
		err := s.Piter(context.Background(), 1, func(ctx context.Context, e series.Entry) error {
			if e.Index == 4 {
				return boom
			}
			return nil
		})
		Expect(err).To(MatchError(boom))

		var entryErr *series.EntryError
		Expect(errors.As(err, &entryErr)).To(BeTrue())
		Expect(entryErr.Index).To(Equal(4))
		Expect(entryErr.Path).To(Equal("run/Data_000004"))
	})

	It("stops scheduling after the first failure", func() {
		var calls int32
		err := s.Piter(context.Background(), 1, func(ctx context.Context, e series.Entry) error {
			atomic.AddInt32(&calls, 1)
			return errors.New("fail")
		})
		Expect(err).To(HaveOccurred())
		Expect(atomic.LoadInt32(&calls)).To(BeNumerically("<", 10))
	})

	Context("with KeepGoing", func() {
		BeforeEach(func() {
			s.KeepGoing = true
		})

		It("runs every entry and joins the failures", func() {
			var calls int32
			err := s.Piter(context.Background(), 4, func(ctx context.Context, e series.Entry) error {
				atomic.AddInt32(&calls, 1)
				if e.Index%3 == 0 {
					return errors.New("missing")
				}
				return nil
			})
			Expect(atomic.LoadInt32(&calls)).To(Equal(int32(10)))
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("snapshot 0"))
			Expect(err.Error()).To(ContainSubstring("snapshot 3"))
			Expect(err.Error()).To(ContainSubstring("snapshot 6"))
			Expect(err.Error()).To(ContainSubstring("snapshot 9"))
		})
	})

	It("honours a canceled context", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := s.Piter(ctx, 2, func(ctx context.Context, e series.Entry) error {
			return ctx.Err()
		})
		Expect(err).To(MatchError(context.Canceled))
	})
})
