package bus

import (
	"strconv"
	"sync/atomic"
	"testing"
)

// no-op handler that increments a counter to avoid compiler eliminating logic
func makeHandler(c *int64) EventHandler[int] {
	return func(int) error {
		atomic.AddInt64(c, 1)
		return nil
	}
}

func BenchmarkPublishSingleSubscriber(b *testing.B) {
	bus := New[int]()
	var c int64
	_, _ = bus.Subscribe("tick", makeHandler(&c))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = bus.Publish("tick", i)
	}
}

func BenchmarkPublishManySubscribers(b *testing.B) {
	for _, subs := range []int{1, 4, 16, 64} {
		b.Run("subs="+strconv.Itoa(subs), func(b *testing.B) {
			bus := New[int]()
			var c int64
			for i := 0; i < subs; i++ {
				_, _ = bus.Subscribe("tick", makeHandler(&c))
			}
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = bus.Publish("tick", i)
			}
		})
	}
}

func BenchmarkPublishParallel(b *testing.B) {
	bus := New[int]()
	var c int64
	_, _ = bus.Subscribe("tick", makeHandler(&c))
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = bus.Publish("tick", 1)
		}
	})
}
