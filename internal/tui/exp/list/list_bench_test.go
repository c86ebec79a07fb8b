package list

import (
	"fmt"
	"testing"
)

// BenchmarkListView benchmarks the View() method performance
func BenchmarkListView(b *testing.B) {
	sizes := []int{100, 1000, 10000}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("Items_%d", size), func(b *testing.B) {
			l := New(createItems(size, 3), WithSize(80, 30))
			l.Init()

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = l.View()
			}
		})
	}
}

// BenchmarkListScroll benchmarks scrolling through a long list, including
// the slice updates the scroll triggers.
func BenchmarkListScroll(b *testing.B) {
	sizes := []int{100, 1000, 10000}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("Items_%d", size), func(b *testing.B) {
			l := New(createItems(size, 3), WithSize(80, 30))
			l.Init()

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				l.MoveDown(10)
				for tok := range l.sched.tasks {
					l.Update(tickMsg{list: l.id, token: tok})
				}
				l.MoveUp(10)
			}
		})
	}
}

// BenchmarkSetItems benchmarks appending to a long list.
func BenchmarkSetItems(b *testing.B) {
	items := createItems(10000, 3)
	l := New(items[:5000], WithSize(80, 30))
	l.Init()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		l.SetItems(items[:5000+i%5000])
	}
}
