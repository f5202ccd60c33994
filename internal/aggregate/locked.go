package aggregate

import (
	"math"
	"sync"
)

// Locked splits the range across workers that each add every term into one
// shared sum under a mutex.
func Locked(min, max, workers int) (float64, error) {
	spans, err := Split(min, max, workers)
	if err != nil {
		return 0, err
	}

	var (
		mu  sync.Mutex
		sum float64
		wg  sync.WaitGroup
	)
	for _, s := range spans {
		wg.Add(1)
		go func(s Span) {
			defer wg.Done()
			for i := s.Min; i < s.Max; i++ {
				mu.Lock()
				sum += math.Sqrt(float64(i))
				mu.Unlock()
			}
		}(s)
	}
	wg.Wait()

	return sum, nil
}
