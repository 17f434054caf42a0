package concurrent

import "golang.org/x/sync/errgroup"

// Each runs action for every element in its own goroutine and waits for all of
// them. It returns the first error encountered; the other actions still run to
// completion.
func Each[T any](items []T, action func(T) error) error {
	var g errgroup.Group
	for _, item := range items {
		g.Go(func() error {
			return action(item)
		})
	}
	return g.Wait()
}
