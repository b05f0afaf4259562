package runner

import "sync"

type Job func() error

// RunPool executes jobs with at most maxWorkers running at once and returns
// the errors of the failed jobs in job order.
func RunPool(maxWorkers int, jobs []Job) []error {
	if maxWorkers < 1 {
		maxWorkers = 1
	}

	results := make([]error, len(jobs))
	var wg sync.WaitGroup
	sem := make(chan struct{}, maxWorkers)

	for i, job := range jobs {
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = job()
		}()
	}
	wg.Wait()

	var errs []error
	for _, err := range results {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
