// Package resilience groups the fault tolerance building blocks the
// material pipeline leans on when talking to things that fail: the LLM
// completion endpoint, arbitrary document hosts, and Postgres.
//
// The circuitbreaker subpackage stops hammering a dependency that is down;
// the retry subpackage absorbs the transient failures that clear on their
// own. The two compose, with retry on the outside:
//
//	err := retry.WithBackoff(ctx, retry.URLFetchConfig(), func() error {
//		body, err = breaker.Fetch(ctx, sourceURL)
//		return err
//	})
package resilience
