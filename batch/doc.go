// Package batch runs collections of work items with bounded concurrency.
//
// It provides the fan-out primitives the scraping pipeline uses to fetch
// many listings, validate many images, or look up many research queries
// at once without overwhelming the remote side:
//
//   - Semaphore: a counting permit gate with FIFO fairness among
//     waiters; the building block of everything else here.
//
//   - Parallel: runs a function over all items with at most
//     maxConcurrency in flight, failing fast on the first error.
//
//   - ParallelSettled: the same bound, but every item resolves to its
//     own tagged outcome; no item's failure affects another's.
//
//   - SlidingWindow: processes fixed-size windows sequentially with a
//     pause between windows, for hosts that dislike sustained load.
//
//   - Process: chunked batch processing with per-item retry, progress
//     and error callbacks, and optional pacing between chunks.
//
// # Usage
//
//	urls := []string{"https://example.com/a", "https://example.com/b"}
//
//	pages, err := batch.Parallel(ctx, urls, fetchPage, 4)
//
//	result, err := batch.Process(ctx, urls, fetchPage, batch.Options[string, Page]{
//	    BatchSize:     10,
//	    Concurrency:   3,
//	    RetryAttempts: 2,
//	    OnProgress: func(p batch.Progress) {
//	        log.Printf("processed %d/%d", p.Processed, p.Total)
//	    },
//	})
//
// Item failures under Process are collected, not raised: inspect
// Result.Failed for what went wrong per item.
package batch
