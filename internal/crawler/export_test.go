package crawler

import "time"

// RunGlobalWith exposes the orchestration loop to tests with an injectable
// crawl function and delay.
var RunGlobalWith = runGlobal

// NoDelay removes the inter-crawl spacing in tests.
const NoDelay = time.Duration(0)
