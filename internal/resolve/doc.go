// Package resolve turns remote item references into concrete feed data.
//
// A Resolver handles one reference: it asks the directory for the feed URL
// (unless the reference already carries one), fetches and parses the feed,
// and picks the referenced item by exact GUID. An Orchestrator drives a
// Resolver over many references in fixed-size batches with a pause between
// batches:
//
//	resolver := resolve.NewResolver(dir, client, parser)
//	orch := resolve.NewOrchestrator(resolver, client, parser, resolve.DefaultOptions())
//
//	results := orch.ResolveAll(ctx, refs)
//	summary := resolve.Summarize(results)
//	fmt.Printf("%d resolved, %d failed\n", summary.Succeeded, summary.Failed)
//
// ResolveAll returns exactly one Result per reference, in input order. A
// failing reference never aborts its batch or the run.
package resolve
