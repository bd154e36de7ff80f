// Package maintenance exposes the administrator operations of the site
// janitor: reconciliation scans, confirmed deletion of their candidates,
// backup export and the site id listing.
//
// Routes are registered relative to the router passed to Load, which the
// start command guards with the admin auth middleware.
//
//	POST /backup              zip archive of the bucket and catalog tables
//	GET  /site-ids            {sites: [{id, owner}]}
//	POST /scan/:policy        run a folders or objects scan
//	GET  /scan/:policy        current scan state and report
//	POST /delete/:policy      {paths, confirm}, ?dry_run=true to simulate
//
// Scan reports are kept per policy. A deletion is only accepted while its
// policy is ready, and every selected path must be a candidate of a scan
// taken at the time of the request.
package maintenance
